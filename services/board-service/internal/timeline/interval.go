package timeline

import (
	"errors"
	"fmt"
)

var ErrDegenerateInterval = errors.New("interval end must be after start")

// Interval is a half-open range [Start, End) in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// ParseInterval parses two clock strings and rejects intervals with End <= Start.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	iv := Interval{Start: s, End: e}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.End <= iv.Start {
		return fmt.Errorf("%w: [%s, %s)", ErrDegenerateInterval, FormatClock(iv.Start), FormatClock(iv.End))
	}
	return nil
}

func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

// Contains reports whether minute m falls inside [Start, End).
func (iv Interval) Contains(m int) bool {
	return iv.Start <= m && m < iv.End
}

// Overlaps is the half-open overlap test: [a,b) and [c,d) overlap iff a < d && c < b.
// Touching intervals such as [10:00,11:00) and [11:00,12:00) do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

func (iv Interval) String() string {
	return "[" + FormatClock(iv.Start) + ", " + FormatClock(iv.End) + ")"
}
