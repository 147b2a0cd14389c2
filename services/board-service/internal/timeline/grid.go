// Package timeline builds the fixed slot sequence of the operating day and holds the
// half-open interval arithmetic shared by shifts, bookings and slots.
package timeline

import (
	"errors"
	"fmt"
)

const (
	DefaultStartHour   = 9
	DefaultEndHour     = 24
	DefaultStepMinutes = 30
)

var ErrInvalidRange = errors.New("invalid timeline range")

// TimeSlot is one cell of the operating day. Length is the step the slot was generated
// with; a zero Length makes the slot a single minute, which reduces overlap tests to a
// point-in-interval test on Minutes.
type TimeSlot struct {
	Label   string
	Minutes int
	Length  int
}

// Span is the [Minutes, Minutes+Length) interval the slot covers.
func (s TimeSlot) Span() Interval {
	n := s.Length
	if n <= 0 {
		n = 1
	}
	return Interval{Start: s.Minutes, End: s.Minutes + n}
}

// Generate returns the ordered slots from startHour (inclusive) to endHour (exclusive).
func Generate(startHour, endHour, stepMinutes int) ([]TimeSlot, error) {
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil, fmt.Errorf("%w: hours %d..%d", ErrInvalidRange, startHour, endHour)
	}
	window := (endHour - startHour) * 60
	if stepMinutes <= 0 || window%stepMinutes != 0 {
		return nil, fmt.Errorf("%w: step %d does not divide %d minutes", ErrInvalidRange, stepMinutes, window)
	}

	slots := make([]TimeSlot, 0, window/stepMinutes)
	for m := startHour * 60; m < endHour*60; m += stepMinutes {
		slots = append(slots, TimeSlot{Label: FormatClock(m), Minutes: m, Length: stepMinutes})
	}
	return slots, nil
}

// Grid is a generated slot sequence plus the parameters it was built from.
// It is computed once and shared read-only by every row of a view.
type Grid struct {
	Slots []TimeSlot
	Step  int
	index map[string]int
}

func NewGrid(startHour, endHour, stepMinutes int) (Grid, error) {
	slots, err := Generate(startHour, endHour, stepMinutes)
	if err != nil {
		return Grid{}, err
	}
	index := make(map[string]int, len(slots))
	for i, s := range slots {
		index[s.Label] = i
	}
	return Grid{Slots: slots, Step: stepMinutes, index: index}, nil
}

// DefaultGrid is the 09:00-24:00 grid in 30 minute steps.
func DefaultGrid() Grid {
	g, err := NewGrid(DefaultStartHour, DefaultEndHour, DefaultStepMinutes)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Grid) Len() int {
	return len(g.Slots)
}

// WindowStart is the first slot's minute offset (540 for the default grid).
func (g Grid) WindowStart() int {
	if len(g.Slots) == 0 {
		return 0
	}
	return g.Slots[0].Minutes
}

// WindowTotal is the number of minutes the grid covers (900 for the default grid).
func (g Grid) WindowTotal() int {
	return len(g.Slots) * g.Step
}

// Lookup finds a slot by its "HH:MM" label.
func (g Grid) Lookup(label string) (TimeSlot, bool) {
	i, ok := g.index[label]
	if !ok {
		return TimeSlot{}, false
	}
	return g.Slots[i], true
}

// Labels returns the slot labels in order, which is all the header row carries.
func (g Grid) Labels() []string {
	out := make([]string, len(g.Slots))
	for i, s := range g.Slots {
		out[i] = s.Label
	}
	return out
}
