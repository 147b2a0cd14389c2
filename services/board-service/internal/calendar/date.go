// Package calendar holds civil-date arithmetic for the board's date cursor. A Date has no
// time of day and no location, so stepping across a DST change never drifts a day.
package calendar

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New normalises out-of-range components the same way time.Date does (Jan 32 -> Feb 1).
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the wall-clock date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is the local wall-clock date of now.
func Today(now time.Time) Date {
	return FromTime(now.Local())
}

func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays moves the cursor by n days. AddDays(a).AddDays(b) == AddDays(a+b).
func (d Date) AddDays(n int) Date {
	return FromTime(d.midnightUTC().AddDate(0, 0, n))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) Weekday() time.Weekday {
	return d.midnightUTC().Weekday()
}

func (d Date) Before(o Date) bool {
	return d.midnightUTC().Before(o.midnightUTC())
}

// In returns midnight of d in loc, for collaborators that need an instant (SQL parameters).
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) midnightUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Month identifies the calendar month shifts are fetched for.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(d Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Next is the first day of the following month, the exclusive end of a month range.
func (m Month) Next() Date {
	return New(m.Year, m.Month+1, 1)
}

func (m Month) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
