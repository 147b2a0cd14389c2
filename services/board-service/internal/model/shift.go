package model

import (
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

// Shift is a staff member's declared working window for one date, as delivered by the
// shift collaborator. Times are kept as the raw clock strings; Interval parses them.
type Shift struct {
	StaffID       string
	Date          calendar.Date
	StartTime     string
	EndTime       string
	TransportCost int
}

func (s Shift) Interval() (timeline.Interval, error) {
	return timeline.ParseInterval(s.StartTime, s.EndTime)
}

// ShiftFor returns the first shift recorded for staffID on date, or nil.
func ShiftFor(shifts []Shift, staffID string, date calendar.Date) *Shift {
	for i := range shifts {
		if shifts[i].StaffID == staffID && shifts[i].Date == date {
			return &shifts[i]
		}
	}
	return nil
}
