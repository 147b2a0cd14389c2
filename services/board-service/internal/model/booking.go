package model

import (
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Known reports whether s is one of the four lifecycle states.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Visible reports whether a booking in state s occupies slots and shows on the board.
func (s Status) Visible() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCompleted
}

// CanTransitionTo encodes the lifecycle pending -> confirmed -> completed, with
// cancellation allowed from pending or confirmed. The board never performs transitions;
// the edit dialog asks this before offering an action.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

type BookingKind string

const (
	KindAppointment BookingKind = "appointment"
	KindBlocked     BookingKind = "blocked-schedule"
)

// Booking is one entry of the date's booking set. StaffID and BedID are empty when the
// booking does not reference that axis; both set means dual occupancy.
type Booking struct {
	ID           string
	Date         calendar.Date
	StartTime    string
	EndTime      string
	StaffID      string
	BedID        string
	Status       Status
	Kind         BookingKind
	CustomerName string
	MenuName     string
	Note         string
}

func (b Booking) Interval() (timeline.Interval, error) {
	return timeline.ParseInterval(b.StartTime, b.EndTime)
}

// Title is the label a renderer shows on the booking block.
func (b Booking) Title() string {
	if b.Kind == KindBlocked {
		if b.Note != "" {
			return b.Note
		}
		return "blocked"
	}
	if b.MenuName != "" && b.CustomerName != "" {
		return b.CustomerName + " / " + b.MenuName
	}
	return b.CustomerName
}
