package availability

import (
	"slices"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

// State is the classification of one (resource, slot) cell.
type State string

const (
	StateHeader         State = "header"
	StateHolidayBlocked State = "holiday-blocked"
	StateOutOfShift     State = "out-of-shift"
	StateOccupied       State = "occupied"
	StateFree           State = "free"
)

// Bookable reports whether a new booking may start in a cell of this state.
func (s State) Bookable() bool {
	return s == StateFree
}

// IsFree reports whether no visible booking on res overlaps slot. Shift windows are not
// considered here; see Classify.
func IsFree(res model.Resource, slot timeline.TimeSlot, bookings []model.Booking) bool {
	return occupant(res, slot.Span(), bookings) == nil
}

// Occupant returns the first visible booking on res overlapping slot, or nil.
func Occupant(res model.Resource, slot timeline.TimeSlot, bookings []model.Booking) *model.Booking {
	return occupant(res, slot.Span(), bookings)
}

func occupant(res model.Resource, span timeline.Interval, bookings []model.Booking) *model.Booking {
	for i := range bookings {
		b := &bookings[i]
		if !b.Status.Visible() || !res.References(*b) {
			continue
		}
		iv, err := b.Interval()
		if err != nil {
			continue
		}
		if iv.Overlaps(span) {
			return b
		}
	}
	return nil
}

// Classify combines shift availability and occupancy. Precedence for staff is
// holiday-blocked, out-of-shift, occupied, free; beds are only occupied or free.
func Classify(res model.Resource, slot timeline.TimeSlot, shift *model.Shift, bookings []model.Booking) State {
	if IsHoliday(res, shift) {
		return StateHolidayBlocked
	}
	if !IsAvailable(res, slot, shift) {
		return StateOutOfShift
	}
	if !IsFree(res, slot, bookings) {
		return StateOccupied
	}
	return StateFree
}

// Conflict is a pair of visible bookings on one resource whose intervals overlap.
type Conflict struct {
	ResourceID string
	FirstID    string
	SecondID   string
}

// DetectConflicts reports pairs of visible bookings on the same resource whose intervals overlap.
// Pairs are reported once, ordered by start time.
func DetectConflicts(res model.Resource, bookings []model.Booking) []Conflict {
	type entry struct {
		id string
		iv timeline.Interval
	}
	var entries []entry
	for _, b := range bookings {
		if !b.Status.Visible() || !res.References(b) {
			continue
		}
		iv, err := b.Interval()
		if err != nil {
			continue
		}
		entries = append(entries, entry{id: b.ID, iv: iv})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return a.iv.Start - b.iv.Start
	})

	var out []Conflict
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			// Sorted by start: once a later entry starts at or after our end, none further overlap.
			if entries[j].iv.Start >= entries[i].iv.End {
				break
			}
			if entries[i].iv.Overlaps(entries[j].iv) {
				out = append(out, Conflict{ResourceID: res.ID, FirstID: entries[i].id, SecondID: entries[j].id})
			}
		}
	}
	return out
}
