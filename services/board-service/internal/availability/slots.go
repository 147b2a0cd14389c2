package availability

import (
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

// BookableStarts returns the slots at which a booking of the given length would fit for
// res: every minute of [start, start+duration) must be on shift and free of visible
// bookings, and the booking must end by the close of the grid. This is the query the
// booking dialog runs before submitting.
func BookableStarts(res model.Resource, slots []timeline.TimeSlot, duration int, shift *model.Shift, bookings []model.Booking) []timeline.TimeSlot {
	if duration <= 0 || len(slots) == 0 {
		return nil
	}
	if IsHoliday(res, shift) {
		return nil
	}
	last := slots[len(slots)-1]
	closing := last.Span().End

	var window timeline.Interval
	hasWindow := false
	if res.IsStaff() && !res.IsManager() {
		window, hasWindow = shiftWindow(shift)
	}

	var out []timeline.TimeSlot
	for _, s := range slots {
		want := timeline.Interval{Start: s.Minutes, End: s.Minutes + duration}
		if want.End > closing {
			continue
		}
		if hasWindow && (want.Start < window.Start || want.End > window.End) {
			continue
		}
		if occupant(res, want, bookings) != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}
