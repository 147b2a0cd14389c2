// Package availability answers whether a staff member or bed can take a booking at a slot.
// Every function is a pure query over the snapshot it is handed.
package availability

import (
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

// IsAvailable reports whether res is on shift at slot. Managers are always available;
// other staff need a shift whose [start, end) contains the slot start. A shift that does
// not parse, or has end <= start, counts as no shift. Beds have no shifts.
func IsAvailable(res model.Resource, slot timeline.TimeSlot, shift *model.Shift) bool {
	if !res.IsStaff() || res.IsManager() {
		return true
	}
	iv, ok := shiftWindow(shift)
	if !ok {
		return false
	}
	return iv.Contains(slot.Minutes)
}

// IsHoliday is the derived day-off state: non-manager staff with no usable shift.
func IsHoliday(res model.Resource, shift *model.Shift) bool {
	if !res.IsStaff() || res.IsManager() {
		return false
	}
	_, ok := shiftWindow(shift)
	return !ok
}

func shiftWindow(shift *model.Shift) (timeline.Interval, bool) {
	if shift == nil {
		return timeline.Interval{}, false
	}
	iv, err := shift.Interval()
	if err != nil {
		return timeline.Interval{}, false
	}
	return iv, true
}
