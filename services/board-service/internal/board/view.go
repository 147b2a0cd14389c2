// Package board composes the timeline, availability and position engines into the staff and
// bed views of one date, and owns the orchestration that loads and selects that date.
package board

import (
	"fmt"
	"slices"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/availability"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/position"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

type Axis string

const (
	AxisStaff Axis = "staff"
	AxisBed   Axis = "bed"
)

func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case AxisStaff, "":
		return AxisStaff, nil
	case AxisBed:
		return AxisBed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAxis, s)
}

// HeaderRowID addresses the synthetic header row, which carries only slot labels.
const HeaderRowID = ""

// Snapshot is the joined input for one date: registry, the month's shifts and the date's
// bookings. It is treated as immutable once built.
type Snapshot struct {
	Date        calendar.Date
	Staff       []model.StaffMember
	Beds        []model.BedInfo
	Shifts      []model.Shift
	Bookings    []model.Booking
	FetchErrors []string
}

type Cell struct {
	Slot      timeline.TimeSlot
	State     availability.State
	BookingID string
}

type Placement struct {
	BookingID string
	Status    model.Status
	Kind      model.BookingKind
	Title     string
	Start     string
	End       string
	position.Position
}

type Row struct {
	Resource      model.Resource
	Name          string
	Color         string
	Holiday       bool
	TransportCost int
	Cells         []Cell
	Bookings      []Placement
}

type SkippedRecord struct {
	Kind   string
	ID     string
	Reason string
}

type View struct {
	Date        calendar.Date
	Axis        Axis
	Header      Row
	Rows        []Row
	Skipped     []SkippedRecord
	Conflicts   []availability.Conflict
	FetchErrors []string

	index    map[string]int
	shifts   map[string]*model.Shift
	bookings []model.Booking
	slots    []timeline.TimeSlot
}

func (v View) SkippedCount() int {
	return len(v.Skipped)
}

func (v View) Row(resourceID string) (Row, bool) {
	if resourceID == HeaderRowID {
		return v.Header, true
	}
	i, ok := v.index[resourceID]
	if !ok {
		return Row{}, false
	}
	return v.Rows[i], true
}

// Classify is the per-cell query a renderer polls. The header row always reports
// StateHeader; unknown resources and off-grid slots report false.
func (v View) Classify(resourceID string, slot timeline.TimeSlot) (availability.State, bool) {
	row, ok := v.Row(resourceID)
	if !ok {
		return "", false
	}
	for _, c := range row.Cells {
		if c.Slot.Minutes == slot.Minutes {
			return c.State, true
		}
	}
	return "", false
}

func (v View) Positions(resourceID string) []Placement {
	row, ok := v.Row(resourceID)
	if !ok {
		return nil
	}
	return row.Bookings
}

// BookableStarts lists the slots where a booking of duration minutes could start on the
// resource's row without leaving its shift or overlapping a visible booking.
func (v View) BookableStarts(resourceID string, duration int) ([]timeline.TimeSlot, bool) {
	row, ok := v.Row(resourceID)
	if !ok || resourceID == HeaderRowID {
		return nil, false
	}
	var shift *model.Shift
	if row.Resource.IsStaff() {
		shift = v.shifts[resourceID]
	}
	return availability.BookableStarts(row.Resource, v.slots, duration, shift, v.bookings), true
}

// Build derives the view of snap along axis. It never fails: bad records are skipped and
// listed in View.Skipped, and missing inputs simply produce holiday or free rows.
func Build(grid timeline.Grid, snap Snapshot, axis Axis) View {
	v := View{
		Date:        snap.Date,
		Axis:        axis,
		FetchErrors: snap.FetchErrors,
		index:       map[string]int{},
	}

	shifts := v.normaliseShifts(snap)
	bookings := v.normaliseBookings(snap)
	v.shifts, v.bookings, v.slots = shifts, bookings, grid.Slots

	v.Header = Row{Cells: make([]Cell, len(grid.Slots))}
	for i, s := range grid.Slots {
		v.Header.Cells[i] = Cell{Slot: s, State: availability.StateHeader}
	}

	switch axis {
	case AxisBed:
		for _, bed := range snap.Beds {
			name := bed.Name
			if name == "" {
				name = bed.ID
			}
			v.addRow(grid, Row{Resource: bed.Resource(), Name: name}, nil, bookings)
		}
	default:
		for _, st := range snap.Staff {
			if !st.IsActive {
				continue
			}
			shift := shifts[st.ID]
			row := Row{Resource: st.Resource(), Name: st.Name, Color: st.Color}
			if shift != nil {
				row.TransportCost = shift.TransportCost
			}
			v.addRow(grid, row, shift, bookings)
		}
	}
	return v
}

func (v *View) addRow(grid timeline.Grid, row Row, shift *model.Shift, bookings []model.Booking) {
	res := row.Resource
	if _, dup := v.index[res.ID]; dup || res.ID == HeaderRowID {
		return
	}
	row.Holiday = availability.IsHoliday(res, shift)
	row.Cells = make([]Cell, len(grid.Slots))
	for i, s := range grid.Slots {
		cell := Cell{Slot: s, State: availability.Classify(res, s, shift, bookings)}
		if cell.State == availability.StateOccupied {
			if b := availability.Occupant(res, s, bookings); b != nil {
				cell.BookingID = b.ID
			}
		}
		row.Cells[i] = cell
	}

	for _, b := range bookings {
		if !res.References(b) {
			continue
		}
		iv, _ := b.Interval()
		pos, err := position.ForGrid(grid, iv)
		if err != nil {
			continue
		}
		row.Bookings = append(row.Bookings, Placement{
			BookingID: b.ID,
			Status:    b.Status,
			Kind:      b.Kind,
			Title:     b.Title(),
			Start:     timeline.FormatClock(iv.Start),
			End:       timeline.FormatClock(iv.End),
			Position:  pos,
		})
	}
	slices.SortStableFunc(row.Bookings, func(a, b Placement) int {
		return compareFloat(a.LeftPercent, b.LeftPercent)
	})

	v.Conflicts = append(v.Conflicts, availability.DetectConflicts(res, bookings)...)
	v.index[res.ID] = len(v.Rows)
	v.Rows = append(v.Rows, row)
}

// normaliseShifts keeps the first well-formed shift per staff member on the view's date.
// Shifts for other days of the month are expected and ignored.
func (v *View) normaliseShifts(snap Snapshot) map[string]*model.Shift {
	out := map[string]*model.Shift{}
	for i := range snap.Shifts {
		s := &snap.Shifts[i]
		if s.Date != snap.Date {
			continue
		}
		id := s.StaffID + "@" + s.Date.String()
		if _, err := s.Interval(); err != nil {
			v.skip("shift", id, err.Error())
			continue
		}
		if _, dup := out[s.StaffID]; dup {
			v.skip("shift", id, "duplicate shift for date")
			continue
		}
		out[s.StaffID] = s
	}
	return out
}

// normaliseBookings returns the visible, well-formed bookings of the view's date.
// Cancelled bookings are dropped without being reported.
func (v *View) normaliseBookings(snap Snapshot) []model.Booking {
	out := make([]model.Booking, 0, len(snap.Bookings))
	seen := map[string]bool{}
	for _, b := range snap.Bookings {
		switch {
		case b.Status == model.StatusCancelled:
			continue
		case !b.Status.Known():
			v.skip("booking", b.ID, fmt.Sprintf("unknown status %q", b.Status))
			continue
		case !b.Date.IsZero() && b.Date != snap.Date:
			v.skip("booking", b.ID, "booking belongs to "+b.Date.String())
			continue
		case b.ID != "" && seen[b.ID]:
			v.skip("booking", b.ID, "duplicate booking id")
			continue
		}
		if _, err := b.Interval(); err != nil {
			v.skip("booking", b.ID, err.Error())
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	return out
}

func (v *View) skip(kind, id, reason string) {
	v.Skipped = append(v.Skipped, SkippedRecord{Kind: kind, ID: id, Reason: reason})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
