package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/availability"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

var (
	day1 = calendar.New(2026, time.October, 14)
	day2 = calendar.New(2026, time.October, 15)
)

func slot(t *testing.T, label string) timeline.TimeSlot {
	t.Helper()
	s, ok := timeline.DefaultGrid().Lookup(label)
	if !ok {
		t.Fatalf("slot %s not on grid", label)
	}
	return s
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Date: day1,
		Staff: []model.StaffMember{
			{ID: "a", Name: "Aoi", Role: model.RoleStaff, IsActive: true},
			{ID: "m", Name: "Mei", Role: model.RoleManager, IsActive: true},
			{ID: "h", Name: "Hana", Role: model.RoleStaff, IsActive: true},
			{ID: "x", Name: "Gone", Role: model.RoleStaff, IsActive: false},
		},
		Beds: []model.BedInfo{{ID: "bed-1", Name: "Bed 1"}, {ID: "bed-2"}},
		Shifts: []model.Shift{
			{StaffID: "a", Date: day1, StartTime: "10:00", EndTime: "14:00", TransportCost: 500},
			{StaffID: "a", Date: day2, StartTime: "09:00", EndTime: "21:00"},
		},
		Bookings: []model.Booking{
			{ID: "b1", Date: day1, StaffID: "a", BedID: "bed-1", StartTime: "11:00", EndTime: "12:00", Status: model.StatusConfirmed, CustomerName: "Sato"},
			{ID: "b2", Date: day1, StaffID: "a", StartTime: "12:00", EndTime: "13:00", Status: model.StatusCancelled},
			{ID: "b3", Date: day1, StaffID: "m", StartTime: "15:00", EndTime: "16:00", Status: "archived"},
			{ID: "b4", Date: day1, StaffID: "m", StartTime: "17:00", EndTime: "16:00", Status: model.StatusPending},
		},
	}
}

func TestBuild_StaffAxisScenario(t *testing.T) {
	v := Build(timeline.DefaultGrid(), sampleSnapshot(), AxisStaff)

	want := map[string]availability.State{
		"09:30": availability.StateOutOfShift,
		"10:00": availability.StateFree,
		"11:00": availability.StateOccupied,
		"11:30": availability.StateOccupied,
		"12:00": availability.StateFree,
		"14:00": availability.StateOutOfShift,
	}
	for label, state := range want {
		got, ok := v.Classify("a", slot(t, label))
		if !ok {
			t.Fatalf("expected cell for a@%s", label)
		}
		if got != state {
			t.Fatalf("a@%s: expected %s, got %s", label, state, got)
		}
	}

	if len(v.Rows) != 3 {
		t.Fatalf("expected 3 active staff rows, got %d", len(v.Rows))
	}
	if _, ok := v.Row("x"); ok {
		t.Fatal("inactive staff must not get a row")
	}
	row, _ := v.Row("a")
	if row.TransportCost != 500 || row.Holiday {
		t.Fatalf("unexpected row header: %+v", row)
	}
}

func TestBuild_HolidayAndManager(t *testing.T) {
	v := Build(timeline.DefaultGrid(), sampleSnapshot(), AxisStaff)

	h, _ := v.Row("h")
	if !h.Holiday {
		t.Fatal("expected staff without shift to be on holiday")
	}
	for _, c := range h.Cells {
		if c.State != availability.StateHolidayBlocked {
			t.Fatalf("expected holiday-blocked at %s, got %s", c.Slot.Label, c.State)
		}
	}

	m, _ := v.Row("m")
	if m.Holiday {
		t.Fatal("managers are never on holiday")
	}
	for _, c := range m.Cells {
		if c.State != availability.StateFree {
			t.Fatalf("expected manager free at %s, got %s", c.Slot.Label, c.State)
		}
	}
}

func TestBuild_HeaderRow(t *testing.T) {
	v := Build(timeline.DefaultGrid(), sampleSnapshot(), AxisStaff)
	for _, s := range timeline.DefaultGrid().Slots {
		got, ok := v.Classify(HeaderRowID, s)
		if !ok || got != availability.StateHeader {
			t.Fatalf("expected header at %s, got %s", s.Label, got)
		}
	}
}

func TestBuild_SkippedRecords(t *testing.T) {
	v := Build(timeline.DefaultGrid(), sampleSnapshot(), AxisStaff)
	if v.SkippedCount() != 2 {
		t.Fatalf("expected 2 skipped records, got %d: %+v", v.SkippedCount(), v.Skipped)
	}
	ids := map[string]bool{}
	for _, s := range v.Skipped {
		ids[s.ID] = true
	}
	if !ids["b3"] || !ids["b4"] {
		t.Fatalf("expected b3 and b4 skipped, got %+v", v.Skipped)
	}
	if ids["b2"] {
		t.Fatal("cancelled bookings are hidden, not skipped")
	}
}

func TestBuild_DualOccupancy(t *testing.T) {
	snap := sampleSnapshot()
	staff := Build(timeline.DefaultGrid(), snap, AxisStaff)
	beds := Build(timeline.DefaultGrid(), snap, AxisBed)

	if got, _ := staff.Classify("a", slot(t, "11:00")); got != availability.StateOccupied {
		t.Fatalf("expected staff occupied, got %s", got)
	}
	if got, _ := beds.Classify("bed-1", slot(t, "11:00")); got != availability.StateOccupied {
		t.Fatalf("expected bed occupied, got %s", got)
	}
	if got, _ := beds.Classify("bed-2", slot(t, "11:00")); got != availability.StateFree {
		t.Fatalf("expected other bed free, got %s", got)
	}
	row, _ := beds.Row("bed-2")
	if row.Name != "bed-2" {
		t.Fatalf("expected bed name to fall back to id, got %q", row.Name)
	}
}

func TestBuild_Placements(t *testing.T) {
	v := Build(timeline.DefaultGrid(), sampleSnapshot(), AxisStaff)
	ps := v.Positions("a")
	if len(ps) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(ps))
	}
	p := ps[0]
	if p.BookingID != "b1" || p.Start != "11:00" || p.End != "12:00" {
		t.Fatalf("unexpected placement %+v", p)
	}
	if diff := p.WidthPercent - 60.0/900*100; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected width 6.666..., got %f", p.WidthPercent)
	}
	if p.Title != "Sato" {
		t.Fatalf("expected title Sato, got %q", p.Title)
	}
}

func TestBuild_DuplicateShift(t *testing.T) {
	snap := sampleSnapshot()
	snap.Shifts = append(snap.Shifts, model.Shift{StaffID: "a", Date: day1, StartTime: "09:00", EndTime: "23:00"})
	v := Build(timeline.DefaultGrid(), snap, AxisStaff)
	if got, _ := v.Classify("a", slot(t, "09:30")); got != availability.StateOutOfShift {
		t.Fatalf("expected first shift to win, got %s", got)
	}
	if v.SkippedCount() != 3 {
		t.Fatalf("expected duplicate shift skipped, got %+v", v.Skipped)
	}
}

func TestBuild_Conflicts(t *testing.T) {
	snap := sampleSnapshot()
	snap.Bookings = append(snap.Bookings, model.Booking{
		ID: "b5", Date: day1, StaffID: "a", StartTime: "11:30", EndTime: "12:30", Status: model.StatusPending,
	})
	v := Build(timeline.DefaultGrid(), snap, AxisStaff)
	if len(v.Conflicts) != 1 || v.Conflicts[0].FirstID != "b1" || v.Conflicts[0].SecondID != "b5" {
		t.Fatalf("expected b1/b5 conflict, got %+v", v.Conflicts)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	snap := sampleSnapshot()
	first := Build(timeline.DefaultGrid(), snap, AxisStaff)
	second := Build(timeline.DefaultGrid(), snap, AxisStaff)
	for _, row := range first.Rows {
		other, _ := second.Row(row.Resource.ID)
		for i, c := range row.Cells {
			if other.Cells[i].State != c.State {
				t.Fatalf("%s@%s changed between builds", row.Resource.ID, c.Slot.Label)
			}
		}
	}
}

func TestParseAxis(t *testing.T) {
	if a, err := ParseAxis(""); err != nil || a != AxisStaff {
		t.Fatalf("expected default staff axis, got %q %v", a, err)
	}
	if a, err := ParseAxis("bed"); err != nil || a != AxisBed {
		t.Fatalf("expected bed axis, got %q %v", a, err)
	}
	if _, err := ParseAxis("room"); !errors.Is(err, ErrUnknownAxis) {
		t.Fatalf("expected ErrUnknownAxis, got %v", err)
	}
}

func TestStore_StaleResultDiscarded(t *testing.T) {
	s := NewStore(day1)
	t1 := s.Select(day1)
	t2 := s.Select(day2)

	if err := s.Apply(t1, Snapshot{Date: day1}); !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected stale result, got %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatal("expected no snapshot after stale apply")
	}
	if err := s.Apply(t2, Snapshot{Date: day2}); err != nil {
		t.Fatalf("expected apply to succeed, got %v", err)
	}
	snap, ok := s.Current()
	if !ok || snap.Date != day2 {
		t.Fatalf("expected day2 snapshot, got %+v", snap)
	}
}

func TestStore_NavigateAndRefresh(t *testing.T) {
	s := NewStore(day1)
	tok := s.Navigate(1)
	if tok.Date != day2 || s.Selected() != day2 {
		t.Fatalf("expected navigate to %s, got %s", day2, tok.Date)
	}
	if err := s.Apply(tok, Snapshot{Date: day2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := s.Refresh()
	if _, ok := s.Current(); !ok {
		t.Fatal("refresh must keep the current snapshot visible")
	}
	if err := s.Apply(tok, Snapshot{Date: day2}); !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected older generation to be stale, got %v", err)
	}
	if err := s.Apply(r, Snapshot{Date: day2}); err != nil {
		t.Fatalf("expected refresh apply to succeed, got %v", err)
	}
}

func TestStore_MonthBoundary(t *testing.T) {
	s := NewStore(calendar.New(2026, time.October, 31))
	tok := s.Navigate(1)
	if tok.Date != calendar.New(2026, time.November, 1) {
		t.Fatalf("expected 2026-11-01, got %s", tok.Date)
	}
}

type fakeRegistry struct {
	staff []model.StaffMember
	beds  []model.BedInfo
	err   error
}

func (f fakeRegistry) ActiveStaff(context.Context) ([]model.StaffMember, error) {
	return f.staff, f.err
}

func (f fakeRegistry) Beds(context.Context) ([]model.BedInfo, error) {
	return f.beds, nil
}

type fakeShifts struct {
	mu     sync.Mutex
	shifts []model.Shift
	err    error
	calls  []string
}

func (f *fakeShifts) ShiftsForMonth(_ context.Context, staffID string, month calendar.Month) ([]model.Shift, error) {
	f.mu.Lock()
	f.calls = append(f.calls, staffID+"/"+month.String())
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Shift
	for _, s := range f.shifts {
		if s.StaffID == staffID && month.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out, nil
}

// gatedBookings blocks loads of gate's date until release is closed.
type gatedBookings struct {
	bookings map[calendar.Date][]model.Booking
	gate     calendar.Date
	started  chan struct{}
	release  chan struct{}
	err      error
}

func (f *gatedBookings) BookingsForDate(ctx context.Context, d calendar.Date) ([]model.Booking, error) {
	if f.release != nil && d == f.gate {
		close(f.started)
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.bookings[d], nil
}

func newTestDesk(shifts ShiftSource, bookings BookingSource, registry Registry, emitter Emitter) *Desk {
	loader := NewLoader(shifts, bookings, registry, nil)
	return NewDesk(NewStore(day1), loader, timeline.DefaultGrid(), emitter, nil)
}

func TestLoader_RecordsCollaboratorErrors(t *testing.T) {
	snap := sampleSnapshot()
	shifts := &fakeShifts{err: errors.New("shift service down")}
	bookings := &gatedBookings{bookings: map[calendar.Date][]model.Booking{day1: snap.Bookings}}
	loader := NewLoader(shifts, bookings, fakeRegistry{staff: snap.Staff}, nil)

	got, err := loader.Load(context.Background(), day1)
	if err != nil {
		t.Fatalf("expected partial load to succeed, got %v", err)
	}
	if len(got.FetchErrors) != len(snap.Staff) {
		t.Fatalf("expected one fetch error per staff, got %v", got.FetchErrors)
	}
	if len(got.Bookings) != len(snap.Bookings) {
		t.Fatalf("expected bookings despite shift failure, got %d", len(got.Bookings))
	}

	v := Build(timeline.DefaultGrid(), got, AxisStaff)
	row, _ := v.Row("a")
	if !row.Holiday {
		t.Fatal("expected staff with failed shift fetch to render as holiday")
	}
}

func TestLoader_ShiftMonthQuery(t *testing.T) {
	snap := sampleSnapshot()
	shifts := &fakeShifts{shifts: snap.Shifts}
	loader := NewLoader(shifts, &gatedBookings{}, fakeRegistry{staff: snap.Staff[:1]}, nil)

	got, err := loader.Load(context.Background(), day1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shifts.calls) != 1 || shifts.calls[0] != "a/2026-10" {
		t.Fatalf("expected one month query, got %v", shifts.calls)
	}
	if len(got.Shifts) != 2 {
		t.Fatalf("expected whole month of shifts, got %d", len(got.Shifts))
	}
}

func TestLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader := NewLoader(&fakeShifts{}, &gatedBookings{err: context.Canceled}, fakeRegistry{}, nil)
	if _, err := loader.Load(ctx, day1); !IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestDesk_StaleLoadNeverShown(t *testing.T) {
	snap := sampleSnapshot()
	bookings := &gatedBookings{
		bookings: map[calendar.Date][]model.Booking{day1: snap.Bookings},
		gate:     day1,
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	desk := newTestDesk(&fakeShifts{shifts: snap.Shifts}, bookings, fakeRegistry{staff: snap.Staff}, nil)

	done := make(chan error, 1)
	go func() { done <- desk.Select(context.Background(), day1) }()
	<-bookings.started

	if err := desk.Select(context.Background(), day2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(bookings.release)
	if err := <-done; err != nil {
		t.Fatalf("stale load must not surface an error, got %v", err)
	}

	v, err := desk.View(AxisStaff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Date != day2 {
		t.Fatalf("expected view of %s, got %s", day2, v.Date)
	}
	if len(v.Positions("a")) != 0 {
		t.Fatal("day1 bookings leaked into the day2 view")
	}
}

type recordingEmitter struct {
	slots    []SlotSelected
	bookings []BookingSelected
}

func (r *recordingEmitter) SlotSelected(_ context.Context, ev SlotSelected) error {
	r.slots = append(r.slots, ev)
	return nil
}

func (r *recordingEmitter) BookingSelected(_ context.Context, ev BookingSelected) error {
	r.bookings = append(r.bookings, ev)
	return nil
}

func loadedDesk(t *testing.T, em Emitter) *Desk {
	t.Helper()
	snap := sampleSnapshot()
	bookings := &gatedBookings{bookings: map[calendar.Date][]model.Booking{day1: snap.Bookings}}
	desk := newTestDesk(&fakeShifts{shifts: snap.Shifts}, bookings, fakeRegistry{staff: snap.Staff, beds: snap.Beds}, em)
	if err := desk.Select(context.Background(), day1); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	return desk
}

func TestDesk_ViewBeforeLoad(t *testing.T) {
	desk := newTestDesk(&fakeShifts{}, &gatedBookings{}, fakeRegistry{}, nil)
	if _, err := desk.View(AxisStaff); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestDesk_SlotClick(t *testing.T) {
	em := &recordingEmitter{}
	desk := loadedDesk(t, em)

	ev, err := desk.SlotClick(context.Background(), AxisStaff, "a", "10:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Minutes != 600 || ev.Date != day1 || len(em.slots) != 1 {
		t.Fatalf("unexpected event %+v", ev)
	}

	cases := []struct {
		res, label string
		want       error
	}{
		{"a", "11:00", ErrSlotUnavailable},
		{"a", "09:00", ErrSlotUnavailable},
		{"h", "12:00", ErrSlotUnavailable},
		{HeaderRowID, "12:00", ErrSlotUnavailable},
		{"nobody", "12:00", ErrUnknownResource},
		{"a", "10:15", ErrUnknownSlot},
	}
	for _, tc := range cases {
		if _, err := desk.SlotClick(context.Background(), AxisStaff, tc.res, tc.label); !errors.Is(err, tc.want) {
			t.Fatalf("%s@%s: expected %v, got %v", tc.res, tc.label, tc.want, err)
		}
	}
	if len(em.slots) != 1 {
		t.Fatalf("expected rejected clicks to emit nothing, got %d events", len(em.slots))
	}
}

func TestDesk_BookingClick(t *testing.T) {
	em := &recordingEmitter{}
	desk := loadedDesk(t, em)

	ev, err := desk.BookingClick(context.Background(), "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.StaffID != "a" || ev.BedID != "bed-1" || ev.Status != model.StatusConfirmed {
		t.Fatalf("unexpected event %+v", ev)
	}
	if len(ev.Transitions) != 2 {
		t.Fatalf("expected confirmed to offer completed and cancelled, got %v", ev.Transitions)
	}

	for _, id := range []string{"b2", "b3", "b4", "missing", ""} {
		if _, err := desk.BookingClick(context.Background(), id); !errors.Is(err, ErrUnknownBooking) {
			t.Fatalf("%q: expected ErrUnknownBooking, got %v", id, err)
		}
	}
	if len(em.bookings) != 1 {
		t.Fatalf("expected one emitted booking event, got %d", len(em.bookings))
	}
}

func TestDesk_NavigateLoadsNewDate(t *testing.T) {
	desk := loadedDesk(t, nil)
	if err := desk.Navigate(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := desk.View(AxisStaff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Date != day2 {
		t.Fatalf("expected %s, got %s", day2, v.Date)
	}
	if got, _ := v.Classify("a", slot(t, "09:00")); got != availability.StateFree {
		t.Fatalf("expected day2 shift to apply, got %s", got)
	}
}

func TestView_BookableStarts(t *testing.T) {
	v := Build(timeline.DefaultGrid(), sampleSnapshot(), AxisStaff)

	got, ok := v.BookableStarts("a", 60)
	if !ok {
		t.Fatal("expected row a")
	}
	var labels []string
	for _, s := range got {
		labels = append(labels, s.Label)
	}
	want := []string{"10:00", "12:00", "12:30", "13:00"}
	if len(labels) != len(want) {
		t.Fatalf("expected %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, labels)
		}
	}

	if starts, _ := v.BookableStarts("h", 30); len(starts) != 0 {
		t.Fatalf("expected no starts for holiday staff, got %d", len(starts))
	}
	if _, ok := v.BookableStarts("nobody", 30); ok {
		t.Fatal("expected unknown resource to report false")
	}
}

func TestDesk_BookableStarts(t *testing.T) {
	desk := loadedDesk(t, nil)
	starts, err := desk.BookableStarts(AxisBed, "bed-1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(starts) != timeline.DefaultGrid().Len()-2 {
		t.Fatalf("expected all but the two occupied slots, got %d", len(starts))
	}
	if _, err := desk.BookableStarts(AxisBed, "a", 30); !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("expected staff id to be unknown on the bed axis, got %v", err)
	}
}
