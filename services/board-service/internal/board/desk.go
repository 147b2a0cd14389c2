package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/availability"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

// SlotSelected is emitted when a free cell is clicked; it seeds the booking dialog.
type SlotSelected struct {
	Date       calendar.Date `json:"date"`
	Axis       Axis          `json:"axis"`
	ResourceID string        `json:"resource_id"`
	Slot       string        `json:"slot"`
	Minutes    int           `json:"minutes"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// BookingSelected is emitted when a visible booking block is clicked; it seeds the edit dialog.
type BookingSelected struct {
	Date        calendar.Date  `json:"date"`
	BookingID   string         `json:"booking_id"`
	StaffID     string         `json:"staff_id,omitempty"`
	BedID       string         `json:"bed_id,omitempty"`
	Status      model.Status   `json:"status"`
	Transitions []model.Status `json:"transitions,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// Emitter hands selection events to whatever owns the dialogs.
type Emitter interface {
	SlotSelected(ctx context.Context, ev SlotSelected) error
	BookingSelected(ctx context.Context, ev BookingSelected) error
}

// Desk is the owning context of the board: one Store, one Loader, and the grid every view
// is laid out on. All mutation goes through it.
type Desk struct {
	store   *Store
	loader  *Loader
	grid    timeline.Grid
	emitter Emitter
	logger  *slog.Logger
	now     func() time.Time
}

func NewDesk(store *Store, loader *Loader, grid timeline.Grid, emitter Emitter, logger *slog.Logger) *Desk {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desk{store: store, loader: loader, grid: grid, emitter: emitter, logger: logger, now: time.Now}
}

func (d *Desk) Grid() timeline.Grid {
	return d.grid
}

func (d *Desk) Selected() calendar.Date {
	return d.store.Selected()
}

// Loaded reports whether a snapshot for the selected date is in place.
func (d *Desk) Loaded() bool {
	_, ok := d.store.Current()
	return ok
}

// Select switches to date and loads it. A load overtaken by another selection is
// dropped without error.
func (d *Desk) Select(ctx context.Context, date calendar.Date) error {
	return d.load(ctx, d.store.Select(date))
}

func (d *Desk) Navigate(ctx context.Context, days int) error {
	return d.load(ctx, d.store.Navigate(days))
}

// Reload refetches the selected date, e.g. after a booking changed elsewhere.
func (d *Desk) Reload(ctx context.Context) error {
	return d.load(ctx, d.store.Refresh())
}

func (d *Desk) load(ctx context.Context, tok Token) error {
	snap, err := d.loader.Load(ctx, tok.Date)
	if err != nil {
		return err
	}
	if err := d.store.Apply(tok, snap); err != nil {
		if errors.Is(err, ErrStaleResult) {
			d.logger.Debug("discarding stale board load", "date", tok.Date.String(), "generation", tok.Generation)
			return nil
		}
		return err
	}
	d.logger.Info("board loaded",
		"date", tok.Date.String(),
		"bookings", len(snap.Bookings),
		"shifts", len(snap.Shifts),
		"fetch_errors", len(snap.FetchErrors),
	)
	return nil
}

// View builds the axis view of the selected date from the current snapshot.
func (d *Desk) View(axis Axis) (View, error) {
	snap, ok := d.store.Current()
	if !ok {
		return View{}, ErrNotLoaded
	}
	return Build(d.grid, snap, axis), nil
}

// BookableStarts answers the booking dialog's "where could this fit" query on the
// current board.
func (d *Desk) BookableStarts(axis Axis, resourceID string, duration int) ([]timeline.TimeSlot, error) {
	view, err := d.View(axis)
	if err != nil {
		return nil, err
	}
	starts, ok := view.BookableStarts(resourceID, duration)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, resourceID)
	}
	return starts, nil
}

// SlotClick validates that the cell is free and emits SlotSelected for it.
func (d *Desk) SlotClick(ctx context.Context, axis Axis, resourceID, label string) (SlotSelected, error) {
	view, err := d.View(axis)
	if err != nil {
		return SlotSelected{}, err
	}
	slot, ok := d.grid.Lookup(label)
	if !ok {
		return SlotSelected{}, fmt.Errorf("%w: %q", ErrUnknownSlot, label)
	}
	if resourceID == HeaderRowID {
		return SlotSelected{}, fmt.Errorf("%w: %s", ErrSlotUnavailable, availability.StateHeader)
	}
	state, ok := view.Classify(resourceID, slot)
	if !ok {
		return SlotSelected{}, fmt.Errorf("%w: %q", ErrUnknownResource, resourceID)
	}
	if !state.Bookable() {
		return SlotSelected{}, fmt.Errorf("%w: %s", ErrSlotUnavailable, state)
	}

	ev := SlotSelected{
		Date:       view.Date,
		Axis:       axis,
		ResourceID: resourceID,
		Slot:       slot.Label,
		Minutes:    slot.Minutes,
		OccurredAt: d.now().UTC(),
	}
	if err := d.emit(func() error { return d.emitter.SlotSelected(ctx, ev) }); err != nil {
		return SlotSelected{}, err
	}
	return ev, nil
}

// BookingClick emits BookingSelected for a booking shown on the current board.
func (d *Desk) BookingClick(ctx context.Context, bookingID string) (BookingSelected, error) {
	snap, ok := d.store.Current()
	if !ok {
		return BookingSelected{}, ErrNotLoaded
	}
	b, ok := findShown(snap, bookingID)
	if !ok {
		return BookingSelected{}, fmt.Errorf("%w: %q", ErrUnknownBooking, bookingID)
	}

	ev := BookingSelected{
		Date:       snap.Date,
		BookingID:  b.ID,
		StaffID:    b.StaffID,
		BedID:      b.BedID,
		Status:     b.Status,
		OccurredAt: d.now().UTC(),
	}
	for _, next := range []model.Status{model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled} {
		if b.Status.CanTransitionTo(next) {
			ev.Transitions = append(ev.Transitions, next)
		}
	}
	if err := d.emit(func() error { return d.emitter.BookingSelected(ctx, ev) }); err != nil {
		return BookingSelected{}, err
	}
	return ev, nil
}

func (d *Desk) emit(fn func() error) error {
	if d.emitter == nil {
		return nil
	}
	if err := fn(); err != nil {
		d.logger.Error("emit selection failed", "err", err)
		return err
	}
	return nil
}

func findShown(snap Snapshot, id string) (model.Booking, bool) {
	if id == "" {
		return model.Booking{}, false
	}
	for _, b := range snap.Bookings {
		if b.ID != id || !b.Status.Visible() {
			continue
		}
		if !b.Date.IsZero() && b.Date != snap.Date {
			continue
		}
		if _, err := b.Interval(); err != nil {
			continue
		}
		return b, true
	}
	return model.Booking{}, false
}
