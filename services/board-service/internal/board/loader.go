package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
)

// ShiftSource returns one staff member's shifts for a month.
type ShiftSource interface {
	ShiftsForMonth(ctx context.Context, staffID string, month calendar.Month) ([]model.Shift, error)
}

// BookingSource returns every booking of a date regardless of status.
type BookingSource interface {
	BookingsForDate(ctx context.Context, date calendar.Date) ([]model.Booking, error)
}

// Registry lists the resources rows are built from.
type Registry interface {
	ActiveStaff(ctx context.Context) ([]model.StaffMember, error)
	Beds(ctx context.Context) ([]model.BedInfo, error)
}

const defaultFanout = 8

// Loader fetches a Snapshot. Shifts and bookings are fetched concurrently and joined;
// a collaborator failure is recorded on the snapshot and the missing part treated as
// empty. Only cancellation of ctx fails the load.
type Loader struct {
	shifts   ShiftSource
	bookings BookingSource
	registry Registry
	logger   *slog.Logger
	fanout   int
}

func NewLoader(shifts ShiftSource, bookings BookingSource, registry Registry, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{shifts: shifts, bookings: bookings, registry: registry, logger: logger, fanout: defaultFanout}
}

// WithFanout bounds the concurrent per-staff shift fetches.
func (l *Loader) WithFanout(n int) *Loader {
	if n > 0 {
		l.fanout = n
	}
	return l
}

func (l *Loader) Load(ctx context.Context, date calendar.Date) (Snapshot, error) {
	ctx, span := otel.Tracer("board-service").Start(ctx, "board.load",
		trace.WithAttributes(attribute.String("board.date", date.String())))
	defer span.End()

	snap := Snapshot{Date: date}
	var mu sync.Mutex
	record := func(what string, err error) {
		l.logger.Warn("board fetch failed", "what", what, "date", date.String(), "err", err)
		mu.Lock()
		snap.FetchErrors = append(snap.FetchErrors, fmt.Sprintf("%s: %v", what, err))
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bookings, err := l.bookings.BookingsForDate(gctx, date)
		if err != nil {
			if cerr := gctx.Err(); cerr != nil {
				return cerr
			}
			record("bookings", err)
			return nil
		}
		mu.Lock()
		snap.Bookings = bookings
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		beds, err := l.registry.Beds(gctx)
		if err != nil {
			if cerr := gctx.Err(); cerr != nil {
				return cerr
			}
			record("beds", err)
		}
		staff, err := l.registry.ActiveStaff(gctx)
		if err != nil {
			if cerr := gctx.Err(); cerr != nil {
				return cerr
			}
			record("staff", err)
		}
		shifts, err := l.loadShifts(gctx, staff, calendar.MonthOf(date), record)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Beds, snap.Staff, snap.Shifts = beds, staff, shifts
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load cancelled")
		return Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	span.SetAttributes(
		attribute.Int("board.staff", len(snap.Staff)),
		attribute.Int("board.bookings", len(snap.Bookings)),
		attribute.Int("board.fetch_errors", len(snap.FetchErrors)),
	)
	return snap, nil
}

func (l *Loader) loadShifts(ctx context.Context, staff []model.StaffMember, month calendar.Month, record func(string, error)) ([]model.Shift, error) {
	perStaff := make([][]model.Shift, len(staff))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.fanout)
	for i, st := range staff {
		g.Go(func() error {
			shifts, err := l.shifts.ShiftsForMonth(gctx, st.ID, month)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				record("shifts "+st.ID, err)
				return nil
			}
			perStaff[i] = shifts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.Shift
	for _, s := range perStaff {
		out = append(out, s...)
	}
	return out, nil
}

// IsCancelled reports whether err came from an abandoned load rather than a collaborator.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
