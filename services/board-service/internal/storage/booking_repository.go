package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/dayboard/libs/db"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// BookingsForDate returns every booking on date in any status; the board decides visibility.
func (r *BookingRepository) BookingsForDate(ctx context.Context, date calendar.Date) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, work_date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			COALESCE(staff_id::text, ''), COALESCE(bed_id, ''), status, kind,
			COALESCE(customer_name, ''), COALESCE(menu_name, ''), COALESCE(note, '')
		FROM bookings
		WHERE work_date = $1
		ORDER BY start_time ASC, id ASC
	`, dateArg(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	var workDate time.Time
	var status, kind string
	if err := row.Scan(
		&b.ID,
		&workDate,
		&b.StartTime,
		&b.EndTime,
		&b.StaffID,
		&b.BedID,
		&status,
		&kind,
		&b.CustomerName,
		&b.MenuName,
		&b.Note,
	); err != nil {
		return model.Booking{}, err
	}
	b.Date = calendar.FromTime(workDate)
	b.Status = model.Status(status)
	b.Kind = model.BookingKind(kind)
	return b, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
