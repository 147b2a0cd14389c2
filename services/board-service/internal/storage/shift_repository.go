package storage

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/dayboard/libs/db"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
)

type ShiftRepository struct {
	pool *db.Pool
}

func NewShiftRepository(pool *db.Pool) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

// ShiftsForMonth returns staffID's shifts dated inside month, ordered by date.
// Times come back as text so malformed rows reach the board and are skipped there.
func (r *ShiftRepository) ShiftsForMonth(ctx context.Context, staffID string, month calendar.Month) ([]model.Shift, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT staff_id::text, work_date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			COALESCE(transport_cost, 0)
		FROM staff_shifts
		WHERE staff_id = $1
			AND work_date >= $2
			AND work_date < $3
		ORDER BY work_date ASC, created_at ASC
	`, staffID, dateArg(month.First()), dateArg(month.Next()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		var s model.Shift
		var workDate time.Time
		if err := rows.Scan(&s.StaffID, &workDate, &s.StartTime, &s.EndTime, &s.TransportCost); err != nil {
			return nil, err
		}
		s.Date = calendar.FromTime(workDate)
		shifts = append(shifts, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return shifts, nil
}

func dateArg(d calendar.Date) time.Time {
	return d.In(time.UTC)
}
