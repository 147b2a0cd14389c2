package storage

import (
	"context"

	"github.com/md-rashed-zaman/dayboard/libs/db"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
)

// RegistryRepository reads the staff registry from the database. Beds are a fixed list
// supplied by configuration.
type RegistryRepository struct {
	pool *db.Pool
	beds []model.BedInfo
}

func NewRegistryRepository(pool *db.Pool, bedIDs []string) *RegistryRepository {
	return &RegistryRepository{pool: pool, beds: BedsFromIDs(bedIDs)}
}

func (r *RegistryRepository) ActiveStaff(ctx context.Context) ([]model.StaffMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, role, COALESCE(color, ''), is_active
		FROM staff
		WHERE is_active = true
		ORDER BY sort_order ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []model.StaffMember
	for rows.Next() {
		var s model.StaffMember
		var role string
		if err := rows.Scan(&s.ID, &s.Name, &role, &s.Color, &s.IsActive); err != nil {
			return nil, err
		}
		s.Role = model.Role(role)
		staff = append(staff, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return staff, nil
}

func (r *RegistryRepository) Beds(context.Context) ([]model.BedInfo, error) {
	return r.beds, nil
}

// BedsFromIDs turns configured ids into bed entries, dropping blanks and repeats.
func BedsFromIDs(ids []string) []model.BedInfo {
	seen := map[string]bool{}
	var beds []model.BedInfo
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		beds = append(beds, model.BedInfo{ID: id, Name: id})
	}
	return beds
}
