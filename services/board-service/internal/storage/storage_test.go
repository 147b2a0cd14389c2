package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("get booking: %w", pgx.ErrNoRows)) {
		t.Fatal("expected wrapped ErrNoRows to be not found")
	}
	if IsNotFound(errors.New("boom")) {
		t.Fatal("expected other errors not to be not found")
	}
}

func TestBedsFromIDs(t *testing.T) {
	beds := BedsFromIDs([]string{"bed-1", "", "bed-2", "bed-1"})
	if len(beds) != 2 || beds[0].ID != "bed-1" || beds[1].ID != "bed-2" {
		t.Fatalf("unexpected beds %+v", beds)
	}

	repo := NewRegistryRepository(nil, []string{"a"})
	got, err := repo.Beds(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("expected configured beds, got %+v %v", got, err)
	}
}

func TestDateArg(t *testing.T) {
	d := calendar.New(2026, time.October, 14)
	got := dateArg(d)
	if got.Location() != time.UTC || got.Hour() != 0 || calendar.FromTime(got) != d {
		t.Fatalf("expected UTC midnight of %s, got %s", d, got)
	}
}
