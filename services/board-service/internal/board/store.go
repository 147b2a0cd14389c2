package board

import (
	"sync"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
)

// Token identifies one load request. A result is accepted only while the store still
// holds the same date and generation.
type Token struct {
	Date       calendar.Date
	Generation uint64
}

// Store holds the single selected date and the snapshot last applied for it.
type Store struct {
	mu         sync.RWMutex
	selected   calendar.Date
	generation uint64
	snapshot   *Snapshot
}

func NewStore(initial calendar.Date) *Store {
	return &Store{selected: initial}
}

// Select makes d the selected date and returns the token its load must present. Moving to
// a different date drops the previous snapshot so no view of the old date survives.
func (s *Store) Select(d calendar.Date) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(d)
}

// Navigate moves the selection by days relative to the current date.
func (s *Store) Navigate(days int) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(s.selected.AddDays(days))
}

// Refresh issues a new token for the already selected date, keeping the current snapshot
// visible until the reload lands.
func (s *Store) Refresh() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return Token{Date: s.selected, Generation: s.generation}
}

func (s *Store) selectLocked(d calendar.Date) Token {
	if d != s.selected {
		s.snapshot = nil
	}
	s.selected = d
	s.generation++
	return Token{Date: d, Generation: s.generation}
}

// Apply installs snap if t is still current. Superseded results return ErrStaleResult and
// leave the store untouched.
func (s *Store) Apply(t Token, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Generation != s.generation || t.Date != s.selected || snap.Date != t.Date {
		return ErrStaleResult
	}
	s.snapshot = &snap
	return nil
}

// Current returns the snapshot of the selected date, if one has been applied.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

func (s *Store) Selected() calendar.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}
