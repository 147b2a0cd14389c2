// Package position maps booking intervals onto the board's horizontal axis as percentages
// of the operating window.
package position

import (
	"errors"
	"fmt"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

const (
	DefaultWindowStart = timeline.DefaultStartHour * 60
	DefaultWindowTotal = (timeline.DefaultEndHour - timeline.DefaultStartHour) * 60
)

var ErrInvalidWindow = errors.New("window length must be positive")

type Position struct {
	LeftPercent  float64
	WidthPercent float64
}

// Right is where the block ends; it may exceed 100.
func (p Position) Right() float64 {
	return p.LeftPercent + p.WidthPercent
}

// ToPosition places iv relative to a window starting at windowStart minutes and lasting
// windowTotal minutes. Results are not clamped: a booking that starts before the window
// gets a negative left, one that runs past it gets Right() > 100. Clipping is up to the
// renderer.
func ToPosition(iv timeline.Interval, windowStart, windowTotal int) (Position, error) {
	if err := iv.Validate(); err != nil {
		return Position{}, err
	}
	if windowTotal <= 0 {
		return Position{}, fmt.Errorf("%w: %d", ErrInvalidWindow, windowTotal)
	}
	total := float64(windowTotal)
	return Position{
		LeftPercent:  float64(iv.Start-windowStart) / total * 100,
		WidthPercent: float64(iv.End-iv.Start) / total * 100,
	}, nil
}

// Default uses the 09:00-24:00 window.
func Default(iv timeline.Interval) (Position, error) {
	return ToPosition(iv, DefaultWindowStart, DefaultWindowTotal)
}

// ForGrid uses the window covered by g.
func ForGrid(g timeline.Grid, iv timeline.Interval) (Position, error) {
	return ToPosition(iv, g.WindowStart(), g.WindowTotal())
}
