package combat

import (
	"strings"

	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
)

const (
	// ClockCap is the maximum number of live clocks per campaign.
	ClockCap = 15
	// ClockMinSegments is the smallest allowed clock size.
	ClockMinSegments = 2
	// ClockMaxSegments is the largest allowed clock size.
	ClockMaxSegments = 12
)

var (
	// ErrClockNotFound indicates an unknown clock id.
	ErrClockNotFound = apperrors.New(apperrors.CodeClockNotFound, "clock not found")
	// ErrClockInvalidSegments indicates segments outside [2, 12].
	ErrClockInvalidSegments = apperrors.New(apperrors.CodeClockInvalidSegments, "clock segments must be between 2 and 12")
	// ErrClockInvalidTicks indicates a non-positive tick count.
	ErrClockInvalidTicks = apperrors.New(apperrors.CodeClockInvalidTicks, "tick count must be greater than zero")
	// ErrClockCapExceeded indicates the live-clock cap was hit.
	ErrClockCapExceeded = apperrors.New(apperrors.CodeClockCapExceeded, "clock cap reached")
)

// Clock is one progress clock.
//
// Invariant: 0 <= Filled <= Segments, Segments in [2, 12].
type Clock struct {
	Label    string `json:"label,omitempty"`
	Segments int    `json:"segments"`
	Filled   int    `json:"filled"`
}

// Complete reports whether the clock is full. Complete clocks are reported
// but never auto-deleted.
func (c Clock) Complete() bool {
	return c.Filled >= c.Segments
}

// CreateClock adds a clock at zero filled. Creating past the cap is
// rejected outright.
func CreateClock(s State, id int, label string, segments int) (State, error) {
	if segments < ClockMinSegments || segments > ClockMaxSegments {
		return s, ErrClockInvalidSegments
	}
	if _, exists := s.Clocks[id]; !exists && len(s.Clocks) >= ClockCap {
		return s, ErrClockCapExceeded
	}

	updated := s
	updated.Clocks = copyClocks(s.Clocks)
	updated.Clocks[id] = Clock{Label: strings.TrimSpace(label), Segments: segments}
	return updated, nil
}

// Tick fills n segments, clamping at full. The returned clock lets callers
// report completion.
func Tick(s State, id, n int) (State, Clock, error) {
	if n <= 0 {
		return s, Clock{}, ErrClockInvalidTicks
	}
	clock, ok := s.Clocks[id]
	if !ok {
		return s, Clock{}, ErrClockNotFound
	}

	clock.Filled += n
	if clock.Filled > clock.Segments {
		clock.Filled = clock.Segments
	}

	updated := s
	updated.Clocks = copyClocks(s.Clocks)
	updated.Clocks[id] = clock
	return updated, clock, nil
}

// Untick empties n segments, clamping at zero.
func Untick(s State, id, n int) (State, Clock, error) {
	if n <= 0 {
		return s, Clock{}, ErrClockInvalidTicks
	}
	clock, ok := s.Clocks[id]
	if !ok {
		return s, Clock{}, ErrClockNotFound
	}

	clock.Filled -= n
	if clock.Filled < 0 {
		clock.Filled = 0
	}

	updated := s
	updated.Clocks = copyClocks(s.Clocks)
	updated.Clocks[id] = clock
	return updated, clock, nil
}

// DeleteClock removes one clock.
func DeleteClock(s State, id int) (State, error) {
	if _, ok := s.Clocks[id]; !ok {
		return s, ErrClockNotFound
	}
	updated := s
	updated.Clocks = copyClocks(s.Clocks)
	delete(updated.Clocks, id)
	return updated, nil
}

func copyClocks(clocks map[int]Clock) map[int]Clock {
	out := make(map[int]Clock, len(clocks)+1)
	for k, v := range clocks {
		out[k] = v
	}
	return out
}
