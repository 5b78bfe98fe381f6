package combat

import (
	"strings"

	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
)

// HpEntryCap is the maximum number of live HP entries per campaign.
const HpEntryCap = 20

var (
	// ErrHpEntryNotFound indicates an unknown HP entry id.
	ErrHpEntryNotFound = apperrors.New(apperrors.CodeHpEntryNotFound, "hp entry not found")
	// ErrHpInvalidRange indicates current outside [0, max] or max below 1.
	ErrHpInvalidRange = apperrors.New(apperrors.CodeHpInvalidRange, "hp must satisfy 0 <= current <= max")
	// ErrHpInvalidAmount indicates a non-positive damage or heal amount.
	ErrHpInvalidAmount = apperrors.New(apperrors.CodeHpInvalidAmount, "amount must be greater than zero")
	// ErrHpCapExceeded indicates the live-entry cap was hit.
	ErrHpCapExceeded = apperrors.New(apperrors.CodeHpCapExceeded, "hp entry cap reached")
	// ErrHpEmptyLabel indicates a missing entry label.
	ErrHpEmptyLabel = apperrors.New(apperrors.CodeHpEmptyLabel, "hp label is required")
)

// Entry is one tracked HP pool.
//
// Invariant: 0 <= Current <= Max.
type Entry struct {
	Label   string `json:"label"`
	Current int    `json:"current"`
	Max     int    `json:"max"`
}

// Down reports whether the entry is at exactly zero.
func (e Entry) Down() bool {
	return e.Current == 0
}

// SetHp creates or replaces an HP entry. Creating past the cap is rejected
// outright, never truncated.
func SetHp(s State, id int, label string, current, max int) (State, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return s, ErrHpEmptyLabel
	}
	if max < 1 || current < 0 || current > max {
		return s, ErrHpInvalidRange
	}
	if _, exists := s.HP[id]; !exists && len(s.HP) >= HpEntryCap {
		return s, ErrHpCapExceeded
	}

	updated := s
	updated.HP = copyHp(s.HP)
	updated.HP[id] = Entry{Label: label, Current: current, Max: max}
	return updated, nil
}

// Damage reduces an entry, clamping at zero. The returned entry lets
// callers report the "down" state.
func Damage(s State, id, amount int) (State, Entry, error) {
	if amount <= 0 {
		return s, Entry{}, ErrHpInvalidAmount
	}
	entry, ok := s.HP[id]
	if !ok {
		return s, Entry{}, ErrHpEntryNotFound
	}

	entry.Current -= amount
	if entry.Current < 0 {
		entry.Current = 0
	}

	updated := s
	updated.HP = copyHp(s.HP)
	updated.HP[id] = entry
	return updated, entry, nil
}

// Heal raises an entry, clamping at max.
func Heal(s State, id, amount int) (State, Entry, error) {
	if amount <= 0 {
		return s, Entry{}, ErrHpInvalidAmount
	}
	entry, ok := s.HP[id]
	if !ok {
		return s, Entry{}, ErrHpEntryNotFound
	}

	entry.Current += amount
	if entry.Current > entry.Max {
		entry.Current = entry.Max
	}

	updated := s
	updated.HP = copyHp(s.HP)
	updated.HP[id] = entry
	return updated, entry, nil
}

// RemoveHp deletes one entry.
func RemoveHp(s State, id int) (State, error) {
	if _, ok := s.HP[id]; !ok {
		return s, ErrHpEntryNotFound
	}
	updated := s
	updated.HP = copyHp(s.HP)
	delete(updated.HP, id)
	return updated, nil
}

// ClearHp deletes every entry.
func ClearHp(s State) State {
	updated := s
	updated.HP = nil
	return updated
}

func copyHp(entries map[int]Entry) map[int]Entry {
	out := make(map[int]Entry, len(entries)+1)
	for k, v := range entries {
		out[k] = v
	}
	return out
}
