// Package combat owns the per-campaign combat turn state machine and its
// HP and progress-clock sub-trackers.
//
// Every transition is a pure apply function over a State value. The engine
// never reads the wall clock; callers pass "now" so replays and tests see
// identical behavior.
package combat

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status describes whether combat is being tracked.
type Status string

const (
	// StatusInactive means no combat is running.
	StatusInactive Status = "inactive"
	// StatusActive means a combat round is in progress.
	StatusActive Status = "active"
)

// Phase is the side currently acting within a round.
type Phase string

const (
	// PhasePlayers is the players' half of the round.
	PhasePlayers Phase = "players"
	// PhaseEnemies is the enemies' half of the round.
	PhaseEnemies Phase = "enemies"
)

// ParsePhase maps user text to a phase value.
func ParsePhase(s string) (Phase, bool) {
	switch Phase(s) {
	case PhasePlayers:
		return PhasePlayers, true
	case PhaseEnemies:
		return PhaseEnemies, true
	}
	return "", false
}

// Enemy is one entry on the opposing side.
type Enemy struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// State is the full combat-tracking state for one campaign.
//
// Invariant: StatusInactive implies Round == 0 and PlayersActed is empty.
type State struct {
	Status       Status               `json:"status"`
	Round        int                  `json:"round"`
	Phase        Phase                `json:"phase,omitempty"`
	PhaseStarted time.Time            `json:"phase_started,omitempty"`
	PlayersActed map[string]time.Time `json:"players_acted,omitempty"`
	Enemies      []Enemy              `json:"enemies,omitempty"`
	HP           map[int]Entry        `json:"hp,omitempty"`
	Clocks       map[int]Clock        `json:"clocks,omitempty"`
	Log          []string             `json:"log,omitempty"`
}

// Active reports whether combat is currently tracked.
func (s State) Active() bool {
	return s.Status == StatusActive
}

// stateJSON mirrors State with PlayersActed left raw so both the current
// map shape and the legacy list shape can be decoded.
type stateJSON struct {
	Status       Status          `json:"status"`
	Round        int             `json:"round"`
	Phase        Phase           `json:"phase,omitempty"`
	PhaseStarted time.Time       `json:"phase_started,omitempty"`
	PlayersActed json.RawMessage `json:"players_acted,omitempty"`
	Enemies      []Enemy         `json:"enemies,omitempty"`
	HP           map[int]Entry   `json:"hp,omitempty"`
	Clocks       map[int]Clock   `json:"clocks,omitempty"`
	Log          []string        `json:"log,omitempty"`
}

// DecodeState unmarshals a stored combat state, migrating the legacy
// list-shaped players_acted field into the timestamped map shape. Entries
// migrated from a list get loadTime as a placeholder action time. The
// upgrade is idempotent: map-shaped input passes through unchanged.
func DecodeState(data []byte, loadTime time.Time) (State, error) {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("decode combat state: %w", err)
	}

	state := State{
		Status:       raw.Status,
		Round:        raw.Round,
		Phase:        raw.Phase,
		PhaseStarted: raw.PhaseStarted,
		Enemies:      raw.Enemies,
		HP:           raw.HP,
		Clocks:       raw.Clocks,
		Log:          raw.Log,
	}
	if state.Status == "" {
		state.Status = StatusInactive
	}

	if len(raw.PlayersActed) > 0 {
		var acted map[string]time.Time
		if err := json.Unmarshal(raw.PlayersActed, &acted); err == nil {
			state.PlayersActed = acted
		} else {
			var legacy []string
			if err := json.Unmarshal(raw.PlayersActed, &legacy); err != nil {
				return State{}, fmt.Errorf("decode players_acted: %w", err)
			}
			acted = make(map[string]time.Time, len(legacy))
			for _, id := range legacy {
				acted[id] = loadTime.UTC()
			}
			state.PlayersActed = acted
		}
	}

	return state, nil
}
