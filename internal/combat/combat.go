package combat

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
)

var (
	// ErrNotActive indicates a combat command while no combat is tracked.
	ErrNotActive = apperrors.New(apperrors.CodeCombatNotActive, "combat is not active")
	// ErrAlreadyActive indicates a start command while combat is tracked.
	ErrAlreadyActive = apperrors.New(apperrors.CodeCombatAlreadyActive, "combat is already active")
	// ErrInvalidRound indicates a round number below 1.
	ErrInvalidRound = apperrors.New(apperrors.CodeCombatInvalidRound, "round must be at least 1")
	// ErrInvalidPhase indicates a phase name other than players or enemies.
	ErrInvalidPhase = apperrors.New(apperrors.CodeCombatInvalidPhase, "phase must be players or enemies")
	// ErrNoActivePlayers indicates an empty eligible set during auto-advance checks.
	ErrNoActivePlayers = apperrors.New(apperrors.CodeCombatNoActivePlayers, "no active players to wait on")
)

// Advance describes what a transition produced, so the caller can emit the
// matching notifications exactly once.
type Advance struct {
	// PhaseChanged is set when the acting side flipped.
	PhaseChanged bool
	// NewRound is set when a full round completed (Enemies back to Players).
	NewRound bool
	// GMPing is set on the Players-to-Enemies flip; it fires exactly once
	// per phase because the transition itself happens once.
	GMPing bool
}

// Start begins combat tracking at round 1, players' phase.
func Start(s State, enemies []Enemy, now time.Time) (State, error) {
	if s.Active() {
		return s, ErrAlreadyActive
	}
	updated := s
	updated.Status = StatusActive
	updated.Round = 1
	updated.Phase = PhasePlayers
	updated.PhaseStarted = now.UTC()
	updated.PlayersActed = map[string]time.Time{}
	updated.Enemies = append([]Enemy(nil), enemies...)
	updated.Log = appendLog(s.Log, fmt.Sprintf("Round 1 begins (%s)", describeEnemies(enemies)))
	return updated, nil
}

// RecordAction notes that an eligible player acted during the players'
// phase. When every eligible player has acted the phase auto-advances.
// Actions outside the players' phase, by ineligible players, or repeat
// actions leave the state unchanged.
func RecordAction(s State, playerID string, eligible []string, now time.Time) (State, Advance, error) {
	if !s.Active() {
		return s, Advance{}, ErrNotActive
	}
	if s.Phase != PhasePlayers {
		return s, Advance{}, nil
	}
	if !contains(eligible, playerID) {
		return s, Advance{}, nil
	}
	if _, acted := s.PlayersActed[playerID]; acted {
		return s, Advance{}, nil
	}

	updated := s
	updated.PlayersActed = copyActed(s.PlayersActed)
	updated.PlayersActed[playerID] = now.UTC()

	if allActed(updated.PlayersActed, eligible) {
		return advancePhase(updated, now)
	}
	return updated, Advance{}, nil
}

// AdvancePhase flips the acting side on GM command. Enemies back to Players
// increments the round.
func AdvancePhase(s State, now time.Time) (State, Advance, error) {
	if !s.Active() {
		return s, Advance{}, ErrNotActive
	}
	return advancePhase(s, now)
}

func advancePhase(s State, now time.Time) (State, Advance, error) {
	updated := s
	updated.PlayersActed = map[string]time.Time{}
	updated.PhaseStarted = now.UTC()

	adv := Advance{PhaseChanged: true}
	if s.Phase == PhasePlayers {
		updated.Phase = PhaseEnemies
		adv.GMPing = true
		updated.Log = appendLog(s.Log, fmt.Sprintf("Round %d: enemies act", s.Round))
	} else {
		updated.Phase = PhasePlayers
		updated.Round = s.Round + 1
		adv.NewRound = true
		updated.Log = appendLog(s.Log, fmt.Sprintf("Round %d begins", updated.Round))
	}
	return updated, adv, nil
}

// SetRoundPhase overrides the round and phase on GM command, clearing the
// acted set. It also starts combat when none is tracked, matching the
// original /round command behavior.
func SetRoundPhase(s State, round int, phase Phase, now time.Time) (State, error) {
	if round < 1 {
		return s, ErrInvalidRound
	}
	updated := s
	updated.Status = StatusActive
	updated.Round = round
	updated.Phase = phase
	updated.PhaseStarted = now.UTC()
	updated.PlayersActed = map[string]time.Time{}
	updated.Log = appendLog(s.Log, fmt.Sprintf("Round %d: %s act", round, phase))
	return updated, nil
}

// End stops combat tracking, clearing sub-trackers and restoring the
// inactive invariants. The narrative log is returned as a closing summary.
func End(s State) (State, []string, error) {
	if !s.Active() {
		return s, nil, ErrNotActive
	}
	summary := append([]string(nil), s.Log...)
	return State{Status: StatusInactive}, summary, nil
}

// WaitingOn returns eligible players who have not acted this phase. The
// error surfaces an empty eligible set so callers can report "no active
// players" rather than waiting forever.
func WaitingOn(s State, eligible []string) ([]string, error) {
	if !s.Active() || s.Phase != PhasePlayers {
		return nil, nil
	}
	if len(eligible) == 0 {
		return nil, ErrNoActivePlayers
	}
	var waiting []string
	for _, id := range eligible {
		if _, acted := s.PlayersActed[id]; !acted {
			waiting = append(waiting, id)
		}
	}
	return waiting, nil
}

// maxLogLines bounds what End and reports replay; older lines are dropped
// from display but the full log is kept until combat ends.
const maxLogLines = 200

func appendLog(log []string, line string) []string {
	out := append(append([]string(nil), log...), line)
	if len(out) > maxLogLines {
		out = out[len(out)-maxLogLines:]
	}
	return out
}

func describeEnemies(enemies []Enemy) string {
	if len(enemies) == 0 {
		return "no enemies listed"
	}
	parts := make([]string, 0, len(enemies))
	for _, e := range enemies {
		if e.Count > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", e.Count, e.Name))
		} else {
			parts = append(parts, e.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func allActed(acted map[string]time.Time, eligible []string) bool {
	if len(eligible) == 0 {
		return false
	}
	for _, id := range eligible {
		if _, ok := acted[id]; !ok {
			return false
		}
	}
	return true
}

func copyActed(acted map[string]time.Time) map[string]time.Time {
	out := make(map[string]time.Time, len(acted)+1)
	for k, v := range acted {
		out[k] = v
	}
	return out
}
