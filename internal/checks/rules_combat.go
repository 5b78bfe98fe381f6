package checks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/combat"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

// CombatPingRule nags players who have not acted during a players' phase
// that has been open past the configured window. It re-arms after the same
// window so a stalled phase pings periodically, not every run.
type CombatPingRule struct{}

func (CombatPingRule) Name() string    { return "combatping" }
func (CombatPingRule) Feature() string { return config.FeatureCombat }

func (r CombatPingRule) Evaluate(ctx *Context) (*Notification, error) {
	state := ctx.Campaign.Combat
	if !state.Active() || state.Phase != combat.PhasePlayers {
		return nil, nil
	}

	window := time.Duration(ctx.Settings.CombatPingHours) * time.Hour
	if ctx.Now.Sub(state.PhaseStarted) < window {
		return nil, nil
	}

	rec := ctx.Campaign.Check(r.Name())
	if !rec.LastFired.IsZero() && ctx.Now.Sub(rec.LastFired) < window {
		return nil, nil
	}

	eligible := ctx.Campaign.EligiblePlayerIDs(ctx.GMs, ctx.Now)
	waiting, err := combat.WaitingOn(state, eligible)
	if err != nil {
		// An empty eligible set must be surfaced, not silently retried.
		ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now})
		text := fmt.Sprintf("Combat round %d is waiting on players, but nobody on the roster is active.", state.Round)
		return &Notification{Destination: DestChat, Kind: KindWarning, Text: text}, nil
	}
	if len(waiting) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(waiting))
	for _, pid := range waiting {
		names = append(names, ctx.Campaign.Players[pid].DisplayName())
	}
	sort.Strings(names)

	hours := int(ctx.Now.Sub(state.PhaseStarted).Hours())
	text := fmt.Sprintf("Round %d - waiting on: %s\n(%s since players' phase started on %s)",
		state.Round, strings.Join(names, ", "), fmtHours(hours), fmtDate(state.PhaseStarted))

	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now})
	return &Notification{Destination: DestChat, Kind: KindAlert, Text: text}, nil
}
