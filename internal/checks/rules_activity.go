package checks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

// SilenceRule alerts when a campaign topic has been quiet too long. It
// re-arms after the same interval, so a dead topic nags once per window,
// not once per run.
type SilenceRule struct{}

func (SilenceRule) Name() string    { return "silence" }
func (SilenceRule) Feature() string { return config.FeatureAlerts }

func (r SilenceRule) Evaluate(ctx *Context) (*Notification, error) {
	last := ctx.Campaign.LastMessage
	if last.Time.IsZero() {
		return nil, nil // nothing tracked yet
	}

	threshold := time.Duration(ctx.Settings.AlertHours) * time.Hour
	elapsed := ctx.Now.Sub(last.Time)
	if elapsed < threshold {
		return nil, nil
	}

	rec := ctx.Campaign.Check(r.Name())
	if !rec.LastFired.IsZero() && ctx.Now.Sub(rec.LastFired) < threshold {
		return nil, nil
	}

	count := ctx.Campaign.Record(last.PlayerID).TotalPosts
	countStr := ""
	if count > 0 {
		countStr = fmt.Sprintf(" (%s total)", posts(count))
	}

	text := fmt.Sprintf("No new posts in %s for %s.\nLast post was from %s%s on %s.",
		ctx.Def.Name, fmtHours(int(elapsed.Hours())), last.PlayerName, countStr, fmtDate(last.Time))

	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now})
	return &Notification{Destination: DestChat, Kind: KindAlert, Text: text}, nil
}

// InactivityRule warns silent players at escalating week marks and removes
// them from tracking at the removal mark. Warnings are batched into one
// notification per campaign per run; each player's warned week only moves
// forward.
type InactivityRule struct{}

func (InactivityRule) Name() string    { return "inactivity" }
func (InactivityRule) Feature() string { return config.FeatureWarnings }

func (r InactivityRule) Evaluate(ctx *Context) (*Notification, error) {
	var lines []string
	var toRemove []string

	ids := make([]string, 0, len(ctx.Campaign.Players))
	for pid := range ctx.Campaign.Players {
		ids = append(ids, pid)
	}
	sort.Strings(ids)

	for _, pid := range ids {
		p := ctx.Campaign.Players[pid]
		if p.Removed || ctx.GMs[p.ID] || p.IsAway(ctx.Now) || p.LastPost.IsZero() {
			continue
		}

		days := int(ctx.Now.Sub(p.LastPost).Hours() / 24)
		week := days / 7

		if week >= ctx.Settings.RemoveWeeks {
			if p.LastWarnedWeek < ctx.Settings.RemoveWeeks {
				lines = append(lines, fmt.Sprintf(
					"%s has not posted in %d days (last: %s) and is no longer tracked as an active player.",
					p.DisplayName(), days, fmtDate(p.LastPost)))
				toRemove = append(toRemove, p.ID)
			}
			continue
		}

		for _, mark := range ctx.Settings.WarnWeeks {
			if week >= mark && p.LastWarnedWeek < mark {
				lines = append(lines, warnLine(p, mark, days, ctx.Settings.RemoveWeeks))
				p.LastWarnedWeek = mark
				ctx.Campaign.Players[pid] = p
				break // one warning per player per run
			}
		}
	}

	for _, pid := range toRemove {
		if err := ctx.Campaign.RemovePlayer(pid, ctx.Now); err != nil {
			return nil, err
		}
	}

	if len(lines) == 0 {
		return nil, nil
	}
	return &Notification{Destination: DestChat, Kind: KindWarning, Text: strings.Join(lines, "\n")}, nil
}

func warnLine(p snapshot.Player, week, days, removeWeeks int) string {
	switch {
	case week >= removeWeeks-1:
		return fmt.Sprintf("%s: %d days without a post (last: %s). One week until removal from tracking.",
			p.DisplayName(), days, fmtDate(p.LastPost))
	case week >= 2:
		return fmt.Sprintf("%s: still no post, %d days now (last: %s).",
			p.DisplayName(), days, fmtDate(p.LastPost))
	default:
		return fmt.Sprintf("%s hasn't posted in %d days (last: %s). Everything okay?",
			p.DisplayName(), days, fmtDate(p.LastPost))
	}
}

// TotalSilenceRule fires once when nobody, GM included, has posted for the
// configured window. Any post resets it.
type TotalSilenceRule struct{}

func (TotalSilenceRule) Name() string    { return "totalsilence" }
func (TotalSilenceRule) Feature() string { return config.FeatureTotalSilence }

func (r TotalSilenceRule) Evaluate(ctx *Context) (*Notification, error) {
	last := ctx.Campaign.LastMessage
	if last.Time.IsZero() {
		return nil, nil
	}

	threshold := time.Duration(ctx.Settings.TotalSilenceHours) * time.Hour
	if ctx.Now.Sub(last.Time) < threshold {
		return nil, nil
	}

	// One-shot: firing is keyed to the silent stretch. A new post moves
	// last.Time, which re-arms the rule.
	rec := ctx.Campaign.Check(r.Name())
	marker := last.Time.UTC().Format(time.RFC3339)
	if rec.LastValue == marker {
		return nil, nil
	}

	text := fmt.Sprintf("%s has gone completely quiet: no posts from anyone, GM included, since %s.",
		ctx.Def.Name, fmtRelative(ctx.Now, last.Time))

	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now, LastValue: marker})
	return &Notification{Destination: DestChat, Kind: KindAlert, Text: text}, nil
}
