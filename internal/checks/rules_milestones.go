package checks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/ledger"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

// MilestoneRule celebrates campaign post-count multiples. A busy run can
// cross several at once; only the highest is announced but every crossed
// multiple is marked celebrated so none fire late.
type MilestoneRule struct{}

func (MilestoneRule) Name() string    { return "milestone" }
func (MilestoneRule) Feature() string { return config.FeatureMilestones }

func (r MilestoneRule) Evaluate(ctx *Context) (*Notification, error) {
	crossed := ledger.CrossedMultiples(0, ctx.Campaign.TotalPosts, ledger.CampaignMilestoneStep)
	due := ledger.FilterCelebrated(crossed, ctx.Campaign.CelebratedPosts)
	if len(due) == 0 {
		return nil, nil
	}

	top := due[len(due)-1]
	ctx.Campaign.CelebratedPosts = append(ctx.Campaign.CelebratedPosts, due...)

	text := fmt.Sprintf("%s just passed %d posts! Congratulations to everyone keeping the story alive.",
		ctx.Def.Name, top)
	return &Notification{Destination: DestChat, Kind: KindCelebration, Text: text}, nil
}

// StreakRule celebrates per-player daily posting streak thresholds.
type StreakRule struct{}

func (StreakRule) Name() string    { return "streak" }
func (StreakRule) Feature() string { return config.FeatureStreaks }

func (r StreakRule) Evaluate(ctx *Context) (*Notification, error) {
	var lines []string
	for _, p := range ctx.Campaign.ActivePlayers(ctx.GMs) {
		rec := ctx.Campaign.Record(p.ID)
		if ledger.CurrentStreak(rec, ctx.Now) == 0 {
			continue
		}
		due := ledger.DueStreakMilestones(rec)
		if len(due) == 0 {
			continue
		}
		for _, m := range due {
			rec = ledger.ClaimStreakMilestone(rec, m)
		}
		ctx.Campaign.SetRecord(p.ID, rec)
		top := due[len(due)-1]
		lines = append(lines, fmt.Sprintf("%s is on a %d-day posting streak!", p.DisplayName(), top))
	}

	if len(lines) == 0 {
		return nil, nil
	}
	sort.Strings(lines)
	return &Notification{Destination: DestChat, Kind: KindCelebration, Text: strings.Join(lines, "\n")}, nil
}

// LeaderboardRule posts a periodic cross-campaign activity ranking to the
// shared leaderboard topic.
type LeaderboardRule struct{}

func (LeaderboardRule) Name() string { return "leaderboard" }

func (r LeaderboardRule) Evaluate(snap *snapshot.Snapshot, cfg config.Config, now time.Time) (*Notification, error) {
	if cfg.LeaderboardTopic == 0 {
		return nil, nil
	}
	if !intervalElapsed(snap.LastLeaderboard, cfg.Settings.LeaderboardIntervalDays, now) {
		return nil, nil
	}

	type entry struct {
		name   string
		weekly int
		total  int
	}
	var entries []entry

	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, def := range cfg.Campaigns {
		c := snap.Campaign(def.CanonicalID())
		if c.Paused {
			continue
		}
		weekly := 0
		for _, rec := range c.Records {
			weekly += len(ledger.InWindow(rec.Timestamps, weekAgo, time.Time{}))
		}
		if c.TotalPosts == 0 {
			continue
		}
		entries = append(entries, entry{name: def.Name, weekly: weekly, total: c.TotalPosts})
	}

	if len(entries) == 0 {
		return nil, nil
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weekly != entries[j].weekly {
			return entries[i].weekly > entries[j].weekly
		}
		return entries[i].total > entries[j].total
	})

	medals := []string{"1.", "2.", "3."}
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s this week (%d total)",
			rank, e.name, posts(e.weekly), e.total))
	}

	snap.LastLeaderboard = now
	text := fmt.Sprintf("Campaign leaderboard (%s):\n\n%s", fmtDate(now), strings.Join(lines, "\n"))
	return &Notification{Destination: DestLeaderboard, Kind: KindReport, Text: text}, nil
}

// GlobalMilestoneRule celebrates cross-campaign post-count multiples on the
// leaderboard topic, falling back to nothing when no topic is configured.
type GlobalMilestoneRule struct{}

func (GlobalMilestoneRule) Name() string { return "globalmilestone" }

func (r GlobalMilestoneRule) Evaluate(snap *snapshot.Snapshot, cfg config.Config, now time.Time) (*Notification, error) {
	if cfg.LeaderboardTopic == 0 {
		return nil, nil
	}

	crossed := ledger.CrossedMultiples(0, snap.GlobalTotalPosts, ledger.GlobalMilestoneStep)
	due := ledger.FilterCelebrated(crossed, snap.GlobalCelebrated)
	if len(due) == 0 {
		return nil, nil
	}

	top := due[len(due)-1]
	snap.GlobalCelebrated = append(snap.GlobalCelebrated, due...)

	text := fmt.Sprintf("All campaigns together just passed %d posts! That's a lot of story.", top)
	return &Notification{Destination: DestLeaderboard, Kind: KindCelebration, Text: text}, nil
}
