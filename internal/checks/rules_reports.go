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

// RosterRule posts a periodic party roster with per-player activity stats.
type RosterRule struct{}

func (RosterRule) Name() string    { return "roster" }
func (RosterRule) Feature() string { return config.FeatureRoster }

func (r RosterRule) Evaluate(ctx *Context) (*Notification, error) {
	rec := ctx.Campaign.Check(r.Name())
	if !intervalElapsed(rec.LastFired, ctx.Settings.RosterIntervalDays, ctx.Now) {
		return nil, nil
	}

	players := ctx.Campaign.ActivePlayers(ctx.GMs)
	if len(players) == 0 {
		return nil, nil
	}
	sort.Slice(players, func(i, j int) bool {
		return ctx.Campaign.Record(players[i].ID).TotalPosts > ctx.Campaign.Record(players[j].ID).TotalPosts
	})

	window := ctx.Settings.SessionWindow()
	var blocks []string
	for _, p := range players {
		pr := ctx.Campaign.Record(p.ID)
		if pr.TotalPosts == 0 {
			continue
		}
		blocks = append(blocks, rosterBlock(p.DisplayName(), p, pr, window, ctx.Now))
	}

	// GM blocks lead the report when the GM has history.
	for gmID := range ctx.GMs {
		gr := ctx.Campaign.Record(gmID)
		if gr.TotalPosts > 0 {
			blocks = append([]string{rosterBlock("GM", snapshot.Player{}, gr, window, ctx.Now)}, blocks...)
		}
	}

	if len(blocks) == 0 {
		return nil, nil
	}

	footer := fmt.Sprintf("\nParty size: %d/%d.", len(players), ctx.Settings.RequiredPlayers)
	if missing := ctx.Settings.RequiredPlayers - len(players); missing > 0 {
		footer += fmt.Sprintf("\n%s needs %d more player%s!", ctx.Def.Name, missing, plural(missing))
	}

	text := fmt.Sprintf("Party roster for %s:\n\n%s%s", ctx.Def.Name, strings.Join(blocks, "\n\n"), footer)
	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now})
	return &Notification{Destination: DestChat, Kind: KindReport, Text: text}, nil
}

func rosterBlock(label string, p snapshot.Player, rec ledger.Record, window time.Duration, now time.Time) string {
	sessions := ledger.SessionCount(rec, window)
	weekly := ledger.WeeklyCount(rec, now)

	gapStr := "N/A"
	if gap, ok := ledger.AvgGap(ledger.Sessions(rec.Timestamps, window)); ok {
		gapStr = fmtGap(gap)
	}
	lastStr := "N/A"
	if last, ok := rec.LastPost(); ok {
		lastStr = fmtRelative(now, last)
	}

	lines := []string{label}
	if p.Username != "" {
		lines = append(lines, fmt.Sprintf("- @%s.", p.Username))
	}
	lines = append(lines,
		fmt.Sprintf("- %s total.", posts(rec.TotalPosts)),
	)
	if rec.MediaPosts > 0 {
		lines = append(lines, fmt.Sprintf("- %d with media.", rec.MediaPosts))
	}
	lines = append(lines,
		fmt.Sprintf("- %d posting session%s.", sessions, plural(sessions)),
		fmt.Sprintf("- %s in the last week.", posts(weekly)),
		fmt.Sprintf("- Average gap between posting: %s.", gapStr),
		fmt.Sprintf("- Last post: %s.", lastStr),
	)
	return strings.Join(lines, "\n")
}

// PaceReportRule posts a weekly this-week-vs-last-week comparison.
type PaceReportRule struct{}

func (PaceReportRule) Name() string    { return "pace" }
func (PaceReportRule) Feature() string { return config.FeaturePace }

func (r PaceReportRule) Evaluate(ctx *Context) (*Notification, error) {
	rec := ctx.Campaign.Check(r.Name())
	if !intervalElapsed(rec.LastFired, ctx.Settings.PaceIntervalDays, ctx.Now) {
		return nil, nil
	}

	thisWeek, lastWeek := weeklySplit(ctx.Campaign, ctx.Now)
	if thisWeek == 0 && lastWeek == 0 {
		return nil, nil
	}

	trend := ledger.PaceTrend(thisWeek, lastWeek)
	weekAgo := ctx.Now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := ctx.Now.Add(-14 * 24 * time.Hour)

	text := fmt.Sprintf(
		"Weekly pace for %s:\n\nThis week (%s to %s): %s (%.1f/day)\nLast week (%s to %s): %s (%.1f/day)\nTrend: %s",
		ctx.Def.Name,
		fmtDate(weekAgo), fmtDate(ctx.Now), posts(thisWeek), float64(thisWeek)/7,
		fmtDate(twoWeeksAgo), fmtDate(weekAgo), posts(lastWeek), float64(lastWeek)/7,
		trend)

	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now})
	return &Notification{Destination: DestChat, Kind: KindReport, Text: text}, nil
}

// PaceDropRule alerts on a sharp week-over-week decline. Tiny campaigns
// are exempt via a minimum baseline, so three-post weeks do not alarm.
type PaceDropRule struct{}

func (PaceDropRule) Name() string    { return "pacedrop" }
func (PaceDropRule) Feature() string { return config.FeaturePaceDrop }

func (r PaceDropRule) Evaluate(ctx *Context) (*Notification, error) {
	thisWeek, lastWeek := weeklySplit(ctx.Campaign, ctx.Now)
	if lastWeek < ctx.Settings.PaceDropMinBaseline {
		return nil, nil
	}
	if float64(thisWeek) >= float64(lastWeek)*0.6 {
		return nil, nil // less than a 40% drop
	}

	// Fire once per observed week; the marker re-arms as the window moves.
	rec := ctx.Campaign.Check(r.Name())
	marker := fmt.Sprintf("%d:%d", lastWeek, thisWeek)
	if rec.LastValue == marker && !rec.LastFired.IsZero() && ctx.Now.Sub(rec.LastFired) < 7*24*time.Hour {
		return nil, nil
	}

	drop := 100 - int(float64(thisWeek)/float64(lastWeek)*100)
	text := fmt.Sprintf("Pace drop in %s: %s this week against %s last week (down %d%%).",
		ctx.Def.Name, posts(thisWeek), posts(lastWeek), drop)

	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now, LastValue: marker})
	return &Notification{Destination: DestChat, Kind: KindAlert, Text: text}, nil
}

func weeklySplit(c *snapshot.CampaignState, now time.Time) (thisWeek, lastWeek int) {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)
	for _, rec := range c.Records {
		thisWeek += len(ledger.InWindow(rec.Timestamps, weekAgo, time.Time{}))
		lastWeek += len(ledger.InWindow(rec.Timestamps, twoWeeksAgo, weekAgo))
	}
	return thisWeek, lastWeek
}

// RecruitmentRule posts a notice when the party is under target size.
type RecruitmentRule struct{}

func (RecruitmentRule) Name() string    { return "recruitment" }
func (RecruitmentRule) Feature() string { return config.FeatureRecruitment }

func (r RecruitmentRule) Evaluate(ctx *Context) (*Notification, error) {
	rec := ctx.Campaign.Check(r.Name())
	if !intervalElapsed(rec.LastFired, ctx.Settings.RecruitmentIntervalDays, ctx.Now) {
		return nil, nil
	}

	players := ctx.Campaign.ActivePlayers(ctx.GMs)
	needed := ctx.Settings.RequiredPlayers - len(players)
	if needed <= 0 {
		// Full roster: restart the interval quietly.
		ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now})
		return nil, nil
	}

	var roster string
	if len(players) > 0 {
		names := make([]string, 0, len(players))
		for _, p := range players {
			names = append(names, "- "+p.DisplayName())
		}
		sort.Strings(names)
		roster = fmt.Sprintf("Current roster (%d/%d):\n%s",
			len(players), ctx.Settings.RequiredPlayers, strings.Join(names, "\n"))
	} else {
		roster = fmt.Sprintf("Current roster: 0/%d (no active players)", ctx.Settings.RequiredPlayers)
	}

	text := fmt.Sprintf("%s needs %d more player%s!\n\n%s\n\nKnow anyone who'd like to join?",
		ctx.Def.Name, needed, plural(needed), roster)

	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now})
	return &Notification{Destination: DestChat, Kind: KindReport, Text: text}, nil
}

// AnniversaryRule celebrates the campaign's start date once per year.
type AnniversaryRule struct{}

func (AnniversaryRule) Name() string    { return "anniversary" }
func (AnniversaryRule) Feature() string { return config.FeatureAnniversary }

func (r AnniversaryRule) Evaluate(ctx *Context) (*Notification, error) {
	created, ok := ctx.Def.CreatedDate()
	if !ok {
		return nil, nil
	}

	today := ctx.Now.UTC()
	if today.Month() != created.Month() || today.Day() != created.Day() {
		return nil, nil
	}
	years := today.Year() - created.Year()
	if years < 1 {
		return nil, nil
	}

	rec := ctx.Campaign.Check(r.Name())
	marker := fmt.Sprintf("%d", years)
	if rec.LastValue == marker {
		return nil, nil
	}

	yearStr := fmt.Sprintf("%d years", years)
	if years == 1 {
		yearStr = "1 year"
	}
	text := fmt.Sprintf("%s is %s old today!\n\nCampaign started %s. Here's to more adventures ahead.",
		ctx.Def.Name, yearStr, created.Format("January 2, 2006"))

	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now, LastValue: marker})
	return &Notification{Destination: DestChat, Kind: KindCelebration, Text: text}, nil
}

// potwBoons are the small in-fiction rewards handed out with the weekly
// award. The pick rotates with the date so reruns stay deterministic.
var potwBoons = []string{
	"advantage on your next roll",
	"one automatic success on a skill check",
	"a reroll of any one die this week",
	"your character finds something useful",
	"a moment in the spotlight of the GM's choosing",
}

// PlayerOfTheWeekRule awards the most consistent poster of the trailing
// week: the smallest average session gap among players with enough
// sessions. Session count, not raw posts, gates eligibility so rapid-fire
// spam does not qualify.
type PlayerOfTheWeekRule struct{}

func (PlayerOfTheWeekRule) Name() string    { return "potw" }
func (PlayerOfTheWeekRule) Feature() string { return config.FeaturePOTW }

func (r PlayerOfTheWeekRule) Evaluate(ctx *Context) (*Notification, error) {
	rec := ctx.Campaign.Check(r.Name())
	if !intervalElapsed(rec.LastFired, ctx.Settings.PotwIntervalDays, ctx.Now) {
		return nil, nil
	}

	weekAgo := ctx.Now.Add(-7 * 24 * time.Hour)
	window := ctx.Settings.SessionWindow()

	type candidate struct {
		player   snapshot.Player
		sessions int
		avgGap   time.Duration
	}
	var best *candidate

	for _, p := range ctx.Campaign.ActivePlayers(ctx.GMs) {
		pr := ctx.Campaign.Record(p.ID)
		sessions := ledger.Sessions(ledger.InWindow(pr.Timestamps, weekAgo, time.Time{}), window)
		if len(sessions) < ctx.Settings.MinSessionsForAwards {
			continue
		}
		gap, ok := ledger.AvgGap(sessions)
		if !ok {
			continue
		}
		c := candidate{player: p, sessions: len(sessions), avgGap: gap}
		if best == nil || c.avgGap < best.avgGap {
			best = &c
		}
	}

	if best == nil {
		return nil, nil
	}

	boon := potwBoons[(ctx.Now.YearDay()+len(best.player.ID))%len(potwBoons)]
	text := fmt.Sprintf(
		"Player of the Week for %s: %s!\n(%s to %s)\n\n%d posting sessions with an average gap of %s. The most consistent driver of the story.\n\nBoon: %s",
		ctx.Def.Name, best.player.DisplayName(), fmtDate(weekAgo), fmtDate(ctx.Now),
		best.sessions, fmtGap(best.avgGap), boon)

	ctx.Campaign.SetCheck(r.Name(), snapshot.CheckRecord{LastFired: ctx.Now, LastValue: best.player.ID})
	return &Notification{Destination: DestChat, Kind: KindCelebration, Text: text}, nil
}
