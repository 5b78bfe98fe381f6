package command

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

func applyAway(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	// Posting creates the roster entry, so a first-time /away works too.
	c.TouchPlayer(req.PlayerID, req.PlayerName, req.Username, req.Time)

	var until time.Time
	reply := "Marked you as away indefinitely. Use /back when you return."
	if len(args) > 0 {
		days, ok := parseDays(args[0])
		if !ok {
			return Result{}, badArgs("/away [days], e.g. /away 7 or /away 2w")
		}
		until = req.Time.Add(time.Duration(days) * 24 * time.Hour)
		reply = fmt.Sprintf("Marked you as away until %s.", until.UTC().Format("2006-01-02"))
	}

	if err := c.SetAway(req.PlayerID, until); err != nil {
		return Result{}, err
	}
	return Result{Reply: reply}, nil
}

func applyBack(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	if err := c.SetBack(req.PlayerID); err != nil {
		return Result{}, err
	}
	return Result{Reply: "Welcome back! You're being tracked again."}, nil
}

func applyPause(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	c.Paused = true
	c.PauseReason = strings.Join(args, " ")

	reply := "Campaign paused. Tracking and alerts are off until /resume."
	if c.PauseReason != "" {
		reply = fmt.Sprintf("Campaign paused (%s). Tracking and alerts are off until /resume.", c.PauseReason)
	}
	return Result{Reply: reply}, nil
}

func applyResume(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	if !c.Paused {
		return Result{Reply: "The campaign isn't paused."}, nil
	}
	c.Paused = false
	c.PauseReason = ""
	return Result{Reply: "Campaign resumed. Tracking is back on."}, nil
}

func applyKick(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, badArgs("/kick <player>")
	}
	id, ok := resolvePlayer(c, args[0])
	if !ok {
		return Result{}, snapshot.ErrPlayerNotFound
	}
	if err := c.RemovePlayer(id, req.Time); err != nil {
		return Result{}, err
	}
	name := c.Players[id].DisplayName()
	return Result{Reply: fmt.Sprintf("%s is no longer tracked as an active player.", name)}, nil
}

func applyAddPlayer(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, badArgs("/addplayer <id> [name]")
	}
	id := strings.TrimPrefix(args[0], "@")
	name := strings.Join(args[1:], " ")

	if err := c.PreRegister(id, name, req.Time); err != nil {
		return Result{}, err
	}
	display := name
	if display == "" {
		display = id
	}
	return Result{Reply: fmt.Sprintf("%s added to the roster. Tracking starts with their first post.", display)}, nil
}

func applyStatus(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	var sections []string

	if c.Paused {
		line := "Campaign is paused."
		if c.PauseReason != "" {
			line = fmt.Sprintf("Campaign is paused (%s).", c.PauseReason)
		}
		sections = append(sections, line)
	}

	sections = append(sections, combatSection(c))

	if len(c.Combat.HP) > 0 {
		lines := []string{"HP:"}
		for _, id := range sortedHpIDs(c.Combat.HP) {
			e := c.Combat.HP[id]
			mark := ""
			if e.Down() {
				mark = " (down)"
			}
			lines = append(lines, fmt.Sprintf("  %d. %s: %d/%d%s", id, e.Label, e.Current, e.Max, mark))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(c.Combat.Clocks) > 0 {
		lines := []string{"Clocks:"}
		for _, id := range sortedClockIDs(c.Combat.Clocks) {
			lines = append(lines, fmt.Sprintf("  %d. %s", id, clockLine(c.Combat.Clocks[id])))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	sections = append(sections, rosterSection(c, req.Time))
	return Result{Reply: strings.Join(sections, "\n\n")}, nil
}

func combatSection(c *snapshot.CampaignState) string {
	if !c.Combat.Active() {
		return "No combat is being tracked."
	}
	acted := len(c.Combat.PlayersActed)
	return fmt.Sprintf("Combat: round %d, %s acting (%d acted this phase).",
		c.Combat.Round, c.Combat.Phase, acted)
}

func rosterSection(c *snapshot.CampaignState, now time.Time) string {
	var lines []string
	ids := make([]string, 0, len(c.Players))
	for id := range c.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := c.Players[id]
		if p.Removed {
			continue
		}
		suffix := ""
		switch {
		case p.IsAway(now) && !p.AwayUntil.IsZero():
			suffix = fmt.Sprintf(" (away until %s)", p.AwayUntil.UTC().Format("2006-01-02"))
		case p.IsAway(now):
			suffix = " (away)"
		case p.PreRegistered:
			suffix = " (no posts yet)"
		}
		lines = append(lines, "  "+p.DisplayName()+suffix)
	}

	if len(lines) == 0 {
		return "Roster: empty."
	}
	return fmt.Sprintf("Roster (%d):\n%s", len(lines), strings.Join(lines, "\n"))
}

// resolvePlayer matches an argument against roster ids, usernames and
// display names, case-insensitively.
func resolvePlayer(c *snapshot.CampaignState, arg string) (string, bool) {
	arg = strings.TrimPrefix(strings.ToLower(arg), "@")
	for id, p := range c.Players {
		if strings.ToLower(id) == arg ||
			strings.ToLower(p.Username) == arg ||
			strings.ToLower(p.Name) == arg {
			return id, true
		}
	}
	return "", false
}

func applyHelp(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	return Result{Reply: helpText}, nil
}

const helpText = `Commands:
/status - campaign, combat and roster overview
/away [days] - mark yourself away (e.g. /away 7, /away 2w)
/back - return from away

GM commands:
/combat start [enemies] - begin combat (e.g. /combat start 3x goblin, orc)
/combat advance - flip the acting side
/round <n> players|enemies - set round and phase directly
/endcombat - stop tracking combat
/hp set <id> <name> <cur> <max> - track an HP pool
/hp damage|heal <id> <n> - adjust an HP pool
/hp remove <id> | /hp clear - drop HP pools
/clock create <id> <segments> [name] - add a progress clock (2-12 segments)
/clock tick|untick <id> [n] - fill or empty segments
/clock delete <id> - remove a clock
/pause [reason] | /resume - suspend or resume all tracking
/kick <player> - stop tracking a player
/addplayer <id> [name] - pre-register a player`
