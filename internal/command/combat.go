package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/pbpkeeper/internal/combat"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

func applyCombat(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{}, badArgs("/combat start [enemies] or /combat advance")
	}

	switch args[0] {
	case "start":
		enemies := parseEnemies(strings.Join(args[1:], " "))
		state, err := combat.Start(c.Combat, enemies, req.Time)
		if err != nil {
			return Result{}, err
		}
		c.Combat = state
		reply := "Combat started. Round 1: players act."
		if len(enemies) > 0 {
			reply += "\nEnemies: " + enemyList(enemies)
		}
		return Result{Reply: reply}, nil

	case "advance":
		state, adv, err := combat.AdvancePhase(c.Combat, req.Time)
		if err != nil {
			return Result{}, err
		}
		c.Combat = state
		return Result{Reply: advanceReply(state, adv)}, nil

	default:
		return Result{}, badArgs("/combat start [enemies] or /combat advance")
	}
}

func applyRound(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	if len(args) != 2 {
		return Result{}, badArgs("/round <number> players|enemies")
	}
	round, ok := parseInt(args[0])
	if !ok {
		return Result{}, badArgs("/round <number> players|enemies")
	}
	phase, ok := combat.ParsePhase(strings.ToLower(args[1]))
	if !ok {
		return Result{}, combat.ErrInvalidPhase
	}

	state, err := combat.SetRoundPhase(c.Combat, round, phase, req.Time)
	if err != nil {
		return Result{}, err
	}
	c.Combat = state
	return Result{Reply: fmt.Sprintf("Round %d: %s act.", round, phase)}, nil
}

func applyEndCombat(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	state, summary, err := combat.End(c.Combat)
	if err != nil {
		return Result{}, err
	}
	c.Combat = state

	reply := "Combat ended."
	if len(summary) > 0 {
		reply += "\n\n" + strings.Join(summary, "\n")
	}
	return Result{Reply: reply}, nil
}

func applyHp(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	usage := "/hp set <id> <name> <current> <max>, /hp damage|heal <id> <amount>, /hp remove <id>, /hp clear"
	if len(args) == 0 {
		return Result{}, badArgs(usage)
	}

	switch args[0] {
	case "set":
		if len(args) < 5 {
			return Result{}, badArgs("/hp set <id> <name> <current> <max>")
		}
		id, okID := parseInt(args[1])
		current, okCur := parseInt(args[len(args)-2])
		max, okMax := parseInt(args[len(args)-1])
		if !okID || !okCur || !okMax {
			return Result{}, badArgs("/hp set <id> <name> <current> <max>")
		}
		label := strings.Join(args[2:len(args)-2], " ")
		state, err := combat.SetHp(c.Combat, id, label, current, max)
		if err != nil {
			return Result{}, err
		}
		c.Combat = state
		return Result{Reply: fmt.Sprintf("%s: %d/%d HP.", label, current, max)}, nil

	case "damage", "heal":
		if len(args) != 3 {
			return Result{}, badArgs("/hp " + args[0] + " <id> <amount>")
		}
		id, okID := parseInt(args[1])
		amount, okAmt := parseInt(args[2])
		if !okID || !okAmt {
			return Result{}, badArgs("/hp " + args[0] + " <id> <amount>")
		}

		var state combat.State
		var entry combat.Entry
		var err error
		if args[0] == "damage" {
			state, entry, err = combat.Damage(c.Combat, id, amount)
		} else {
			state, entry, err = combat.Heal(c.Combat, id, amount)
		}
		if err != nil {
			return Result{}, err
		}
		c.Combat = state

		reply := fmt.Sprintf("%s: %d/%d HP.", entry.Label, entry.Current, entry.Max)
		if entry.Down() {
			reply = fmt.Sprintf("%s is down! (0/%d HP)", entry.Label, entry.Max)
		}
		return Result{Reply: reply}, nil

	case "remove":
		if len(args) != 2 {
			return Result{}, badArgs("/hp remove <id>")
		}
		id, ok := parseInt(args[1])
		if !ok {
			return Result{}, badArgs("/hp remove <id>")
		}
		state, err := combat.RemoveHp(c.Combat, id)
		if err != nil {
			return Result{}, err
		}
		c.Combat = state
		return Result{Reply: fmt.Sprintf("HP entry %d removed.", id)}, nil

	case "clear":
		c.Combat = combat.ClearHp(c.Combat)
		return Result{Reply: "All HP entries cleared."}, nil

	default:
		return Result{}, badArgs(usage)
	}
}

func applyClock(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error) {
	usage := "/clock create <id> <segments> [name], /clock tick|untick <id> [n], /clock delete <id>"
	if len(args) < 2 {
		return Result{}, badArgs(usage)
	}
	id, ok := parseInt(args[1])
	if !ok {
		return Result{}, badArgs(usage)
	}

	switch args[0] {
	case "create":
		if len(args) < 3 {
			return Result{}, badArgs("/clock create <id> <segments> [name]")
		}
		segments, ok := parseInt(args[2])
		if !ok {
			return Result{}, badArgs("/clock create <id> <segments> [name]")
		}
		label := strings.Join(args[3:], " ")
		state, err := combat.CreateClock(c.Combat, id, label, segments)
		if err != nil {
			return Result{}, err
		}
		c.Combat = state
		return Result{Reply: fmt.Sprintf("Clock %d created: %s.", id, clockLine(state.Clocks[id]))}, nil

	case "tick", "untick":
		n := 1
		if len(args) == 3 {
			if n, ok = parseInt(args[2]); !ok {
				return Result{}, badArgs("/clock " + args[0] + " <id> [n]")
			}
		}

		var state combat.State
		var clock combat.Clock
		var err error
		if args[0] == "tick" {
			state, clock, err = combat.Tick(c.Combat, id, n)
		} else {
			state, clock, err = combat.Untick(c.Combat, id, n)
		}
		if err != nil {
			return Result{}, err
		}
		c.Combat = state

		reply := fmt.Sprintf("Clock %d: %s.", id, clockLine(clock))
		if clock.Complete() {
			reply = fmt.Sprintf("Clock %d is complete! %s", id, clockLine(clock))
		}
		return Result{Reply: reply}, nil

	case "delete":
		state, err := combat.DeleteClock(c.Combat, id)
		if err != nil {
			return Result{}, err
		}
		c.Combat = state
		return Result{Reply: fmt.Sprintf("Clock %d deleted.", id)}, nil

	default:
		return Result{}, badArgs(usage)
	}
}

func advanceReply(s combat.State, adv combat.Advance) string {
	if adv.NewRound {
		return fmt.Sprintf("Round %d begins: players act.", s.Round)
	}
	return fmt.Sprintf("Round %d: enemies act. GM, you're up.", s.Round)
}

// parseEnemies reads a comma-separated enemy list; each entry may carry an
// "Nx" count prefix ("3x goblin, orc chief").
func parseEnemies(text string) []combat.Enemy {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var enemies []combat.Enemy
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		count := 1
		if fields := strings.Fields(part); len(fields) > 1 && strings.HasSuffix(fields[0], "x") {
			if n, ok := parseInt(strings.TrimSuffix(fields[0], "x")); ok && n > 0 {
				count = n
				part = strings.Join(fields[1:], " ")
			}
		}
		enemies = append(enemies, combat.Enemy{Name: part, Count: count})
	}
	return enemies
}

func enemyList(enemies []combat.Enemy) string {
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

func clockLine(c combat.Clock) string {
	label := c.Label
	if label == "" {
		label = "unnamed"
	}
	return fmt.Sprintf("%s %d/%d", label, c.Filled, c.Segments)
}

// sortedHpIDs returns HP entry ids in display order.
func sortedHpIDs(hp map[int]combat.Entry) []int {
	ids := make([]int, 0, len(hp))
	for id := range hp {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func sortedClockIDs(clocks map[int]combat.Clock) []int {
	ids := make([]int, 0, len(clocks))
	for id := range clocks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
