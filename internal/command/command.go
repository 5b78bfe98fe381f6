// Package command parses and applies the chat commands players and GMs
// use to steer tracking. Commands mutate campaign state through the same
// pure transition functions the rest of the system uses; the package adds
// parsing, the GM gate, and user-facing replies.
package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/event"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

var (
	// ErrGMOnly indicates a GM-gated command from a non-GM.
	ErrGMOnly = apperrors.New(apperrors.CodeCommandGMOnly, "command is restricted to GMs")
	// ErrUnknown indicates an unrecognized command word.
	ErrUnknown = apperrors.New(apperrors.CodeCommandUnknown, "unknown command")
	// ErrPaused indicates a state-changing command on a paused campaign.
	ErrPaused = apperrors.New(apperrors.CodeCampaignPaused, "campaign is paused")
)

// badArgs builds a command-specific usage error. UserMessage renders the
// message verbatim, so it is written for players, not logs.
func badArgs(usage string) error {
	return apperrors.New(apperrors.CodeCommandBadArgs, "Usage: "+usage)
}

// Request is one command attempt, already attributed to a campaign and
// sender by the normalizer.
type Request struct {
	PlayerID   string
	PlayerName string
	Username   string
	Text       string
	Time       time.Time
}

// Result is what applying a command produced.
type Result struct {
	// Reply is the user-facing confirmation, sent to the chat topic.
	Reply string
}

// FromEvent extracts a command request from a normalized post event.
func FromEvent(evt event.PostEvent) Request {
	return Request{
		PlayerID:   evt.PlayerID,
		PlayerName: evt.PlayerName,
		Username:   evt.Username,
		Text:       evt.Text,
		Time:       evt.Time,
	}
}

// handler applies one parsed command. args excludes the command word.
type handler struct {
	gmOnly bool
	apply  func(c *snapshot.CampaignState, settings config.Settings, req Request, args []string) (Result, error)
}

var handlers = map[string]handler{
	"combat":    {gmOnly: true, apply: applyCombat},
	"round":     {gmOnly: true, apply: applyRound},
	"endcombat": {gmOnly: true, apply: applyEndCombat},
	"hp":        {gmOnly: true, apply: applyHp},
	"clock":     {gmOnly: true, apply: applyClock},
	"pause":     {gmOnly: true, apply: applyPause},
	"resume":    {gmOnly: true, apply: applyResume},
	"kick":      {gmOnly: true, apply: applyKick},
	"addplayer": {gmOnly: true, apply: applyAddPlayer},
	"away":      {apply: applyAway},
	"back":      {apply: applyBack},
	"status":    {apply: applyStatus},
	"help":      {apply: applyHelp},
}

// Recognized reports whether text is a command this package handles.
// Unrecognized slash-text is treated as an ordinary post, not an error, so
// dice-roller and other bot commands pass through untouched.
func Recognized(text string) bool {
	word, _, ok := splitCommand(text)
	if !ok {
		return false
	}
	_, known := handlers[word]
	return known
}

// Apply parses and executes one command against campaign state. State is
// mutated only on success; any returned error leaves it untouched and is
// rendered to the sender via errors.UserMessage.
func Apply(c *snapshot.CampaignState, settings config.Settings, gms map[string]bool, req Request) (Result, error) {
	word, args, ok := splitCommand(req.Text)
	if !ok {
		return Result{}, ErrUnknown
	}
	h, known := handlers[word]
	if !known {
		return Result{}, ErrUnknown
	}
	if h.gmOnly && !gms[req.PlayerID] {
		return Result{}, ErrGMOnly
	}
	// Resume must work on a paused campaign; everything else is gated.
	if c.Paused && word != "resume" && word != "status" {
		return Result{}, ErrPaused
	}
	return h.apply(c, settings, req, args)
}

// splitCommand splits "/word args..." into its parts, stripping the
// @botname suffix Telegram appends in groups.
func splitCommand(text string) (string, []string, bool) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	word := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(word, '@'); at >= 0 {
		word = word[:at]
	}
	return strings.ToLower(word), fields[1:], true
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// parseDays reads "7", "7d" or "2w" as a day count.
func parseDays(s string) (int, bool) {
	mult := 1
	switch {
	case strings.HasSuffix(s, "d"):
		s = strings.TrimSuffix(s, "d")
	case strings.HasSuffix(s, "w"):
		s = strings.TrimSuffix(s, "w")
		mult = 7
	}
	n, ok := parseInt(s)
	if !ok || n <= 0 {
		return 0, false
	}
	return n * mult, true
}
