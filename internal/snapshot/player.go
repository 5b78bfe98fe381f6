package snapshot

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
)

var (
	// ErrPlayerNotFound indicates an unknown player id.
	ErrPlayerNotFound = apperrors.New(apperrors.CodePlayerNotFound, "player not found")
	// ErrPlayerExists indicates a pre-registration for an already known player.
	ErrPlayerExists = apperrors.New(apperrors.CodePlayerAlreadyExists, "player already registered")
	// ErrEmptyPlayerID indicates a missing player id.
	ErrEmptyPlayerID = apperrors.New(apperrors.CodePlayerEmptyID, "player id is required")
)

// Player is one campaign-scoped roster entry.
type Player struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Username      string    `json:"username,omitempty"`
	CharacterName string    `json:"character_name,omitempty"`
	FirstSeen     time.Time `json:"first_seen,omitempty"`
	LastPost      time.Time `json:"last_post,omitempty"`
	// Removed marks a soft removal (silence or kick); the record is kept so
	// a returning player reactivates with history intact.
	Removed   bool      `json:"removed,omitempty"`
	RemovedAt time.Time `json:"removed_at,omitempty"`
	Away      bool      `json:"away,omitempty"`
	// AwayUntil bounds a timed absence; zero with Away set means indefinite.
	AwayUntil time.Time `json:"away_until,omitempty"`
	// LastWarnedWeek is the highest inactivity week mark already warned.
	LastWarnedWeek int `json:"last_warned_week,omitempty"`
	// PreRegistered marks a placeholder created before the first post.
	PreRegistered bool `json:"pre_registered,omitempty"`
}

// IsAway reports whether the player is away as of "now". Timed absences
// expire on their own.
func (p Player) IsAway(now time.Time) bool {
	if !p.Away {
		return false
	}
	if p.AwayUntil.IsZero() {
		return true
	}
	return now.Before(p.AwayUntil)
}

// DisplayName returns the best human-facing name for the player.
func (p Player) DisplayName() string {
	if p.CharacterName != "" {
		return p.CharacterName
	}
	if p.Name != "" {
		return p.Name
	}
	if p.Username != "" {
		return "@" + p.Username
	}
	return p.ID
}

// TouchPlayer records a post by a player, creating the roster entry on
// first post (upgrading a pre-registration placeholder when one exists),
// reactivating a removed player, and clearing away state.
func (c *CampaignState) TouchPlayer(id, name, username string, at time.Time) Player {
	if c.Players == nil {
		c.Players = map[string]Player{}
	}
	p, ok := c.Players[id]
	if !ok {
		p = Player{ID: id, FirstSeen: at}
	}
	if name != "" {
		p.Name = name
	}
	if username != "" {
		p.Username = username
	}
	p.LastPost = at
	p.Removed = false
	p.RemovedAt = time.Time{}
	p.Away = false
	p.AwayUntil = time.Time{}
	p.LastWarnedWeek = 0
	p.PreRegistered = false
	c.Players[id] = p
	return p
}

// PreRegister creates a placeholder roster entry before the first post.
func (c *CampaignState) PreRegister(id, name string, now time.Time) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyPlayerID
	}
	if c.Players == nil {
		c.Players = map[string]Player{}
	}
	if existing, ok := c.Players[id]; ok && !existing.Removed {
		return ErrPlayerExists
	}
	c.Players[id] = Player{ID: id, Name: name, FirstSeen: now, PreRegistered: true}
	return nil
}

// SetAway marks a player away. A zero until means indefinite. An away
// player leaves the combat acted set too, so mid-phase state only tracks
// players combat is still waiting on.
func (c *CampaignState) SetAway(id string, until time.Time) error {
	p, ok := c.Players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Away = true
	p.AwayUntil = until
	c.Players[id] = p
	delete(c.Combat.PlayersActed, id)
	return nil
}

// SetBack clears a player's away state.
func (c *CampaignState) SetBack(id string) error {
	p, ok := c.Players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Away = false
	p.AwayUntil = time.Time{}
	c.Players[id] = p
	return nil
}

// RemovePlayer soft-removes a player (explicit kick or silence timeout).
func (c *CampaignState) RemovePlayer(id string, now time.Time) error {
	p, ok := c.Players[id]
	if !ok || p.Removed {
		return ErrPlayerNotFound
	}
	p.Removed = true
	p.RemovedAt = now
	c.Players[id] = p
	return nil
}

// ActivePlayers returns non-removed roster players, excluding GMs.
func (c *CampaignState) ActivePlayers(gmIDs map[string]bool) []Player {
	var out []Player
	for _, p := range c.Players {
		if p.Removed || gmIDs[p.ID] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// EligiblePlayerIDs returns ids of players who can act in combat: on the
// roster, not removed, not away, not a GM.
func (c *CampaignState) EligiblePlayerIDs(gmIDs map[string]bool, now time.Time) []string {
	var out []string
	for _, p := range c.Players {
		if p.Removed || gmIDs[p.ID] || p.IsAway(now) {
			continue
		}
		out = append(out, p.ID)
	}
	return out
}
