// Package snapshot defines the whole-state value passed into and out of
// every run. There is no process-wide state: the runner loads one Snapshot,
// threads it through every operation, and saves it once at the end.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/combat"
	"github.com/louisbranch/pbpkeeper/internal/ledger"
)

// SchemaVersion is the current snapshot schema. Older payloads are
// upgraded in Decode; there is no ad hoc shape-checking elsewhere.
const SchemaVersion = 2

// CheckRecord is a scheduled check's idempotency state: when it last fired
// and what value it last saw.
type CheckRecord struct {
	LastFired time.Time `json:"last_fired,omitempty"`
	LastValue string    `json:"last_value,omitempty"`
}

// LastMessage identifies the most recent post in a campaign topic.
type LastMessage struct {
	Time       time.Time `json:"time"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
}

// CampaignState is the mutable per-campaign state.
type CampaignState struct {
	ID          string                   `json:"id"`
	Players     map[string]Player        `json:"players,omitempty"`
	Records     map[string]ledger.Record `json:"records,omitempty"`
	Combat      combat.State             `json:"combat"`
	Checks      map[string]CheckRecord   `json:"checks,omitempty"`
	Paused      bool                     `json:"paused,omitempty"`
	PauseReason string                   `json:"pause_reason,omitempty"`
	LastMessage LastMessage              `json:"last_message,omitempty"`
	// TotalPosts is the campaign-wide cumulative count, GM included.
	TotalPosts int `json:"total_posts"`
	// CelebratedPosts lists campaign post-count milestones already announced.
	CelebratedPosts []int `json:"celebrated_posts,omitempty"`
}

// Snapshot is the full persisted state across campaigns.
type Snapshot struct {
	Version   int                       `json:"version"`
	Offset    int64                     `json:"offset"`
	Campaigns map[string]*CampaignState `json:"campaigns"`
	// GlobalTotalPosts sums posts across every campaign.
	GlobalTotalPosts int `json:"global_total_posts"`
	// GlobalCelebrated lists global post-count milestones already announced.
	GlobalCelebrated []int     `json:"global_celebrated,omitempty"`
	LastLeaderboard  time.Time `json:"last_leaderboard,omitempty"`
}

// New returns an empty snapshot at the current schema version.
func New() Snapshot {
	return Snapshot{
		Version:   SchemaVersion,
		Campaigns: map[string]*CampaignState{},
	}
}

// Campaign returns the state for a campaign id, creating it when absent.
// Missing campaigns are defaulted, never fatal.
func (s *Snapshot) Campaign(id string) *CampaignState {
	if s.Campaigns == nil {
		s.Campaigns = map[string]*CampaignState{}
	}
	c, ok := s.Campaigns[id]
	if !ok {
		c = &CampaignState{
			ID:      id,
			Players: map[string]Player{},
			Records: map[string]ledger.Record{},
			Checks:  map[string]CheckRecord{},
			Combat:  combat.State{Status: combat.StatusInactive},
		}
		s.Campaigns[id] = c
	}
	return c
}

// Record returns the ledger record for a player, zero-valued when absent.
func (c *CampaignState) Record(playerID string) ledger.Record {
	return c.Records[playerID]
}

// SetRecord stores an updated ledger record.
func (c *CampaignState) SetRecord(playerID string, rec ledger.Record) {
	if c.Records == nil {
		c.Records = map[string]ledger.Record{}
	}
	c.Records[playerID] = rec
}

// Check returns a rule's idempotency record.
func (c *CampaignState) Check(rule string) CheckRecord {
	return c.Checks[rule]
}

// SetCheck stores a rule's idempotency record.
func (c *CampaignState) SetCheck(rule string, rec CheckRecord) {
	if c.Checks == nil {
		c.Checks = map[string]CheckRecord{}
	}
	c.Checks[rule] = rec
}

// Encode marshals the snapshot for storage.
func Encode(s Snapshot) ([]byte, error) {
	s.Version = SchemaVersion
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// snapshotJSON defers campaign decoding so legacy shapes can be upgraded.
type snapshotJSON struct {
	Version          int                        `json:"version"`
	Offset           int64                      `json:"offset"`
	Campaigns        map[string]json.RawMessage `json:"campaigns"`
	GlobalTotalPosts int                        `json:"global_total_posts"`
	GlobalCelebrated []int                      `json:"global_celebrated,omitempty"`
	LastLeaderboard  time.Time                  `json:"last_leaderboard,omitempty"`
}

type campaignStateJSON struct {
	ID              string                   `json:"id"`
	Players         map[string]Player        `json:"players,omitempty"`
	Records         map[string]ledger.Record `json:"records,omitempty"`
	Combat          json.RawMessage          `json:"combat"`
	Checks          map[string]CheckRecord   `json:"checks,omitempty"`
	Paused          bool                     `json:"paused,omitempty"`
	PauseReason     string                   `json:"pause_reason,omitempty"`
	LastMessage     LastMessage              `json:"last_message,omitempty"`
	TotalPosts      int                      `json:"total_posts"`
	CelebratedPosts []int                    `json:"celebrated_posts,omitempty"`
}

// Decode unmarshals a stored snapshot, applying the one-time schema
// upgrades (notably the legacy combat players_acted list shape). Empty
// input yields a fresh snapshot.
func Decode(data []byte, loadTime time.Time) (Snapshot, error) {
	if len(data) == 0 {
		return New(), nil
	}

	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	out := Snapshot{
		Version:          SchemaVersion,
		Offset:           raw.Offset,
		Campaigns:        make(map[string]*CampaignState, len(raw.Campaigns)),
		GlobalTotalPosts: raw.GlobalTotalPosts,
		GlobalCelebrated: raw.GlobalCelebrated,
		LastLeaderboard:  raw.LastLeaderboard,
	}

	for id, rawCampaign := range raw.Campaigns {
		var cj campaignStateJSON
		if err := json.Unmarshal(rawCampaign, &cj); err != nil {
			return Snapshot{}, fmt.Errorf("decode campaign %s: %w", id, err)
		}

		c := &CampaignState{
			ID:              id,
			Players:         cj.Players,
			Records:         cj.Records,
			Checks:          cj.Checks,
			Paused:          cj.Paused,
			PauseReason:     cj.PauseReason,
			LastMessage:     cj.LastMessage,
			TotalPosts:      cj.TotalPosts,
			CelebratedPosts: cj.CelebratedPosts,
		}
		if c.Players == nil {
			c.Players = map[string]Player{}
		}
		if c.Records == nil {
			c.Records = map[string]ledger.Record{}
		}
		if c.Checks == nil {
			c.Checks = map[string]CheckRecord{}
		}

		if len(cj.Combat) > 0 {
			cs, err := combat.DecodeState(cj.Combat, loadTime)
			if err != nil {
				return Snapshot{}, fmt.Errorf("decode campaign %s: %w", id, err)
			}
			c.Combat = cs
		} else {
			c.Combat = combat.State{Status: combat.StatusInactive}
		}

		out.Campaigns[id] = c
	}

	return out, nil
}
