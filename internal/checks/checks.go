// Package checks holds the scheduled rule evaluators that turn ledger and
// combat state into notifications.
//
// Each rule owns its idempotency through a per-rule record persisted in the
// campaign state; the registry applies the pause and feature-disable gates
// uniformly before any rule runs.
package checks

import (
	"fmt"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/id"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

// Destination is the topic kind a notification is delivered to.
type Destination string

const (
	// DestPBP is the in-character topic.
	DestPBP Destination = "pbp"
	// DestChat is the out-of-character chat topic.
	DestChat Destination = "chat"
	// DestLeaderboard is the shared cross-campaign topic.
	DestLeaderboard Destination = "leaderboard"
)

// Kind tags what a notification is, decoupled from how it is delivered.
type Kind string

const (
	KindAlert       Kind = "alert"
	KindWarning     Kind = "warning"
	KindCelebration Kind = "celebration"
	KindReport      Kind = "report"
)

// Notification is one outbound message produced by a rule.
type Notification struct {
	ID          string
	CampaignID  string
	Destination Destination
	Kind        Kind
	Text        string
}

// Context is everything a rule may read or update for one campaign.
type Context struct {
	Campaign *snapshot.CampaignState
	Def      config.Campaign
	Settings config.Settings
	GMs      map[string]bool
	Now      time.Time
}

// Rule is one independent scheduled evaluator. Evaluate returns nil when
// nothing should fire this run.
type Rule interface {
	// Name keys the rule's idempotency record in campaign state.
	Name() string
	// Feature is the config switch that disables the rule per campaign.
	Feature() string
	Evaluate(ctx *Context) (*Notification, error)
}

// GlobalRule evaluates across all campaigns at once.
type GlobalRule interface {
	Name() string
	Evaluate(snap *snapshot.Snapshot, cfg config.Config, now time.Time) (*Notification, error)
}

// Registry holds the active rule set in evaluation order.
type Registry struct {
	rules  []Rule
	global []GlobalRule
}

// NewRegistry returns the standard rule set.
func NewRegistry() *Registry {
	return &Registry{
		rules: []Rule{
			SilenceRule{},
			InactivityRule{},
			TotalSilenceRule{},
			CombatPingRule{},
			RosterRule{},
			PaceReportRule{},
			PaceDropRule{},
			RecruitmentRule{},
			AnniversaryRule{},
			PlayerOfTheWeekRule{},
			MilestoneRule{},
			StreakRule{},
		},
		global: []GlobalRule{
			LeaderboardRule{},
			GlobalMilestoneRule{},
		},
	}
}

// RuleError reports a single rule failure without aborting the pass.
type RuleError struct {
	Rule       string
	CampaignID string
	Err        error
}

func (e RuleError) Error() string {
	return fmt.Sprintf("rule %s campaign %s: %v", e.Rule, e.CampaignID, e.Err)
}

func (e RuleError) Unwrap() error { return e.Err }

// Evaluate runs every rule over every campaign, then the global rules.
// Rule failures are collected, not fatal: one broken rule must not block
// the others.
func (r *Registry) Evaluate(snap *snapshot.Snapshot, cfg config.Config, now time.Time) ([]Notification, []error) {
	var out []Notification
	var errs []error

	for _, def := range cfg.Campaigns {
		campaignID := def.CanonicalID()
		campaign := snap.Campaign(campaignID)
		if campaign.Paused {
			continue
		}

		ctx := &Context{
			Campaign: campaign,
			Def:      def,
			Settings: cfg.CampaignSettings(campaignID),
			GMs:      cfg.GMSet(campaignID),
			Now:      now,
		}

		for _, rule := range r.rules {
			if !cfg.FeatureEnabled(campaignID, rule.Feature()) {
				continue
			}
			note, err := rule.Evaluate(ctx)
			if err != nil {
				errs = append(errs, RuleError{Rule: rule.Name(), CampaignID: campaignID, Err: err})
				continue
			}
			if note != nil {
				note.CampaignID = campaignID
				note.ID = newNotificationID()
				out = append(out, *note)
			}
		}
	}

	for _, rule := range r.global {
		note, err := rule.Evaluate(snap, cfg, now)
		if err != nil {
			errs = append(errs, RuleError{Rule: rule.Name(), Err: err})
			continue
		}
		if note != nil {
			note.ID = newNotificationID()
			out = append(out, *note)
		}
	}

	return out, errs
}

func newNotificationID() string {
	nid, err := id.NewID()
	if err != nil {
		return "" // delivery does not depend on the id
	}
	return nid
}

// intervalElapsed reports whether enough days passed since last. A zero
// last means the interval has trivially elapsed.
func intervalElapsed(last time.Time, days int, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= time.Duration(days)*24*time.Hour
}
