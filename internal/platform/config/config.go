package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/pbpkeeper/internal/event"
	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
)

// Feature names campaigns can disable individually.
const (
	FeatureAlerts       = "alerts"
	FeatureWarnings     = "warnings"
	FeatureRoster       = "roster"
	FeaturePace         = "pace"
	FeaturePaceDrop     = "pacedrop"
	FeatureRecruitment  = "recruitment"
	FeatureAnniversary  = "anniversary"
	FeatureTotalSilence = "totalsilence"
	FeatureCombat       = "combat"
	FeaturePOTW         = "potw"
	FeatureLeaderboard  = "leaderboard"
	FeatureMilestones   = "milestones"
	FeatureStreaks      = "streaks"
)

// Settings are the tunable thresholds, with global defaults and optional
// per-campaign overrides.
type Settings struct {
	AlertHours              int   `yaml:"alert_hours"`
	WarnWeeks               []int `yaml:"warn_weeks"`
	RemoveWeeks             int   `yaml:"remove_weeks"`
	RosterIntervalDays      int   `yaml:"roster_interval_days"`
	PaceIntervalDays        int   `yaml:"pace_interval_days"`
	PotwIntervalDays        int   `yaml:"potw_interval_days"`
	LeaderboardIntervalDays int   `yaml:"leaderboard_interval_days"`
	RecruitmentIntervalDays int   `yaml:"recruitment_interval_days"`
	CombatPingHours         int   `yaml:"combat_ping_hours"`
	RequiredPlayers         int   `yaml:"required_players"`
	SessionWindowMinutes    int   `yaml:"session_window_minutes"`
	MinSessionsForAwards    int   `yaml:"min_sessions_for_awards"`
	PaceDropMinBaseline     int   `yaml:"pace_drop_min_baseline"`
	TotalSilenceHours       int   `yaml:"total_silence_hours"`
}

// DefaultSettings mirrors the thresholds the bot has always shipped with.
func DefaultSettings() Settings {
	return Settings{
		AlertHours:              4,
		WarnWeeks:               []int{1, 2, 3},
		RemoveWeeks:             4,
		RosterIntervalDays:      3,
		PaceIntervalDays:        7,
		PotwIntervalDays:        7,
		LeaderboardIntervalDays: 3,
		RecruitmentIntervalDays: 14,
		CombatPingHours:         4,
		RequiredPlayers:         6,
		SessionWindowMinutes:    10,
		MinSessionsForAwards:    5,
		PaceDropMinBaseline:     5,
		TotalSilenceHours:       48,
	}
}

// SessionWindow returns the sessionization window as a duration.
func (s Settings) SessionWindow() time.Duration {
	return time.Duration(s.SessionWindowMinutes) * time.Minute
}

// SettingsPatch is a per-campaign override of selected thresholds.
type SettingsPatch struct {
	AlertHours           *int `yaml:"alert_hours,omitempty"`
	RemoveWeeks          *int `yaml:"remove_weeks,omitempty"`
	RosterIntervalDays   *int `yaml:"roster_interval_days,omitempty"`
	RequiredPlayers      *int `yaml:"required_players,omitempty"`
	MinSessionsForAwards *int `yaml:"min_sessions_for_awards,omitempty"`
	CombatPingHours      *int `yaml:"combat_ping_hours,omitempty"`
}

func (p SettingsPatch) apply(s Settings) Settings {
	if p.AlertHours != nil {
		s.AlertHours = *p.AlertHours
	}
	if p.RemoveWeeks != nil {
		s.RemoveWeeks = *p.RemoveWeeks
	}
	if p.RosterIntervalDays != nil {
		s.RosterIntervalDays = *p.RosterIntervalDays
	}
	if p.RequiredPlayers != nil {
		s.RequiredPlayers = *p.RequiredPlayers
	}
	if p.MinSessionsForAwards != nil {
		s.MinSessionsForAwards = *p.MinSessionsForAwards
	}
	if p.CombatPingHours != nil {
		s.CombatPingHours = *p.CombatPingHours
	}
	return s
}

// Campaign defines one tracked campaign.
type Campaign struct {
	// ID is the canonical campaign id; the first PBP topic id is used when
	// omitted.
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// PBPTopics are the in-character topic ids; campaigns that split
	// across topics list every id and merge into one history.
	PBPTopics []int64 `yaml:"pbp_topics"`
	// ChatTopic is the out-of-character topic notifications go to.
	ChatTopic int64 `yaml:"chat_topic"`
	// Created is the campaign start date ("2006-01-02"), used for
	// anniversary detection.
	Created string `yaml:"created,omitempty"`
	// GmIDs overrides the global GM allow-list for this campaign.
	GmIDs []string `yaml:"gm_ids,omitempty"`
	// Disabled lists feature names switched off for this campaign.
	Disabled []string `yaml:"disabled,omitempty"`
	// Characters maps player ids to character names.
	Characters map[string]string `yaml:"characters,omitempty"`
	// Settings overrides selected global thresholds.
	Settings SettingsPatch `yaml:"settings,omitempty"`
}

// CreatedDate parses the campaign start date.
func (c Campaign) CreatedDate() (time.Time, bool) {
	if c.Created == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", c.Created)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Config is the full campaign-definition file.
type Config struct {
	// GroupID is the chat group every tracked topic belongs to.
	GroupID int64 `yaml:"group_id"`
	// LeaderboardTopic receives cross-campaign reports; zero disables them.
	LeaderboardTopic int64 `yaml:"leaderboard_topic,omitempty"`
	// GmIDs is the global GM allow-list.
	GmIDs     []string   `yaml:"gm_ids"`
	Settings  Settings   `yaml:"settings"`
	Campaigns []Campaign `yaml:"campaigns"`
}

// Load reads and validates a campaign definition file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates campaign definitions.
func Parse(data []byte) (Config, error) {
	cfg := Config{Settings: DefaultSettings()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, apperrors.Wrap(apperrors.CodeConfigInvalid, "parse config", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks structural invariants of the configuration.
func (c Config) Validate() error {
	if c.GroupID == 0 {
		return apperrors.New(apperrors.CodeConfigInvalid, "group_id is required")
	}
	if len(c.Campaigns) == 0 {
		return apperrors.New(apperrors.CodeConfigInvalid, "at least one campaign is required")
	}

	seen := map[string]bool{}
	topics := map[int64]string{}
	for _, campaign := range c.Campaigns {
		id := campaign.CanonicalID()
		if id == "" {
			return apperrors.WithMetadata(apperrors.CodeConfigInvalid,
				fmt.Sprintf("campaign %q has no id and no pbp topics", campaign.Name),
				map[string]string{"campaign": campaign.Name})
		}
		if seen[id] {
			return apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("duplicate campaign id %q", id))
		}
		seen[id] = true

		if len(campaign.PBPTopics) == 0 {
			return apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("campaign %q lists no pbp topics", id))
		}
		for _, topic := range campaign.PBPTopics {
			if owner, taken := topics[topic]; taken {
				return apperrors.New(apperrors.CodeConfigInvalid,
					fmt.Sprintf("topic %d claimed by both %q and %q", topic, owner, id))
			}
			topics[topic] = id
		}
		if campaign.Created != "" {
			if _, ok := campaign.CreatedDate(); !ok {
				return apperrors.New(apperrors.CodeConfigInvalid,
					fmt.Sprintf("campaign %q has invalid created date %q", id, campaign.Created))
			}
		}
	}
	return nil
}

// CanonicalID returns the campaign's canonical id.
func (c Campaign) CanonicalID() string {
	if c.ID != "" {
		return c.ID
	}
	if len(c.PBPTopics) > 0 {
		return fmt.Sprintf("%d", c.PBPTopics[0])
	}
	return ""
}

// Campaign returns the definition for a canonical id.
func (c Config) Campaign(id string) (Campaign, bool) {
	for _, campaign := range c.Campaigns {
		if campaign.CanonicalID() == id {
			return campaign, true
		}
	}
	return Campaign{}, false
}

// GMSet returns the effective GM allow-list for a campaign, applying the
// per-campaign override when present.
func (c Config) GMSet(campaignID string) map[string]bool {
	ids := c.GmIDs
	if campaign, ok := c.Campaign(campaignID); ok && len(campaign.GmIDs) > 0 {
		ids = campaign.GmIDs
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// FeatureEnabled reports whether a feature is active for a campaign.
func (c Config) FeatureEnabled(campaignID, feature string) bool {
	campaign, ok := c.Campaign(campaignID)
	if !ok {
		return false
	}
	for _, disabled := range campaign.Disabled {
		if strings.EqualFold(disabled, feature) {
			return false
		}
	}
	return true
}

// CampaignSettings returns effective thresholds for a campaign.
func (c Config) CampaignSettings(campaignID string) Settings {
	campaign, ok := c.Campaign(campaignID)
	if !ok {
		return c.Settings
	}
	return campaign.Settings.apply(c.Settings)
}

// TopicMap builds the topic resolution table for the normalizer.
func (c Config) TopicMap() event.TopicMap {
	m := event.TopicMap{
		GroupID:    c.GroupID,
		ToCampaign: map[int64]string{},
		PBP:        map[int64]bool{},
		PBPTopics:  map[string]int64{},
		ChatTopics: map[string]int64{},
	}
	for _, campaign := range c.Campaigns {
		id := campaign.CanonicalID()
		for _, topic := range campaign.PBPTopics {
			m.ToCampaign[topic] = id
			m.PBP[topic] = true
		}
		if campaign.ChatTopic != 0 {
			m.ToCampaign[campaign.ChatTopic] = id
		}
		if len(campaign.PBPTopics) > 0 {
			m.PBPTopics[id] = campaign.PBPTopics[0]
		}
		m.ChatTopics[id] = campaign.ChatTopic
	}
	return m
}
