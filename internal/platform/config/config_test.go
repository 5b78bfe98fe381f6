package config

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
)

const sampleConfig = `
group_id: -100200
leaderboard_topic: 900
gm_ids: ["gm-1"]
settings:
  alert_hours: 6
campaigns:
  - id: embers
    name: Crown of Embers
    pbp_topics: [11, 12]
    chat_topic: 13
    created: "2025-02-10"
    characters:
      u1: Seren
  - name: Hollow March
    pbp_topics: [21]
    chat_topic: 22
    gm_ids: ["gm-2"]
    disabled: [potw, roster]
    settings:
      required_players: 4
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Settings.AlertHours != 6 {
		t.Fatalf("expected alert hours override 6, got %d", cfg.Settings.AlertHours)
	}
	// Unset settings keep their defaults.
	if cfg.Settings.RemoveWeeks != 4 {
		t.Fatalf("expected default remove weeks 4, got %d", cfg.Settings.RemoveWeeks)
	}

	embers, ok := cfg.Campaign("embers")
	if !ok {
		t.Fatal("expected campaign embers")
	}
	if embers.Characters["u1"] != "Seren" {
		t.Fatalf("expected character map entry, got %v", embers.Characters)
	}

	// Campaigns without an explicit id use the first topic.
	if _, ok := cfg.Campaign("21"); !ok {
		t.Fatal("expected campaign keyed by first pbp topic")
	}
}

func TestTopicMapMergesSplitTopics(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	m := cfg.TopicMap()
	if id, _ := m.Resolve(11); id != "embers" {
		t.Fatalf("expected topic 11 to resolve to embers, got %q", id)
	}
	if id, _ := m.Resolve(12); id != "embers" {
		t.Fatalf("expected split topic 12 to resolve to embers, got %q", id)
	}
	if m.ChatTopics["embers"] != 13 {
		t.Fatalf("expected chat topic 13, got %d", m.ChatTopics["embers"])
	}
	if id, _ := m.Resolve(13); id != "embers" {
		t.Fatalf("expected the chat topic to resolve to embers, got %q", id)
	}
	if m.PBP[13] {
		t.Fatal("expected the chat topic not marked in-character")
	}
	if !m.PBP[11] || !m.PBP[12] {
		t.Fatal("expected pbp topics marked in-character")
	}
}

func TestGMSetOverride(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !cfg.GMSet("embers")["gm-1"] {
		t.Fatal("expected global GM for embers")
	}
	gms := cfg.GMSet("21")
	if !gms["gm-2"] || gms["gm-1"] {
		t.Fatalf("expected per-campaign GM override, got %v", gms)
	}
}

func TestFeatureDisable(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.FeatureEnabled("21", FeaturePOTW) {
		t.Fatal("expected potw disabled")
	}
	if !cfg.FeatureEnabled("21", FeatureAlerts) {
		t.Fatal("expected alerts enabled")
	}
	if !cfg.FeatureEnabled("embers", FeaturePOTW) {
		t.Fatal("expected potw enabled for embers")
	}
}

func TestCampaignSettingsPatch(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	s := cfg.CampaignSettings("21")
	if s.RequiredPlayers != 4 {
		t.Fatalf("expected required players 4, got %d", s.RequiredPlayers)
	}
	if s.AlertHours != 6 {
		t.Fatalf("expected inherited alert hours 6, got %d", s.AlertHours)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing group", yaml: "campaigns:\n  - pbp_topics: [1]\n    chat_topic: 2\n"},
		{name: "no campaigns", yaml: "group_id: -1\n"},
		{
			name: "duplicate topic",
			yaml: "group_id: -1\ncampaigns:\n  - pbp_topics: [1]\n    chat_topic: 2\n  - pbp_topics: [1]\n    chat_topic: 3\n",
		},
		{
			name: "bad created date",
			yaml: "group_id: -1\ncampaigns:\n  - pbp_topics: [1]\n    chat_topic: 2\n    created: nonsense\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, apperrors.New(apperrors.CodeConfigInvalid, "")) {
				t.Fatalf("expected config invalid error, got %v", err)
			}
		})
	}
}
