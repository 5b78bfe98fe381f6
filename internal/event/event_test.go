package event

import (
	"testing"
	"time"
)

func testTopics() TopicMap {
	return TopicMap{
		GroupID: -100200,
		ToCampaign: map[int64]string{
			11: "camp-1",
			12: "camp-1",
			21: "camp-2",
		},
		PBP: map[int64]bool{11: true, 12: true},
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 2, 10, 18, 30, 0, 0, time.UTC)
	msg := Message{
		ChatID:     -100200,
		TopicID:    12,
		SenderID:   "u1",
		SenderName: "Ana",
		Text:       "  I draw my sword and charge the ogre  ",
		Time:       now,
	}

	evt, skip := Normalize(msg, testTopics())
	if skip != SkipNone {
		t.Fatalf("expected no skip, got %q", skip)
	}
	if evt.CampaignID != "camp-1" {
		t.Fatalf("expected canonical campaign camp-1, got %q", evt.CampaignID)
	}
	if evt.WordCount != 8 {
		t.Fatalf("expected 8 words, got %d", evt.WordCount)
	}
	if evt.IsCommand {
		t.Fatal("expected plain post, got command")
	}
	if !evt.InPBP {
		t.Fatal("expected an in-character topic post")
	}
	if !evt.Time.Equal(now) {
		t.Fatalf("expected time %v, got %v", now, evt.Time)
	}
}

func TestNormalizeCommand(t *testing.T) {
	msg := Message{
		ChatID:   -100200,
		TopicID:  21,
		SenderID: "u2",
		Text:     "/hp damage 1 5",
		Time:     time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}

	evt, skip := Normalize(msg, testTopics())
	if skip != SkipNone {
		t.Fatalf("expected no skip, got %q", skip)
	}
	if !evt.IsCommand {
		t.Fatal("expected command flag")
	}
	if evt.InPBP {
		t.Fatal("expected a chat-topic command, not an in-character post")
	}
}

func TestNormalizeSkips(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		msg  Message
		want SkipReason
	}{
		{
			name: "bot sender",
			msg:  Message{ChatID: -100200, TopicID: 11, SenderID: "u1", IsBot: true, Time: now},
			want: SkipBot,
		},
		{
			name: "missing sender",
			msg:  Message{ChatID: -100200, TopicID: 11, SenderID: "  ", Time: now},
			want: SkipNoSender,
		},
		{
			name: "wrong chat",
			msg:  Message{ChatID: -999, TopicID: 11, SenderID: "u1", Time: now},
			want: SkipWrongChat,
		},
		{
			name: "untracked topic",
			msg:  Message{ChatID: -100200, TopicID: 77, SenderID: "u1", Time: now},
			want: SkipUnknownTopic,
		},
		{
			name: "zero time",
			msg:  Message{ChatID: -100200, TopicID: 11, SenderID: "u1"},
			want: SkipZeroTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, skip := Normalize(tt.msg, testTopics())
			if skip != tt.want {
				t.Fatalf("expected skip %q, got %q", tt.want, skip)
			}
		})
	}
}
