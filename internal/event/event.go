// Package event defines the canonical posting event and its normalizer.
//
// The normalizer is the only place raw chat messages are interpreted. It is
// a pure function: malformed or irrelevant messages are rejected with a
// reason, never an error, so one bad message cannot abort a batch.
package event

import (
	"strings"
	"time"
)

// PostEvent is one canonical posting occurrence inside a campaign topic.
type PostEvent struct {
	CampaignID string
	PlayerID   string
	PlayerName string
	Username   string
	Time       time.Time
	WordCount  int
	HasMedia   bool
	IsCommand  bool
	// InPBP is set for posts in an in-character topic; only those count
	// toward the activity ledger and combat actions.
	InPBP bool
	Text  string
}

// Message is a raw inbound chat message, already decoded from the platform
// wire format by the gateway.
type Message struct {
	ChatID     int64
	TopicID    int64
	SenderID   string
	SenderName string
	Username   string
	IsBot      bool
	Text       string
	HasMedia   bool
	Time       time.Time
}

// SkipReason explains why a message produced no event.
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipBot          SkipReason = "bot sender"
	SkipNoSender     SkipReason = "missing sender id"
	SkipWrongChat    SkipReason = "outside tracked group"
	SkipUnknownTopic SkipReason = "untracked topic"
	SkipZeroTime     SkipReason = "missing timestamp"
)

// TopicMap resolves raw topic ids to canonical campaign ids. Campaigns that
// outgrew one topic and were split keep a single canonical id so their
// history merges.
type TopicMap struct {
	GroupID    int64
	ToCampaign map[int64]string
	// PBP marks which raw topics are in-character; posts elsewhere in a
	// campaign (its chat topic) do not count as play activity.
	PBP        map[int64]bool
	PBPTopics  map[string]int64
	ChatTopics map[string]int64
}

// Resolve returns the canonical campaign id for a raw topic id.
func (m TopicMap) Resolve(topicID int64) (string, bool) {
	id, ok := m.ToCampaign[topicID]
	return id, ok
}

// Normalize converts a raw message into a PostEvent. The second return is a
// skip reason; events are only produced when it is SkipNone.
func Normalize(msg Message, topics TopicMap) (PostEvent, SkipReason) {
	if msg.IsBot {
		return PostEvent{}, SkipBot
	}
	if strings.TrimSpace(msg.SenderID) == "" {
		return PostEvent{}, SkipNoSender
	}
	if topics.GroupID != 0 && msg.ChatID != topics.GroupID {
		return PostEvent{}, SkipWrongChat
	}
	campaignID, ok := topics.Resolve(msg.TopicID)
	if !ok {
		return PostEvent{}, SkipUnknownTopic
	}
	if msg.Time.IsZero() {
		return PostEvent{}, SkipZeroTime
	}

	text := strings.TrimSpace(msg.Text)
	return PostEvent{
		CampaignID: campaignID,
		PlayerID:   msg.SenderID,
		PlayerName: msg.SenderName,
		Username:   msg.Username,
		Time:       msg.Time.UTC(),
		WordCount:  countWords(text),
		HasMedia:   msg.HasMedia,
		IsCommand:  strings.HasPrefix(text, "/"),
		InPBP:      topics.PBP[msg.TopicID],
		Text:       text,
	}, SkipNone
}

func countWords(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}
