package telegram

import (
	"encoding/json"
	"testing"
	"time"
)

func TestToMessage(t *testing.T) {
	payload := `{
		"message_id": 42,
		"message_thread_id": 128,
		"from": {"id": 7, "is_bot": false, "first_name": "Ada", "last_name": "L", "username": "ada"},
		"chat": {"id": -100123},
		"date": 1710072000,
		"text": "The party advances."
	}`
	var wm wireMessage
	if err := json.Unmarshal([]byte(payload), &wm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := toMessage(wm)
	if msg.ChatID != -100123 {
		t.Fatalf("expected chat -100123, got %d", msg.ChatID)
	}
	if msg.TopicID != 128 {
		t.Fatalf("expected topic 128, got %d", msg.TopicID)
	}
	if msg.SenderID != "7" {
		t.Fatalf("expected sender id 7, got %q", msg.SenderID)
	}
	if msg.SenderName != "Ada L" {
		t.Fatalf("expected sender name Ada L, got %q", msg.SenderName)
	}
	if msg.IsBot {
		t.Fatal("expected a human sender")
	}
	want := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	if !msg.Time.Equal(want) {
		t.Fatalf("expected %v, got %v", want, msg.Time)
	}
	if msg.HasMedia {
		t.Fatal("expected no media on a text message")
	}
}

func TestToMessageMediaCaption(t *testing.T) {
	payload := `{
		"message_id": 43,
		"from": {"id": 7, "first_name": "Ada"},
		"chat": {"id": -100123},
		"date": 1710072000,
		"caption": "the map we found",
		"photo": [{"file_id": "abc"}]
	}`
	var wm wireMessage
	if err := json.Unmarshal([]byte(payload), &wm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := toMessage(wm)
	if !msg.HasMedia {
		t.Fatal("expected media detected from the photo field")
	}
	if msg.Text != "the map we found" {
		t.Fatalf("expected the caption as text, got %q", msg.Text)
	}
}

func TestToMessageMissingSender(t *testing.T) {
	var wm wireMessage
	if err := json.Unmarshal([]byte(`{"message_id": 44, "chat": {"id": 1}, "date": 1}`), &wm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := toMessage(wm)
	if msg.SenderID != "" {
		t.Fatalf("expected empty sender id, got %q", msg.SenderID)
	}
}
