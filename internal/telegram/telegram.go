// Package telegram is the gateway between the tracker and the Telegram Bot
// API. It converts raw updates into event.Message values and delivers
// notification text to group topics.
//
// The client library predates forum topics, so both directions go through
// its raw request plumbing with our own wire structs carrying
// message_thread_id.
package telegram

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/louisbranch/pbpkeeper/internal/event"
	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
)

// Gateway wraps an authenticated bot client.
type Gateway struct {
	bot *tgbotapi.BotAPI
}

// New authenticates against the Bot API.
func New(token string) (*Gateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "telegram auth", err)
	}
	return &Gateway{bot: bot}, nil
}

// update mirrors the slice of the getUpdates payload we consume.
type update struct {
	UpdateID int64        `json:"update_id"`
	Message  *wireMessage `json:"message"`
}

type wireMessage struct {
	MessageID int64           `json:"message_id"`
	ThreadID  int64           `json:"message_thread_id"`
	From      *wireUser       `json:"from"`
	Chat      *wireChat       `json:"chat"`
	Date      int64           `json:"date"`
	Text      string          `json:"text"`
	Caption   string          `json:"caption"`
	Photo     json.RawMessage `json:"photo"`
	Video     json.RawMessage `json:"video"`
	Document  json.RawMessage `json:"document"`
	Voice     json.RawMessage `json:"voice"`
	Sticker   json.RawMessage `json:"sticker"`
	Animation json.RawMessage `json:"animation"`
}

type wireUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

type wireChat struct {
	ID int64 `json:"id"`
}

// FetchUpdates pulls pending updates past offset. It returns the decoded
// messages and the next offset to persist; non-message updates still move
// the offset forward.
func (g *Gateway) FetchUpdates(ctx context.Context, offset int64) ([]event.Message, int64, error) {
	params := tgbotapi.Params{}
	params.AddNonZero64("offset", offset)
	params["allowed_updates"] = `["message"]`

	resp, err := g.bot.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, offset, apperrors.Wrap(apperrors.CodeUnknown, "fetch updates", err)
	}

	var updates []update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, offset, apperrors.Wrap(apperrors.CodeUnknown, "decode updates", err)
	}

	next := offset
	var messages []event.Message
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
		if u.Message == nil {
			continue
		}
		messages = append(messages, toMessage(*u.Message))
	}
	return messages, next, nil
}

// Send posts text to a topic inside the group. A zero topic id targets the
// group's general topic.
func (g *Gateway) Send(ctx context.Context, chatID, topicID int64, text string) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero64("message_thread_id", topicID)
	params["text"] = text

	if _, err := g.bot.MakeRequest("sendMessage", params); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "send message", err)
	}
	return nil
}

// toMessage converts one wire message to the normalizer's input shape.
func toMessage(m wireMessage) event.Message {
	msg := event.Message{
		ChatID:   chatID(m),
		TopicID:  m.ThreadID,
		Text:     messageText(m),
		HasMedia: hasMedia(m),
	}
	if m.Date > 0 {
		msg.Time = time.Unix(m.Date, 0).UTC()
	}
	if m.From != nil {
		msg.SenderID = strconv.FormatInt(m.From.ID, 10)
		msg.SenderName = senderName(*m.From)
		msg.Username = m.From.Username
		msg.IsBot = m.From.IsBot
	}
	return msg
}

func chatID(m wireMessage) int64 {
	if m.Chat == nil {
		return 0
	}
	return m.Chat.ID
}

// messageText prefers the body, falling back to a media caption so caption
// words still count toward activity.
func messageText(m wireMessage) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

func hasMedia(m wireMessage) bool {
	for _, raw := range []json.RawMessage{m.Photo, m.Video, m.Document, m.Voice, m.Sticker, m.Animation} {
		if len(raw) > 0 && string(raw) != "null" {
			return true
		}
	}
	return false
}

func senderName(u wireUser) string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
