// Package runner orchestrates one batch pass: load state, fetch updates,
// fold events, evaluate scheduled checks, deliver notifications, save.
//
// The runner is the only writer between Load and Save. Everything in the
// middle works on the in-memory snapshot, so a failed run changes nothing
// durable; a failed save aborts the run with an error.
package runner

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/checks"
	"github.com/louisbranch/pbpkeeper/internal/combat"
	"github.com/louisbranch/pbpkeeper/internal/command"
	"github.com/louisbranch/pbpkeeper/internal/event"
	"github.com/louisbranch/pbpkeeper/internal/ledger"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
	"github.com/louisbranch/pbpkeeper/internal/storage"
)

// Messenger delivers one text message to a topic. Delivery failures are
// logged by the runner, never retried.
type Messenger interface {
	Send(ctx context.Context, chatID, topicID int64, text string) error
}

// UpdateSource fetches raw messages past a persisted offset.
type UpdateSource interface {
	FetchUpdates(ctx context.Context, offset int64) ([]event.Message, int64, error)
}

// Runner holds the collaborators for one batch pass.
type Runner struct {
	Store    storage.StateStore
	Source   UpdateSource
	Out      Messenger
	Config   config.Config
	Registry *checks.Registry
	Log      *slog.Logger
	// DryRun folds everything in memory but skips delivery and the save.
	DryRun bool
	// Now overrides the clock in tests.
	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func (r *Runner) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// Run executes one batch pass end to end.
func (r *Runner) Run(ctx context.Context) error {
	now := r.now()

	snap, err := r.Store.Load(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeLoadFailed, "load state", err)
	}

	messages, nextOffset, err := r.Source.FetchUpdates(ctx, snap.Offset)
	if err != nil {
		return err
	}
	r.log().Info("updates fetched", "count", len(messages), "offset", snap.Offset)

	// Events fold in chronological order regardless of arrival order.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Time.Before(messages[j].Time)
	})

	topics := r.Config.TopicMap()
	for _, msg := range messages {
		evt, skip := event.Normalize(msg, topics)
		if skip != event.SkipNone {
			r.log().Debug("message skipped", "reason", string(skip), "topic", msg.TopicID)
			continue
		}
		r.applyEvent(ctx, &snap, topics, evt)
	}

	notes, ruleErrs := r.Registry.Evaluate(&snap, r.Config, now)
	for _, ruleErr := range ruleErrs {
		r.log().Warn("check failed", "err", ruleErr)
	}
	for _, note := range notes {
		r.deliver(ctx, topics, note)
	}

	for _, c := range snap.Campaigns {
		for pid, rec := range c.Records {
			c.Records[pid] = ledger.Prune(rec, now)
		}
	}

	snap.Offset = nextOffset
	if r.DryRun {
		r.log().Info("dry run, state not saved", "offset", nextOffset, "notifications", len(notes))
		return nil
	}
	if err := r.Store.Save(ctx, snap); err != nil {
		return apperrors.Wrap(apperrors.CodeSaveFailed, "save state", err)
	}
	r.log().Info("run complete", "offset", nextOffset, "notifications", len(notes))
	return nil
}

// applyEvent folds one normalized event into the snapshot: commands are
// dispatched, in-character posts feed the ledger and combat tracking.
func (r *Runner) applyEvent(ctx context.Context, snap *snapshot.Snapshot, topics event.TopicMap, evt event.PostEvent) {
	c := snap.Campaign(evt.CampaignID)
	gms := r.Config.GMSet(evt.CampaignID)
	settings := r.Config.CampaignSettings(evt.CampaignID)

	if evt.IsCommand {
		if !command.Recognized(evt.Text) {
			return // another bot's command, not activity
		}
		res, err := command.Apply(c, settings, gms, command.FromEvent(evt))
		reply := res.Reply
		if err != nil {
			r.log().Debug("command rejected", "campaign", evt.CampaignID, "player", evt.PlayerID, "err", err)
			reply = apperrors.UserMessage(err)
		}
		if reply != "" {
			r.send(ctx, chatTopic(topics, evt.CampaignID), reply)
		}
		return
	}

	if !evt.InPBP || c.Paused {
		return
	}

	rec, err := ledger.Ingest(c.Record(evt.PlayerID), evt)
	if err != nil {
		r.log().Warn("event rejected", "campaign", evt.CampaignID, "player", evt.PlayerID, "err", err)
		return
	}
	c.SetRecord(evt.PlayerID, rec)

	c.TouchPlayer(evt.PlayerID, evt.PlayerName, evt.Username, evt.Time)
	if def, ok := r.Config.Campaign(evt.CampaignID); ok {
		if cname := def.Characters[evt.PlayerID]; cname != "" {
			p := c.Players[evt.PlayerID]
			p.CharacterName = cname
			c.Players[evt.PlayerID] = p
		}
	}

	c.LastMessage = snapshot.LastMessage{Time: evt.Time, PlayerID: evt.PlayerID, PlayerName: evt.PlayerName}
	c.TotalPosts++
	snap.GlobalTotalPosts++

	// An in-character post during the players' phase is that player's action.
	if c.Combat.Active() && !gms[evt.PlayerID] {
		eligible := c.EligiblePlayerIDs(gms, evt.Time)
		state, adv, err := combat.RecordAction(c.Combat, evt.PlayerID, eligible, evt.Time)
		if err != nil {
			r.log().Warn("combat action rejected", "campaign", evt.CampaignID, "player", evt.PlayerID, "err", err)
			return
		}
		c.Combat = state
		if adv.GMPing {
			r.send(ctx, chatTopic(topics, evt.CampaignID),
				"All players have acted. Enemies' turn; GM, you're up.")
		}
	}
}

// deliver sends one notification, logging its id so a sent (or dropped)
// message can be traced back to the rule evaluation that produced it.
func (r *Runner) deliver(ctx context.Context, topics event.TopicMap, note checks.Notification) {
	var topic int64
	switch note.Destination {
	case checks.DestLeaderboard:
		topic = r.Config.LeaderboardTopic
	case checks.DestPBP:
		topic = topics.PBPTopics[note.CampaignID]
	default:
		topic = chatTopic(topics, note.CampaignID)
	}
	if r.DryRun {
		r.log().Info("dry run, notification not sent", "note", note.ID, "kind", note.Kind, "topic", topic, "text", note.Text)
		return
	}
	if err := r.Out.Send(ctx, r.Config.GroupID, topic, note.Text); err != nil {
		r.log().Warn("notification delivery failed", "note", note.ID, "kind", note.Kind, "topic", topic, "err", err)
		return
	}
	r.log().Debug("notification delivered", "note", note.ID, "kind", note.Kind, "topic", topic)
}

func (r *Runner) send(ctx context.Context, topicID int64, text string) {
	if r.DryRun {
		r.log().Info("dry run, message not sent", "topic", topicID, "text", text)
		return
	}
	if err := r.Out.Send(ctx, r.Config.GroupID, topicID, text); err != nil {
		r.log().Warn("delivery failed", "topic", topicID, "err", err)
	}
}

// chatTopic is a campaign's notification topic, falling back to its first
// in-character topic when no chat topic is configured.
func chatTopic(topics event.TopicMap, campaignID string) int64 {
	if t := topics.ChatTopics[campaignID]; t != 0 {
		return t
	}
	return topics.PBPTopics[campaignID]
}
