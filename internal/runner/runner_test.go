package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/pbpkeeper/internal/checks"
	"github.com/louisbranch/pbpkeeper/internal/combat"
	"github.com/louisbranch/pbpkeeper/internal/event"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

type fakeStore struct {
	snap    snapshot.Snapshot
	saved   *snapshot.Snapshot
	saveErr error
}

func (s *fakeStore) Load(ctx context.Context) (snapshot.Snapshot, error) {
	return s.snap, nil
}

func (s *fakeStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = &snap
	return nil
}

func (s *fakeStore) Close() error { return nil }

type fakeSource struct {
	messages []event.Message
	next     int64
}

func (s *fakeSource) FetchUpdates(ctx context.Context, offset int64) ([]event.Message, int64, error) {
	return s.messages, s.next, nil
}

type sent struct {
	topicID int64
	text    string
}

type fakeMessenger struct {
	sent    []sent
	sendErr error
}

func (m *fakeMessenger) Send(ctx context.Context, chatID, topicID int64, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sent{topicID: topicID, text: text})
	return nil
}

// captureHandler collects log records so tests can assert on attrs.
type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, rec slog.Record) error {
	h.records = append(h.records, rec.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) attr(msg, key string) (slog.Value, bool) {
	for _, rec := range h.records {
		if rec.Message != msg {
			continue
		}
		var val slog.Value
		var found bool
		rec.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				val, found = a.Value, true
				return false
			}
			return true
		})
		if found {
			return val, true
		}
	}
	return slog.Value{}, false
}

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		GroupID:  -100,
		GmIDs:    []string{"gm"},
		Settings: config.DefaultSettings(),
		Campaigns: []config.Campaign{
			{ID: "camp", Name: "Test Campaign", PBPTopics: []int64{10}, ChatTopic: 11},
		},
	}
}

func post(topic int64, sender, name, text string, at time.Time) event.Message {
	return event.Message{
		ChatID:     -100,
		TopicID:    topic,
		SenderID:   sender,
		SenderName: name,
		Text:       text,
		Time:       at,
	}
}

func newRunner(store *fakeStore, source *fakeSource, out *fakeMessenger) *Runner {
	return &Runner{
		Store:    store,
		Source:   source,
		Out:      out,
		Config:   testConfig(),
		Registry: checks.NewRegistry(),
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return testNow },
	}
}

func TestRunIngestsPosts(t *testing.T) {
	store := &fakeStore{snap: snapshot.New()}
	source := &fakeSource{
		messages: []event.Message{
			// Out of order on purpose; the runner folds chronologically.
			post(10, "p1", "Ada", "I charge the ogre", testNow.Add(-time.Hour)),
			post(10, "p1", "Ada", "I draw my sword", testNow.Add(-2*time.Hour)),
		},
		next: 42,
	}
	out := &fakeMessenger{}

	if err := newRunner(store, source, out).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.saved == nil {
		t.Fatal("expected the snapshot saved")
	}
	if store.saved.Offset != 42 {
		t.Fatalf("expected offset 42, got %d", store.saved.Offset)
	}

	c := store.saved.Campaign("camp")
	if c.TotalPosts != 2 || store.saved.GlobalTotalPosts != 2 {
		t.Fatalf("expected 2 posts counted, got %d campaign %d global",
			c.TotalPosts, store.saved.GlobalTotalPosts)
	}
	rec := c.Record("p1")
	if rec.TotalPosts != 2 {
		t.Fatalf("expected 2 ledger posts, got %d", rec.TotalPosts)
	}
	if len(rec.Timestamps) != 2 || !rec.Timestamps[0].Before(rec.Timestamps[1]) {
		t.Fatalf("expected chronological timestamps, got %v", rec.Timestamps)
	}
	if c.LastMessage.PlayerName != "Ada" || !c.LastMessage.Time.Equal(testNow.Add(-time.Hour)) {
		t.Fatalf("expected last message tracked, got %+v", c.LastMessage)
	}
	if _, ok := c.Players["p1"]; !ok {
		t.Fatal("expected the poster on the roster")
	}
}

func TestRunSaveFailureIsFatal(t *testing.T) {
	store := &fakeStore{snap: snapshot.New(), saveErr: errors.New("disk full")}
	r := newRunner(store, &fakeSource{}, &fakeMessenger{})

	err := r.Run(context.Background())
	if !errors.Is(err, apperrors.New(apperrors.CodeSaveFailed, "")) {
		t.Fatalf("expected a save-failed error, got %v", err)
	}
}

func TestRunDispatchesCommands(t *testing.T) {
	store := &fakeStore{snap: snapshot.New()}
	source := &fakeSource{
		messages: []event.Message{
			post(11, "gm", "GM", "/combat start goblin", testNow.Add(-time.Hour)),
			post(11, "p1", "Ada", "/combat advance", testNow.Add(-30*time.Minute)),
		},
		next: 1,
	}
	out := &fakeMessenger{}

	r := newRunner(store, source, out)
	r.Registry = &checks.Registry{} // keep scheduled checks out of the send count
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := store.saved.Campaign("camp")
	if !c.Combat.Active() {
		t.Fatal("expected combat started by the GM command")
	}
	if c.Combat.Phase != combat.PhasePlayers {
		t.Fatalf("expected the non-GM advance rejected, got phase %q", c.Combat.Phase)
	}
	if c.TotalPosts != 0 {
		t.Fatalf("expected commands not counted as posts, got %d", c.TotalPosts)
	}

	if len(out.sent) != 2 {
		t.Fatalf("expected a reply per command, got %d", len(out.sent))
	}
	if out.sent[0].topicID != 11 {
		t.Fatalf("expected replies on the chat topic, got %d", out.sent[0].topicID)
	}
	if !strings.Contains(out.sent[1].text, "GM") {
		t.Fatalf("expected a GM-only denial, got %q", out.sent[1].text)
	}
}

func TestRunCombatAutoAdvancePingsOnce(t *testing.T) {
	snap := snapshot.New()
	c := snap.Campaign("camp")
	c.TouchPlayer("p1", "Ada", "", testNow.Add(-48*time.Hour))
	c.TouchPlayer("p2", "Ben", "", testNow.Add(-48*time.Hour))
	state, err := combat.Start(c.Combat, nil, testNow.Add(-3*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Combat = state

	store := &fakeStore{snap: snap}
	source := &fakeSource{
		messages: []event.Message{
			post(10, "p1", "Ada", "I attack", testNow.Add(-2*time.Hour)),
			post(10, "p2", "Ben", "I flank", testNow.Add(-time.Hour)),
		},
		next: 1,
	}
	out := &fakeMessenger{}

	r := newRunner(store, source, out)
	r.Registry = &checks.Registry{}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := store.saved.Campaign("camp")
	if saved.Combat.Phase != combat.PhaseEnemies {
		t.Fatalf("expected auto-advance to enemies, got %q", saved.Combat.Phase)
	}

	pings := 0
	for _, s := range out.sent {
		if strings.Contains(s.text, "GM, you're up") {
			pings++
		}
	}
	if pings != 1 {
		t.Fatalf("expected exactly one GM ping, got %d", pings)
	}
}

func TestRunDeliveryFailureIsNotFatal(t *testing.T) {
	snap := snapshot.New()
	c := snap.Campaign("camp")
	c.LastMessage = snapshot.LastMessage{Time: testNow.Add(-6 * time.Hour), PlayerName: "Ada"}

	store := &fakeStore{snap: snap}
	out := &fakeMessenger{sendErr: errors.New("network down")}

	logs := &captureHandler{}
	r := newRunner(store, &fakeSource{}, out)
	r.Log = slog.New(logs)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("expected delivery failure swallowed, got %v", err)
	}
	if store.saved == nil {
		t.Fatal("expected the snapshot saved despite delivery failure")
	}

	// The failure log carries the notification id so the dropped message
	// can be traced back to its rule evaluation.
	val, ok := logs.attr("notification delivery failed", "note")
	if !ok {
		t.Fatal("expected a delivery failure log with the notification id")
	}
	if val.String() == "" {
		t.Fatal("expected a non-empty notification id in the failure log")
	}
}

func TestRunDryRunSkipsDeliveryAndSave(t *testing.T) {
	store := &fakeStore{snap: snapshot.New()}
	source := &fakeSource{
		messages: []event.Message{post(10, "p1", "Ada", "hello", testNow.Add(-time.Hour))},
		next:     9,
	}
	out := &fakeMessenger{}

	r := newRunner(store, source, out)
	r.DryRun = true
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.saved != nil {
		t.Fatal("expected no save in dry run")
	}
	if len(out.sent) != 0 {
		t.Fatalf("expected no delivery in dry run, got %d", len(out.sent))
	}
}

func TestRunSkipsPausedCampaignActivity(t *testing.T) {
	snap := snapshot.New()
	snap.Campaign("camp").Paused = true

	store := &fakeStore{snap: snap}
	source := &fakeSource{
		messages: []event.Message{post(10, "p1", "Ada", "hello", testNow.Add(-time.Hour))},
		next:     1,
	}
	out := &fakeMessenger{}

	if err := newRunner(store, source, out).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.saved.Campaign("camp").TotalPosts; got != 0 {
		t.Fatalf("expected no activity recorded while paused, got %d", got)
	}
}
