package ledger

import (
	"time"

	"github.com/louisbranch/pbpkeeper/internal/event"
	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
)

// RetentionWeeks is how long raw post timestamps are kept. Aggregates that
// need older posts (totals, streaks) are maintained incrementally, so
// entries beyond the horizon carry no information the record still needs.
const RetentionWeeks = 8

var (
	// ErrTimestampRegression indicates an event older than the record's last post.
	ErrTimestampRegression = apperrors.New(apperrors.CodeLedgerTimestampRegression, "post event timestamp regressed")
	// ErrEmptyPlayerID indicates an event with no player id.
	ErrEmptyPlayerID = apperrors.New(apperrors.CodeLedgerEmptyPlayerID, "player id is required")
)

// StreakState is the incremental consecutive-day posting state.
type StreakState struct {
	// Length is the number of consecutive UTC days with at least one post,
	// ending at LastDay.
	Length int `json:"length"`
	// LastDay is the most recent UTC date ("2006-01-02") with a post.
	LastDay string `json:"last_day"`
}

// Record is one player's posting history within a campaign.
type Record struct {
	PlayerID   string      `json:"player_id"`
	Timestamps []time.Time `json:"timestamps"`
	TotalPosts int         `json:"total_posts"`
	TotalWords int         `json:"total_words"`
	MediaPosts int         `json:"media_posts"`
	Streak     StreakState `json:"streak"`
	// CelebratedStreaks lists streak milestone thresholds already announced.
	// The set only grows; a threshold is never announced twice.
	CelebratedStreaks []int `json:"celebrated_streaks,omitempty"`
}

// Ingest folds one post event into the record. Events must arrive in
// chronological order per player; a regression is rejected and the record
// is returned unchanged.
func Ingest(rec Record, evt event.PostEvent) (Record, error) {
	if evt.PlayerID == "" {
		return rec, ErrEmptyPlayerID
	}
	if n := len(rec.Timestamps); n > 0 && evt.Time.Before(rec.Timestamps[n-1]) {
		return rec, ErrTimestampRegression
	}

	updated := rec
	updated.PlayerID = evt.PlayerID
	updated.Timestamps = append(append([]time.Time(nil), rec.Timestamps...), evt.Time)
	updated.TotalPosts++
	updated.TotalWords += evt.WordCount
	if evt.HasMedia {
		updated.MediaPosts++
	}
	updated.Streak = advanceStreak(rec.Streak, evt.Time)
	return updated, nil
}

// Prune drops timestamps older than the retention horizon. Totals and
// streak state are unaffected.
func Prune(rec Record, now time.Time) Record {
	cutoff := now.Add(-RetentionWeeks * 7 * 24 * time.Hour)
	kept := rec.Timestamps
	for len(kept) > 0 && kept[0].Before(cutoff) {
		kept = kept[1:]
	}
	updated := rec
	updated.Timestamps = append([]time.Time(nil), kept...)
	return updated
}

// LastPost returns the most recent post time, or false when none is kept.
func (r Record) LastPost() (time.Time, bool) {
	if len(r.Timestamps) == 0 {
		return time.Time{}, false
	}
	return r.Timestamps[len(r.Timestamps)-1], true
}
