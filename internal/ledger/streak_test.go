package ledger

import (
	"testing"
	"time"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestStreakExtendsAcrossConsecutiveDays(t *testing.T) {
	rec := mustIngest(t, Record{}, post("u1", day(1, 9), 1))
	rec = mustIngest(t, rec, post("u1", day(1, 22), 1)) // same day, no change
	rec = mustIngest(t, rec, post("u1", day(2, 7), 1))
	rec = mustIngest(t, rec, post("u1", day(3, 23), 1))

	if rec.Streak.Length != 3 {
		t.Fatalf("expected streak 3, got %d", rec.Streak.Length)
	}
}

func TestStreakResetsAfterMissedDay(t *testing.T) {
	// Posts on days 1, 2, 3; nothing on day 4; post on day 5.
	rec := Record{}
	for _, d := range []int{1, 2, 3} {
		rec = mustIngest(t, rec, post("u1", day(d, 12), 1))
	}
	rec = mustIngest(t, rec, post("u1", day(5, 12), 1))

	if rec.Streak.Length != 1 {
		t.Fatalf("expected streak reset to 1, got %d", rec.Streak.Length)
	}
}

func TestCurrentStreakAliveOnYesterday(t *testing.T) {
	rec := mustIngest(t, Record{}, post("u1", day(1, 12), 1))
	rec = mustIngest(t, rec, post("u1", day(2, 12), 1))

	// Last post was "yesterday": streak pending, still alive.
	if got := CurrentStreak(rec, day(3, 8)); got != 2 {
		t.Fatalf("expected live streak 2, got %d", got)
	}
	// A full missed day lapses it.
	if got := CurrentStreak(rec, day(4, 8)); got != 0 {
		t.Fatalf("expected lapsed streak 0, got %d", got)
	}
}

func TestDueStreakMilestones(t *testing.T) {
	rec := Record{Streak: StreakState{Length: 14, LastDay: "2026-03-14"}}

	due := DueStreakMilestones(rec)
	if len(due) != 2 || due[0] != 7 || due[1] != 14 {
		t.Fatalf("expected [7 14], got %v", due)
	}

	rec = ClaimStreakMilestone(rec, 7)
	rec = ClaimStreakMilestone(rec, 14)
	if due := DueStreakMilestones(rec); len(due) != 0 {
		t.Fatalf("expected no due milestones after claim, got %v", due)
	}

	// Claiming again must not duplicate the set.
	rec = ClaimStreakMilestone(rec, 14)
	if len(rec.CelebratedStreaks) != 2 {
		t.Fatalf("expected 2 celebrated entries, got %v", rec.CelebratedStreaks)
	}
}
