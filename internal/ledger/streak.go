package ledger

import "time"

// StreakMilestones are the streak lengths that earn a one-time celebration.
var StreakMilestones = []int{7, 14, 30, 60, 90}

const dayLayout = "2006-01-02"

func dayOf(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// dayDelta returns the whole-day difference between two UTC civil dates.
// Unparseable days count as a broken streak.
func dayDelta(from, to string) (int, bool) {
	a, err := time.Parse(dayLayout, from)
	if err != nil {
		return 0, false
	}
	b, err := time.Parse(dayLayout, to)
	if err != nil {
		return 0, false
	}
	return int(b.Sub(a).Hours() / 24), true
}

// advanceStreak folds one post time into the streak state. Same-day posts
// leave the streak untouched; a next-day post extends it; any larger gap
// restarts the count at 1.
func advanceStreak(s StreakState, postTime time.Time) StreakState {
	day := dayOf(postTime)
	if s.Length == 0 || s.LastDay == "" {
		return StreakState{Length: 1, LastDay: day}
	}
	delta, ok := dayDelta(s.LastDay, day)
	if !ok {
		return StreakState{Length: 1, LastDay: day}
	}
	switch {
	case delta == 0:
		return s
	case delta == 1:
		return StreakState{Length: s.Length + 1, LastDay: day}
	default:
		return StreakState{Length: 1, LastDay: day}
	}
}

// CurrentStreak reports the live streak as of "now". A streak whose last
// post was yesterday is still alive pending today's post; anything older
// has lapsed and reads as zero.
func CurrentStreak(rec Record, now time.Time) int {
	if rec.Streak.Length == 0 || rec.Streak.LastDay == "" {
		return 0
	}
	delta, ok := dayDelta(rec.Streak.LastDay, dayOf(now))
	if !ok || delta > 1 || delta < 0 {
		return 0
	}
	return rec.Streak.Length
}

// DueStreakMilestones returns milestone thresholds the record has reached
// but not yet celebrated, in ascending order.
func DueStreakMilestones(rec Record) []int {
	celebrated := make(map[int]bool, len(rec.CelebratedStreaks))
	for _, m := range rec.CelebratedStreaks {
		celebrated[m] = true
	}
	var due []int
	for _, m := range StreakMilestones {
		if rec.Streak.Length >= m && !celebrated[m] {
			due = append(due, m)
		}
	}
	return due
}

// ClaimStreakMilestone marks a threshold as celebrated. Claiming an already
// celebrated threshold is a no-op; the set never shrinks.
func ClaimStreakMilestone(rec Record, threshold int) Record {
	for _, m := range rec.CelebratedStreaks {
		if m == threshold {
			return rec
		}
	}
	updated := rec
	updated.CelebratedStreaks = append(append([]int(nil), rec.CelebratedStreaks...), threshold)
	return updated
}
