package ledger

import "time"

// DefaultSessionWindow collapses rapid back-to-back posts into one sitting.
const DefaultSessionWindow = 10 * time.Minute

// Sessions collapses timestamps within the window of the previous session
// start into single sessions. The returned slice holds the first post time
// of each session, ascending. Timestamps must already be sorted, which
// Ingest guarantees.
func Sessions(times []time.Time, window time.Duration) []time.Time {
	if len(times) == 0 {
		return nil
	}
	if window <= 0 {
		window = DefaultSessionWindow
	}
	starts := []time.Time{times[0]}
	for _, t := range times[1:] {
		if t.Sub(starts[len(starts)-1]) > window {
			starts = append(starts, t)
		}
	}
	return starts
}

// SessionCount returns the number of posting sessions in the record.
func SessionCount(rec Record, window time.Duration) int {
	return len(Sessions(rec.Timestamps, window))
}

// InWindow returns timestamps t with after <= t < before. A zero "before"
// means no upper bound.
func InWindow(times []time.Time, after, before time.Time) []time.Time {
	var out []time.Time
	for _, t := range times {
		if t.Before(after) {
			continue
		}
		if !before.IsZero() && !t.Before(before) {
			continue
		}
		out = append(out, t)
	}
	return out
}
