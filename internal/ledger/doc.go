// Package ledger owns per-player posting history and its derived metrics.
//
// Records are folded one event at a time with pure apply functions; nothing
// in this package touches the wall clock. Callers pass "now" explicitly so
// every metric is replayable in tests.
//
// All calendar-day logic (streaks) uses UTC as the reference timezone. A
// "day" is the UTC civil date of the post timestamp; a late-night post
// counts toward the UTC day it lands on.
package ledger
