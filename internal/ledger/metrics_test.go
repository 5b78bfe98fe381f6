package ledger

import (
	"testing"
	"time"
)

func TestSessionsClustersPosts(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(5 * time.Minute),
		base.Add(9 * time.Minute),
		base.Add(20 * time.Minute),
	}

	sessions := Sessions(times, 10*time.Minute)
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions from 4 posts, got %d", len(sessions))
	}
	if !sessions[0].Equal(base) {
		t.Fatalf("expected first session at %v, got %v", base, sessions[0])
	}
	if !sessions[1].Equal(base.Add(20 * time.Minute)) {
		t.Fatalf("expected second session at %v, got %v", base.Add(20*time.Minute), sessions[1])
	}
}

func TestSessionsEmpty(t *testing.T) {
	if got := Sessions(nil, 10*time.Minute); got != nil {
		t.Fatalf("expected nil sessions, got %v", got)
	}
}

func TestAvgGap(t *testing.T) {
	base := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(2 * time.Hour), base.Add(6 * time.Hour)}

	gap, ok := AvgGap(times)
	if !ok {
		t.Fatal("expected gap to be defined")
	}
	if gap != 3*time.Hour {
		t.Fatalf("expected 3h average gap, got %v", gap)
	}

	if _, ok := AvgGap(times[:1]); ok {
		t.Fatal("expected undefined gap for single post")
	}
}

func TestWeeklyCount(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	rec := Record{Timestamps: []time.Time{
		now.Add(-8 * 24 * time.Hour),
		now.Add(-6 * 24 * time.Hour),
		now.Add(-time.Hour),
	}}

	if got := WeeklyCount(rec, now); got != 2 {
		t.Fatalf("expected 2 posts this week, got %d", got)
	}
}

func TestPaceTrend(t *testing.T) {
	tests := []struct {
		name     string
		thisWeek int
		lastWeek int
		want     Trend
	}{
		{name: "idle", thisWeek: 0, lastWeek: 0, want: TrendIdle},
		{name: "new", thisWeek: 4, lastWeek: 0, want: TrendNew},
		{name: "up", thisWeek: 12, lastWeek: 8, want: TrendUp},
		{name: "down", thisWeek: 5, lastWeek: 12, want: TrendDown},
		{name: "steady", thisWeek: 10, lastWeek: 10, want: TrendSteady},
		{name: "small difference is steady", thisWeek: 11, lastWeek: 10, want: TrendSteady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PaceTrend(tt.thisWeek, tt.lastWeek); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClassifyHealth(t *testing.T) {
	tests := []struct {
		weekly int
		want   Health
	}{
		{weekly: 25, want: HealthThriving},
		{weekly: 20, want: HealthThriving},
		{weekly: 12, want: HealthHealthy},
		{weekly: 5, want: HealthSlowing},
		{weekly: 4, want: HealthStruggling},
		{weekly: 0, want: HealthStruggling},
	}

	for _, tt := range tests {
		if got := ClassifyHealth(tt.weekly); got != tt.want {
			t.Fatalf("weekly %d: expected %v, got %v", tt.weekly, tt.want, got)
		}
	}
}

func TestCrossedMultiples(t *testing.T) {
	tests := []struct {
		name   string
		before int
		after  int
		step   int
		want   []int
	}{
		{name: "single crossing", before: 499, after: 500, step: 500, want: []int{500}},
		{name: "double crossing in one batch", before: 450, after: 1010, step: 500, want: []int{500, 1000}},
		{name: "no crossing", before: 500, after: 501, step: 500, want: nil},
		{name: "no movement", before: 500, after: 500, step: 500, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CrossedMultiples(tt.before, tt.after, tt.step)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestFilterCelebrated(t *testing.T) {
	due := FilterCelebrated([]int{500, 1000}, []int{500})
	if len(due) != 1 || due[0] != 1000 {
		t.Fatalf("expected [1000], got %v", due)
	}
}
