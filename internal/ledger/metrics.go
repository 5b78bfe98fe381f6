package ledger

import "time"

// Trend is a directional indicator for week-over-week pace.
type Trend int

const (
	// TrendIdle means no posts in either week.
	TrendIdle Trend = iota
	// TrendNew means posts this week after a silent previous week.
	TrendNew
	// TrendUp means a clear week-over-week increase.
	TrendUp
	// TrendDown means a clear week-over-week decrease.
	TrendDown
	// TrendSteady means the change stayed inside the neutral band.
	TrendSteady
)

// Health is a four-tier classification of weekly post volume.
type Health int

const (
	// HealthStruggling is fewer than 5 posts in the trailing week.
	HealthStruggling Health = iota
	// HealthSlowing is at least 5 posts in the trailing week.
	HealthSlowing
	// HealthHealthy is at least 10 posts in the trailing week.
	HealthHealthy
	// HealthThriving is at least 20 posts in the trailing week.
	HealthThriving
)

// WeeklyCount returns the number of posts in the trailing 7 days.
func WeeklyCount(rec Record, now time.Time) int {
	return len(InWindow(rec.Timestamps, now.Add(-7*24*time.Hour), time.Time{}))
}

// AvgGap returns the mean delta between consecutive timestamps. The second
// return is false when fewer than two timestamps exist.
func AvgGap(times []time.Time) (time.Duration, bool) {
	if len(times) < 2 {
		return 0, false
	}
	total := times[len(times)-1].Sub(times[0])
	return total / time.Duration(len(times)-1), true
}

// PaceTrend compares this week's count against the previous week's. Changes
// inside a 15% band (and tiny absolute swings) read as steady.
func PaceTrend(thisWeek, lastWeek int) Trend {
	switch {
	case thisWeek == 0 && lastWeek == 0:
		return TrendIdle
	case lastWeek == 0:
		return TrendNew
	case float64(thisWeek) > float64(lastWeek)*1.15:
		return TrendUp
	case float64(thisWeek) < float64(lastWeek)*0.85:
		return TrendDown
	default:
		return TrendSteady
	}
}

// ClassifyHealth maps a weekly post count to its health tier.
func ClassifyHealth(weekly int) Health {
	switch {
	case weekly >= 20:
		return HealthThriving
	case weekly >= 10:
		return HealthHealthy
	case weekly >= 5:
		return HealthSlowing
	default:
		return HealthStruggling
	}
}

// String returns the display label for the health tier.
func (h Health) String() string {
	switch h {
	case HealthThriving:
		return "thriving"
	case HealthHealthy:
		return "healthy"
	case HealthSlowing:
		return "slowing"
	default:
		return "struggling"
	}
}

// String returns the display label for the trend.
func (t Trend) String() string {
	switch t {
	case TrendNew:
		return "new"
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	case TrendSteady:
		return "steady"
	default:
		return "idle"
	}
}
