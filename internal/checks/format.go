package checks

import (
	"fmt"
	"time"
)

// fmtDate formats a time as a plain date.
func fmtDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// fmtHours renders an hour count as "5h" or "2d 3h".
func fmtHours(hours int) string {
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd %dh", hours/24, hours%24)
}

// fmtRelative renders "today (date)", "yesterday (date)" or "Nd ago (date)".
func fmtRelative(now, then time.Time) string {
	days := int(now.Sub(then).Hours() / 24)
	date := fmtDate(then)
	switch {
	case days <= 0:
		return fmt.Sprintf("today (%s)", date)
	case days == 1:
		return fmt.Sprintf("yesterday (%s)", date)
	default:
		return fmt.Sprintf("%dd ago (%s)", days, date)
	}
}

// fmtGap renders a duration as minutes or fractional hours.
func fmtGap(gap time.Duration) string {
	if gap < time.Hour {
		return fmt.Sprintf("%.0f minutes", gap.Minutes())
	}
	return fmt.Sprintf("%.1f hours", gap.Hours())
}

// posts renders "1 post" or "N posts".
func posts(n int) string {
	if n == 1 {
		return "1 post"
	}
	return fmt.Sprintf("%d posts", n)
}

// plural returns "s" unless n is 1.
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
