package ledger

const (
	// CampaignMilestoneStep is the per-campaign post-count celebration step.
	CampaignMilestoneStep = 500
	// GlobalMilestoneStep is the cross-campaign post-count celebration step.
	GlobalMilestoneStep = 5000
)

// CrossedMultiples returns every multiple of step crossed when a running
// total moves from before to after. A single batch can cross more than one,
// so all of them are returned in ascending order.
func CrossedMultiples(before, after, step int) []int {
	if step <= 0 || after <= before {
		return nil
	}
	var crossed []int
	first := (before/step + 1) * step
	for m := first; m <= after; m += step {
		crossed = append(crossed, m)
	}
	return crossed
}

// FilterCelebrated drops milestones already present in celebrated. The
// returned slice preserves order.
func FilterCelebrated(milestones []int, celebrated []int) []int {
	seen := make(map[int]bool, len(celebrated))
	for _, m := range celebrated {
		seen[m] = true
	}
	var due []int
	for _, m := range milestones {
		if !seen[m] {
			due = append(due, m)
		}
	}
	return due
}
