package match

// Priority buckets a total match score for notification routing.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PriorityForScore maps a total score onto the unified four-tier scale.
func PriorityForScore(score float64) Priority {
	switch {
	case score >= 0.9:
		return PriorityUrgent
	case score >= 0.8:
		return PriorityHigh
	case score >= 0.6:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
