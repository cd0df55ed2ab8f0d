package urgency

import (
	"math"
	"time"

	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// Factors holds the six independent sub-scores that feed the total.
// Every factor is clamped to [0,100] except Deadline, which keeps growing
// past 100 for overdue tasks so escalation survives the weighting step.
type Factors struct {
	Deadline   float64
	Priority   float64
	Age        float64
	Dependency float64
	Staleness  float64
	Completion float64

	// Overdue marks that the deadline factor came from a missed deadline
	// rather than an approaching one.
	Overdue bool
}

// DeadlineFactor scores deadline pressure. Tasks without a deadline score 0.
// Overdue tasks score 100 plus half a point per hour overdue, unbounded, so
// a long-ignored task keeps climbing. Future deadlines interpolate linearly
// inside the configured windows.
func DeadlineFactor(t tasks.Task, cfg Config, now time.Time) (float64, bool) {
	if t.Deadline == nil {
		return 0, false
	}

	hoursUntil := t.Deadline.Sub(now).Hours()
	if hoursUntil < 0 {
		return 100 + 0.5*(-hoursUntil), true
	}

	switch {
	case hoursUntil <= cfg.CriticalWindowHours:
		return 100, false
	case hoursUntil <= cfg.HighWindowHours:
		return interpolate(hoursUntil, cfg.CriticalWindowHours, cfg.HighWindowHours, 100, 70), false
	case hoursUntil <= cfg.MediumWindowHours:
		return interpolate(hoursUntil, cfg.HighWindowHours, cfg.MediumWindowHours, 70, 40), false
	case hoursUntil <= cfg.LowWindowHours:
		return interpolate(hoursUntil, cfg.MediumWindowHours, cfg.LowWindowHours, 40, 10), false
	default:
		return 0, false
	}
}

// PriorityFactor maps nominal task priority onto a fixed score.
func PriorityFactor(p tasks.Priority) float64 {
	switch p {
	case tasks.PriorityUrgent:
		return 100
	case tasks.PriorityHigh:
		return 75
	case tasks.PriorityMedium:
		return 40
	case tasks.PriorityLow:
		return 15
	default:
		return 0
	}
}

// AgeFactor grows sub-linearly with task age and saturates near 60 days.
func AgeFactor(t tasks.Task, now time.Time) float64 {
	daysOld := now.Sub(t.CreatedAt).Hours() / 24
	if daysOld <= 0 {
		return 0
	}
	return math.Min(100, math.Pow(daysOld/60, 0.8)*100)
}

// DependencyFactor raises urgency for tasks blocking other work and lowers
// it for tasks waiting on unfinished dependencies, with a net floor at 0.
func DependencyFactor(t tasks.Task) float64 {
	blocking := math.Min(50, float64(t.BlockedTaskCount)*15)
	waiting := math.Min(20, float64(t.DependencyCount)*5)
	return math.Max(0, blocking-waiting)
}

// StalenessFactor is 0 while the task has seen activity within the
// configured threshold, then grows half a point per hour, capped at 100.
// A task with no recorded activity at all scores a moderate 50.
func StalenessFactor(t tasks.Task, cfg Config, now time.Time) float64 {
	if t.LastActivityAt == nil {
		return 50
	}
	idleHours := now.Sub(*t.LastActivityAt).Hours()
	if idleHours <= cfg.StalenessThresholdHours {
		return 0
	}
	return math.Min(100, 0.5*(idleHours-cfg.StalenessThresholdHours))
}

// CompletionFactor scores recurring tasks by how often they get skipped.
// One-off tasks score 0.
func CompletionFactor(t tasks.Task) float64 {
	if !t.IsRecurring() {
		return 0
	}
	rate := clamp01(*t.CompletionRate)
	return (1 - rate) * 100
}

// interpolate maps v in [from,to] linearly onto [start,end].
func interpolate(v, from, to, start, end float64) float64 {
	if to == from {
		return start
	}
	return start + (end-start)*(v-from)/(to-from)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
