// Package urgency converts task snapshots into 0-100 urgency scores built
// from independently weighted factors. Scoring is pure and deterministic:
// the same snapshot, configuration and clock always produce the same score,
// and scores are recomputed on demand rather than stored.
package urgency

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// Score is the full scoring result for one task.
type Score struct {
	TaskID          uuid.UUID
	Total           int
	Level           Level
	Factors         Factors
	Explanations    []string
	Recommendations []string
	CalculatedAt    time.Time
}

// Scorer computes urgency scores from task snapshots.
type Scorer struct {
	config Config
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{config: cfg}
}

// Score computes the urgency score for a task at the given time.
// Completed and cancelled tasks always score 0 at level none.
func (s *Scorer) Score(t tasks.Task, now time.Time) Score {
	if t.Status.IsTerminal() {
		return Score{
			TaskID:       t.ID,
			Level:        LevelNone,
			CalculatedAt: now,
		}
	}

	deadline, overdue := DeadlineFactor(t, s.config, now)
	factors := Factors{
		Deadline:   deadline,
		Priority:   PriorityFactor(t.Priority),
		Age:        AgeFactor(t, now),
		Dependency: DependencyFactor(t),
		Staleness:  StalenessFactor(t, s.config, now),
		Completion: CompletionFactor(t),
		Overdue:    overdue,
	}

	weighted := factors.Deadline*s.config.DeadlineWeight +
		factors.Priority*s.config.PriorityWeight +
		factors.Age*s.config.AgeWeight +
		factors.Dependency*s.config.DependencyWeight +
		factors.Staleness*s.config.StalenessWeight +
		factors.Completion*s.config.CompletionWeight

	total := 0
	if sum := s.config.WeightSum(); sum > 0 {
		// Heavily overdue tasks can push the weighted average past 100;
		// the reported total clamps while the breakdown keeps the raw value.
		total = int(math.Min(100, math.Max(0, math.Round(weighted/sum))))
	}

	return Score{
		TaskID:          t.ID,
		Total:           total,
		Level:           ScoreToLevel(total, s.config),
		Factors:         factors,
		Explanations:    explain(t, factors, now),
		Recommendations: recommend(t, factors, total),
		CalculatedAt:    now,
	}
}

func explain(t tasks.Task, f Factors, now time.Time) []string {
	var out []string

	switch {
	case t.Deadline == nil:
		out = append(out, "no deadline set")
	case f.Overdue:
		out = append(out, fmt.Sprintf("overdue by %.0f hours", now.Sub(*t.Deadline).Hours()))
	default:
		out = append(out, fmt.Sprintf("due in %.0f hours", t.Deadline.Sub(now).Hours()))
	}

	out = append(out, fmt.Sprintf("priority %s contributes %.0f", t.Priority, f.Priority))

	if f.Age > 0 {
		out = append(out, fmt.Sprintf("open for %.0f days", now.Sub(t.CreatedAt).Hours()/24))
	}
	if t.BlockedTaskCount > 0 {
		out = append(out, fmt.Sprintf("blocks %d other tasks", t.BlockedTaskCount))
	}
	if f.Staleness > 0 {
		if t.LastActivityAt == nil {
			out = append(out, "no recorded activity")
		} else {
			out = append(out, fmt.Sprintf("inactive for %.0f hours", now.Sub(*t.LastActivityAt).Hours()))
		}
	}
	if t.IsRecurring() && f.Completion > 0 {
		out = append(out, fmt.Sprintf("completed %.0f%% of the time", *t.CompletionRate*100))
	}

	return out
}

func recommend(t tasks.Task, f Factors, total int) []string {
	var out []string

	if f.Overdue {
		out = append(out, "task is overdue; complete or reschedule it")
	} else if f.Deadline >= 100 {
		out = append(out, "deadline is imminent; start now")
	}
	if t.BlockedTaskCount > 0 && f.Dependency > 0 {
		out = append(out, fmt.Sprintf("finishing this unblocks %d tasks", t.BlockedTaskCount))
	}
	if f.Staleness >= 50 {
		out = append(out, "task has gone quiet; check whether it is still needed")
	}
	if t.IsRecurring() && f.Completion >= 50 {
		out = append(out, "this chore is frequently skipped; consider a different schedule or assignee")
	}
	if total >= 70 && len(out) == 0 {
		out = append(out, "high urgency; schedule time for this today")
	}

	return out
}
