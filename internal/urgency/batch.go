package urgency

import (
	"sort"
	"time"

	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

// Distribution summarizes urgency across a population of scores.
type Distribution struct {
	Total        int
	ByLevel      map[Level]int
	MeanScore    float64
	OverdueCount int
}

// ScoreBatch scores every task in the slice at the same instant, keeping
// input order. Intended to run as a periodic sweep, not a hot loop.
func (s *Scorer) ScoreBatch(ts []tasks.Task, now time.Time) []Score {
	scores := make([]Score, 0, len(ts))
	for _, t := range ts {
		scores = append(scores, s.Score(t, now))
	}
	return scores
}

// SortByScore returns a copy sorted by total score, highest first when
// descending is true. Ties keep their relative input order.
func SortByScore(scores []Score, descending bool) []Score {
	out := make([]Score, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Total > out[j].Total
		}
		return out[i].Total < out[j].Total
	})
	return out
}

// FilterByMinLevel keeps only scores at or above the given level.
func FilterByMinLevel(scores []Score, min Level) []Score {
	var out []Score
	for _, sc := range scores {
		if sc.Level >= min {
			out = append(out, sc)
		}
	}
	return out
}

// TopN returns the n highest-scoring entries.
func TopN(scores []Score, n int) []Score {
	sorted := SortByScore(scores, true)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Distribute computes population statistics over a set of scores.
// A task counts as overdue when its deadline factor reached the overdue
// range and the breakdown carries the late marker.
func Distribute(scores []Score) Distribution {
	dist := Distribution{
		Total:   len(scores),
		ByLevel: make(map[Level]int),
	}

	sum := 0
	for _, sc := range scores {
		dist.ByLevel[sc.Level]++
		sum += sc.Total
		if sc.Factors.Overdue && sc.Factors.Deadline >= 100 {
			dist.OverdueCount++
		}
	}
	if len(scores) > 0 {
		dist.MeanScore = float64(sum) / float64(len(scores))
	}
	return dist
}
