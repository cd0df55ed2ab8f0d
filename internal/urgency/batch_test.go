package urgency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tasks "github.com/hearthhq/hearth/internal/tasks/domain"
)

func sampleScores(t *testing.T) []Score {
	t.Helper()
	scorer := NewScorer(DefaultConfig())

	urgent := taskDueIn(time.Hour)
	urgent.Priority = tasks.PriorityUrgent

	overdue := taskDueIn(-12 * time.Hour)

	relaxed := taskDueIn(150 * time.Hour)
	relaxed.Priority = tasks.PriorityLow

	return scorer.ScoreBatch([]tasks.Task{relaxed, urgent, overdue}, testNow)
}

func TestSortByScore(t *testing.T) {
	scores := sampleScores(t)

	desc := SortByScore(scores, true)
	for i := 1; i < len(desc); i++ {
		assert.GreaterOrEqual(t, desc[i-1].Total, desc[i].Total)
	}

	asc := SortByScore(scores, false)
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, asc[i-1].Total, asc[i].Total)
	}

	// Input must stay untouched.
	assert.NotEqual(t, desc[0].Total, scores[0].Total)
}

func TestFilterByMinLevel(t *testing.T) {
	scores := sampleScores(t)

	high := FilterByMinLevel(scores, LevelHigh)
	for _, sc := range high {
		assert.GreaterOrEqual(t, sc.Level, LevelHigh)
	}
	assert.Less(t, len(high), len(scores))

	assert.Len(t, FilterByMinLevel(scores, LevelNone), len(scores))
}

func TestTopN(t *testing.T) {
	scores := sampleScores(t)

	top := TopN(scores, 2)
	require.Len(t, top, 2)
	assert.GreaterOrEqual(t, top[0].Total, top[1].Total)

	assert.Len(t, TopN(scores, 10), len(scores))
}

func TestDistribute(t *testing.T) {
	scores := sampleScores(t)

	dist := Distribute(scores)

	assert.Equal(t, len(scores), dist.Total)
	assert.Equal(t, 1, dist.OverdueCount)
	assert.Greater(t, dist.MeanScore, 0.0)

	counted := 0
	for _, n := range dist.ByLevel {
		counted += n
	}
	assert.Equal(t, dist.Total, counted)

	t.Run("empty population", func(t *testing.T) {
		empty := Distribute(nil)
		assert.Zero(t, empty.Total)
		assert.Zero(t, empty.MeanScore)
	})
}
