package urgency

import "strings"

// Level is the discrete urgency bucket a score falls into.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = map[Level]string{
	LevelNone:     "none",
	LevelLow:      "low",
	LevelMedium:   "medium",
	LevelHigh:     "high",
	LevelCritical: "critical",
}

var levelValues = map[string]Level{
	"none":     LevelNone,
	"low":      LevelLow,
	"medium":   LevelMedium,
	"high":     LevelHigh,
	"critical": LevelCritical,
}

// ParseLevel creates a Level from a string, defaulting to LevelNone.
func ParseLevel(s string) Level {
	return levelValues[strings.ToLower(s)]
}

// String returns the string representation of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// AtLeast reports whether the level meets or exceeds another.
func (l Level) AtLeast(other Level) bool {
	return l >= other
}

// ScoreToLevel maps a total score onto a level using the configured
// thresholds, evaluated top-down so the first matching threshold wins.
func ScoreToLevel(score int, cfg Config) Level {
	switch {
	case score >= cfg.CriticalThreshold:
		return LevelCritical
	case score >= cfg.HighThreshold:
		return LevelHigh
	case score >= cfg.MediumThreshold:
		return LevelMedium
	case score >= cfg.LowThreshold:
		return LevelLow
	default:
		return LevelNone
	}
}
