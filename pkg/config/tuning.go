package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning overrides the engine's scoring weights, delivery windows and
// rate limits from a YAML file. Zero values mean "keep the default"; the
// container maps these onto the domain configs.
type Tuning struct {
	Urgency   UrgencyTuning   `yaml:"urgency"`
	Optimizer OptimizerTuning `yaml:"optimizer"`
}

// UrgencyTuning mirrors the scorer configuration.
type UrgencyTuning struct {
	DeadlineWeight   float64 `yaml:"deadline_weight"`
	PriorityWeight   float64 `yaml:"priority_weight"`
	AgeWeight        float64 `yaml:"age_weight"`
	DependencyWeight float64 `yaml:"dependency_weight"`
	StalenessWeight  float64 `yaml:"staleness_weight"`
	CompletionWeight float64 `yaml:"completion_weight"`

	CriticalWindowHours float64 `yaml:"critical_window_hours"`
	HighWindowHours     float64 `yaml:"high_window_hours"`
	MediumWindowHours   float64 `yaml:"medium_window_hours"`
	LowWindowHours      float64 `yaml:"low_window_hours"`

	StalenessThresholdHours float64 `yaml:"staleness_threshold_hours"`

	CriticalThreshold int `yaml:"critical_threshold"`
	HighThreshold     int `yaml:"high_threshold"`
	MediumThreshold   int `yaml:"medium_threshold"`
	LowThreshold      int `yaml:"low_threshold"`
}

// WindowTuning mirrors one delivery window.
type WindowTuning struct {
	StartHour int     `yaml:"start_hour"`
	EndHour   int     `yaml:"end_hour"`
	Weight    float64 `yaml:"weight"`
}

// OptimizerTuning mirrors the optimizer configuration.
type OptimizerTuning struct {
	DefaultWindow    *WindowTuning  `yaml:"default_window"`
	PreferredWindows []WindowTuning `yaml:"preferred_windows"`

	MaxPerHour                 int     `yaml:"max_per_hour"`
	MaxPerDay                  int     `yaml:"max_per_day"`
	InteractionCooldownMinutes int     `yaml:"interaction_cooldown_minutes"`
	FailureCooldownMinutes     int     `yaml:"failure_cooldown_minutes"`
	MinChannelOpenRate         float64 `yaml:"min_channel_open_rate"`
	BatchWindowMinutes         int     `yaml:"batch_window_minutes"`
	MaxBatchSize               int     `yaml:"max_batch_size"`
}

// LoadTuning reads a tuning file. An empty path returns an empty Tuning,
// leaving every engine default in place.
func LoadTuning(path string) (Tuning, error) {
	var t Tuning
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tuning file: %w", err)
	}
	return t, nil
}
