package app

import (
	"time"

	notifications "github.com/hearthhq/hearth/internal/notifications/domain"
	"github.com/hearthhq/hearth/internal/urgency"
	"github.com/hearthhq/hearth/pkg/config"
)

// ApplyUrgencyTuning overlays non-zero tuning values onto a scorer
// configuration.
func ApplyUrgencyTuning(base urgency.Config, t config.UrgencyTuning) urgency.Config {
	setFloat(&base.DeadlineWeight, t.DeadlineWeight)
	setFloat(&base.PriorityWeight, t.PriorityWeight)
	setFloat(&base.AgeWeight, t.AgeWeight)
	setFloat(&base.DependencyWeight, t.DependencyWeight)
	setFloat(&base.StalenessWeight, t.StalenessWeight)
	setFloat(&base.CompletionWeight, t.CompletionWeight)

	setFloat(&base.CriticalWindowHours, t.CriticalWindowHours)
	setFloat(&base.HighWindowHours, t.HighWindowHours)
	setFloat(&base.MediumWindowHours, t.MediumWindowHours)
	setFloat(&base.LowWindowHours, t.LowWindowHours)

	setFloat(&base.StalenessThresholdHours, t.StalenessThresholdHours)

	setInt(&base.CriticalThreshold, t.CriticalThreshold)
	setInt(&base.HighThreshold, t.HighThreshold)
	setInt(&base.MediumThreshold, t.MediumThreshold)
	setInt(&base.LowThreshold, t.LowThreshold)

	return base
}

// ApplyOptimizerTuning overlays non-zero tuning values onto an optimizer
// configuration.
func ApplyOptimizerTuning(base notifications.OptimizerConfig, t config.OptimizerTuning) notifications.OptimizerConfig {
	if t.DefaultWindow != nil {
		base.Windows.Default = toWindow(*t.DefaultWindow)
	}
	if len(t.PreferredWindows) > 0 {
		base.Windows.Preferred = base.Windows.Preferred[:0]
		for _, w := range t.PreferredWindows {
			base.Windows.Preferred = append(base.Windows.Preferred, toWindow(w))
		}
	}

	setInt(&base.RateLimit.MaxPerHour, t.MaxPerHour)
	setInt(&base.RateLimit.MaxPerDay, t.MaxPerDay)
	if t.InteractionCooldownMinutes > 0 {
		base.RateLimit.InteractionCooldown = time.Duration(t.InteractionCooldownMinutes) * time.Minute
	}
	if t.FailureCooldownMinutes > 0 {
		base.RateLimit.FailureCooldown = time.Duration(t.FailureCooldownMinutes) * time.Minute
	}

	setFloat(&base.MinChannelOpenRate, t.MinChannelOpenRate)
	if t.BatchWindowMinutes > 0 {
		base.BatchWindow = time.Duration(t.BatchWindowMinutes) * time.Minute
	}
	setInt(&base.MaxBatchSize, t.MaxBatchSize)

	return base
}

func toWindow(w config.WindowTuning) notifications.DeliveryWindow {
	return notifications.DeliveryWindow{
		StartHour: w.StartHour,
		EndHour:   w.EndHour,
		Weight:    w.Weight,
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
