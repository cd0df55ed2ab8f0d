package domain

import "time"

// DeliveryWindow is a time-of-day range with a preference weight in [0,1].
// A start hour greater than the end hour wraps midnight, the same
// convention quiet hours use.
type DeliveryWindow struct {
	StartHour int
	EndHour   int
	Weight    float64
}

// Contains reports whether the given time falls inside the window.
func (w DeliveryWindow) Contains(t time.Time) bool {
	hour := t.Hour()
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour < w.EndHour
	}
	return hour >= w.StartHour || hour < w.EndHour
}

// WindowConfig ranks preferred delivery windows over a default window.
type WindowConfig struct {
	Default   DeliveryWindow
	Preferred []DeliveryWindow
}

// DefaultWindowConfig returns the windows applied to users who have not
// expressed a preference: anything during waking hours is acceptable,
// with early evening and mid-morning preferred.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Default: DeliveryWindow{StartHour: 8, EndHour: 21, Weight: 0.4},
		Preferred: []DeliveryWindow{
			{StartHour: 17, EndHour: 20, Weight: 1.0},
			{StartHour: 9, EndHour: 11, Weight: 0.8},
		},
	}
}

// WindowWeight returns the weight of the first preferred window containing
// the time, else the default window's weight, else 0 when the time sits
// outside every window.
func (c WindowConfig) WindowWeight(t time.Time) float64 {
	for _, w := range c.Preferred {
		if w.Contains(t) {
			return w.Weight
		}
	}
	if c.Default.Contains(t) {
		return c.Default.Weight
	}
	return 0
}
