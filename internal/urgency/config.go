package urgency

// Config tunes how the individual factors combine into an urgency score.
// Weights need not sum to 100; the total is normalized by the weight sum.
type Config struct {
	DeadlineWeight   float64
	PriorityWeight   float64
	AgeWeight        float64
	DependencyWeight float64
	StalenessWeight  float64
	CompletionWeight float64

	// Deadline window boundaries, in hours before the deadline.
	CriticalWindowHours float64
	HighWindowHours     float64
	MediumWindowHours   float64
	LowWindowHours      float64

	// StalenessThresholdHours is how long a task may sit without activity
	// before it starts accruing staleness.
	StalenessThresholdHours float64

	// Level thresholds, evaluated top-down; the first match wins.
	CriticalThreshold int
	HighThreshold     int
	MediumThreshold   int
	LowThreshold      int
}

// DefaultConfig returns a production-friendly configuration.
func DefaultConfig() Config {
	return Config{
		DeadlineWeight:   40,
		PriorityWeight:   30,
		AgeWeight:        10,
		DependencyWeight: 5,
		StalenessWeight:  10,
		CompletionWeight: 5,

		CriticalWindowHours: 4,
		HighWindowHours:     24,
		MediumWindowHours:   72,
		LowWindowHours:      168,

		StalenessThresholdHours: 72,

		CriticalThreshold: 70,
		HighThreshold:     50,
		MediumThreshold:   30,
		LowThreshold:      10,
	}
}

// WeightSum returns the sum of all configured factor weights.
func (c Config) WeightSum() float64 {
	return c.DeadlineWeight + c.PriorityWeight + c.AgeWeight +
		c.DependencyWeight + c.StalenessWeight + c.CompletionWeight
}
