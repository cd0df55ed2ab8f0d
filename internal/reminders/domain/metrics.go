package domain

// Metrics aggregates delivery counts over a reminder collection.
type Metrics struct {
	Total     int
	Scheduled int
	Sent      int
	Delivered int
	Failed    int
	Cancelled int
	Snoozed   int
}

// Aggregate reduces a reminder collection into delivery metrics.
func Aggregate(reminders []Reminder) Metrics {
	m := Metrics{Total: len(reminders)}
	for _, r := range reminders {
		switch r.Status {
		case StatusScheduled:
			m.Scheduled++
		case StatusSent:
			m.Sent++
		case StatusDelivered:
			m.Delivered++
		case StatusFailed:
			m.Failed++
		case StatusCancelled:
			m.Cancelled++
		case StatusSnoozed:
			m.Snoozed++
		}
	}
	return m
}

// DeliveryRate returns the share of sent reminders that were delivered.
func (m Metrics) DeliveryRate() float64 {
	attempted := m.Sent + m.Delivered + m.Failed
	if attempted == 0 {
		return 0
	}
	return float64(m.Delivered) / float64(attempted)
}
