package domain

// KindCounts holds per-kind event counts for one time bucket
type KindCounts struct {
	Views     int `json:"views"`
	Downloads int `json:"downloads"`
	Contacts  int `json:"contacts"`
}

// Add bumps the counter matching the given kind
func (c *KindCounts) Add(kind EventKind) {
	switch kind {
	case KindView:
		c.Views++
	case KindDownload:
		c.Downloads++
	case KindContact:
		c.Contacts++
	}
}

// Summary is the four-bucket aggregation a dashboard renders:
//   - Total comes straight from the running counters
//   - Today counts events since local midnight
//   - ThisWeek is a rolling 7x24h window (not calendar-aligned)
//   - ThisMonth counts events since the first of the current month
type Summary struct {
	Total     KindCounts `json:"total"`
	Today     KindCounts `json:"today"`
	ThisWeek  KindCounts `json:"thisWeek"`
	ThisMonth KindCounts `json:"thisMonth"`
}
