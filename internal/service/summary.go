package service

import (
	"sort"
	"time"

	"portfolio-analytics/internal/domain"
)

// summarize computes the four dashboard buckets from the event list,
// fresh on every call - no memoized rollups that could drift from the
// list. O(n) per call is fine at these volumes.
//
// Bucket boundaries are inclusive of the lower bound and open toward now:
//   - today: since midnight of now's calendar day, local time
//   - thisWeek: a rolling now-7x24h window, deliberately not
//     calendar-aligned
//   - thisMonth: since the first of now's month, local time
//
// Total reads the running counters directly rather than recounting; the
// two must agree, which the tests verify.
func summarize(data *domain.AnalyticsData, now time.Time) domain.Summary {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	summary := domain.Summary{
		Total: domain.KindCounts{
			Views:     data.TotalViews,
			Downloads: data.TotalDownloads,
			Contacts:  data.TotalContacts,
		},
	}

	for _, e := range data.Events {
		if !e.Timestamp.Before(dayStart) {
			summary.Today.Add(e.Kind)
		}
		if !e.Timestamp.Before(weekStart) {
			summary.ThisWeek.Add(e.Kind)
		}
		if !e.Timestamp.Before(monthStart) {
			summary.ThisMonth.Add(e.Kind)
		}
	}

	return summary
}

// recentEvents returns up to limit events sorted by timestamp descending.
// The sort is stable, so events sharing a timestamp keep insertion order.
// Sorting happens on a copy: the canonical list stays in insertion order,
// and recency is re-derived from timestamps because a persistence round
// trip may not preserve sub-millisecond ordering.
func recentEvents(data *domain.AnalyticsData, limit int) []domain.Event {
	if limit <= 0 {
		return []domain.Event{}
	}

	events := make([]domain.Event, len(data.Events))
	copy(events, data.Events)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	if limit < len(events) {
		events = events[:limit]
	}
	return events
}
