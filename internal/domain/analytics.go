package domain

// AnalyticsData is the aggregate root: the ordered event list plus running
// totals. The central invariant is that each counter always equals the count
// of events of the matching kind, after every mutation and after every
// save/load cycle. Append is the only mutation path, which keeps the
// invariant true by construction.
//
// The JSON field names are the persisted wire format of the durable slot.
type AnalyticsData struct {
	Events         []Event `json:"events"`
	TotalDownloads int     `json:"totalDownloads"`
	TotalViews     int     `json:"totalViews"`
	TotalContacts  int     `json:"totalContacts"`
}

// NewAnalyticsData creates an empty store
func NewAnalyticsData() *AnalyticsData {
	return &AnalyticsData{Events: []Event{}}
}

// Append adds an event and bumps the counter matching its kind.
// Events of an unknown kind are counted nowhere, so callers must validate
// the kind first; all constructors in this package already do.
func (d *AnalyticsData) Append(e Event) {
	d.Events = append(d.Events, e)

	switch e.Kind {
	case KindView:
		d.TotalViews++
	case KindDownload:
		d.TotalDownloads++
	case KindContact:
		d.TotalContacts++
	}
}

// CountByKind recounts events of the given kind from the event list
func (d *AnalyticsData) CountByKind(kind EventKind) int {
	count := 0
	for _, e := range d.Events {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

// CounterFor returns the running counter for the given kind
func (d *AnalyticsData) CounterFor(kind EventKind) int {
	switch kind {
	case KindView:
		return d.TotalViews
	case KindDownload:
		return d.TotalDownloads
	case KindContact:
		return d.TotalContacts
	}
	return 0
}

// Consistent reports whether every running counter agrees with a recount
// of the event list. This is the invariant the test suite leans on.
func (d *AnalyticsData) Consistent() bool {
	return d.TotalViews == d.CountByKind(KindView) &&
		d.TotalDownloads == d.CountByKind(KindDownload) &&
		d.TotalContacts == d.CountByKind(KindContact)
}

// SameHistory reports whether two stores hold the same event history.
// Event IDs are unique, so matching IDs in order means matching history.
func (d *AnalyticsData) SameHistory(other *AnalyticsData) bool {
	if d.TotalViews != other.TotalViews ||
		d.TotalDownloads != other.TotalDownloads ||
		d.TotalContacts != other.TotalContacts {
		return false
	}
	if len(d.Events) != len(other.Events) {
		return false
	}
	for i := range d.Events {
		if d.Events[i].ID != other.Events[i].ID {
			return false
		}
	}
	return true
}

// Copy returns a snapshot of the current state. The events slice is a fresh
// allocation, so mutating the copy never affects the original. Events
// themselves are plain values and immutable by contract.
func (d *AnalyticsData) Copy() *AnalyticsData {
	events := make([]Event, len(d.Events))
	copy(events, d.Events)

	return &AnalyticsData{
		Events:         events,
		TotalDownloads: d.TotalDownloads,
		TotalViews:     d.TotalViews,
		TotalContacts:  d.TotalContacts,
	}
}
