package domain

import (
	"crypto/rand"
	"strconv"
	"time"
)

// EventKind identifies what kind of interaction an event records.
// The set is closed - the analytics engine only understands these three.
type EventKind string

const (
	KindView     EventKind = "view"
	KindDownload EventKind = "download"
	KindContact  EventKind = "contact"
)

// Valid reports whether the kind is one of the three known event kinds
func (k EventKind) Valid() bool {
	switch k {
	case KindView, KindDownload, KindContact:
		return true
	}
	return false
}

// Event is one immutable recorded interaction. Events are append-only:
// once created they are never mutated or reordered. The JSON field names
// are the persisted wire format of the durable slot.
type Event struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
	UserAgent  string    `json:"userAgent,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	SessionTag string    `json:"sessionTag,omitempty"`
}

// NewEvent creates an event of the given kind, stamped with the given time
// and the ambient client metadata captured at call time. The ID is generated
// here so per-process IDs stay unique without any coordination.
func NewEvent(kind EventKind, at time.Time, userAgent, referrer, sessionTag string) Event {
	return Event{
		ID:         newEventID(at),
		Kind:       kind,
		Timestamp:  at,
		UserAgent:  userAgent,
		Referrer:   referrer,
		SessionTag: sessionTag,
	}
}

// newEventID builds a time-based ID with a random suffix:
// "<unix-millis>-<7 base-36 chars>". The timestamp prefix keeps IDs roughly
// sortable; the suffix avoids collisions within the same millisecond.
func newEventID(at time.Time) string {
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + RandomBase36(7)
}

// RandomBase36 returns n random characters from the base-36 alphabet.
// Collision resistance across a small user base is all that's needed here;
// this is not a security boundary.
func RandomBase36(n int) string {
	const charset = "0123456789abcdefghijklmnopqrstuvwxyz"

	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a timestamp-derived string (less random but works)
		fallback := strconv.FormatInt(time.Now().UnixNano(), 36)
		for len(fallback) < n {
			fallback += fallback
		}
		return fallback[:n]
	}

	for i, b := range bytes {
		bytes[i] = charset[b%byte(len(charset))]
	}
	return string(bytes)
}
