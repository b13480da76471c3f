package types

import "time"

// TimelineEntry is one human-readable status event on a merchant order.
type TimelineEntry struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Timeline is the append-only event list stored on a merchant order.
type Timeline []TimelineEntry

// Append returns the timeline with a new entry stamped at the given time.
func (t Timeline) Append(message string, at time.Time) Timeline {
	return append(t, TimelineEntry{Message: message, At: at.UTC()})
}
