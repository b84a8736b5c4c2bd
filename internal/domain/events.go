package domain

import "time"

// EventKind tags the closed set of events the bus can fan out.
type EventKind string

const KindLocationAdded EventKind = "LocationAdded"

// Event is a message fanned out to zero or more handlers. Events are
// raised into the owning unit of work's buffer and collected after
// commit; they are never persisted.
type Event interface {
	Message
	EventKind() EventKind
}

// LocationAdded is emitted once per durable Location written by a flush.
type LocationAdded struct {
	Timestamp time.Time
	Lat       float64
	Long      float64
	Accuracy  float64
	Speed     float64
	UserID    string
}

func (LocationAdded) message()             {}
func (LocationAdded) EventKind() EventKind { return KindLocationAdded }

// Payload renders the event in the shape published to the external
// channel. The timestamp is ISO-8601, matching the buffer wire format.
func (e LocationAdded) Payload() map[string]any {
	return map[string]any{
		"timestamp": e.Timestamp.Format(time.RFC3339Nano),
		"lat":       e.Lat,
		"long":      e.Long,
		"accuracy":  e.Accuracy,
		"speed":     e.Speed,
		"user_id":   e.UserID,
	}
}
