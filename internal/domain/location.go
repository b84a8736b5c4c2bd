package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sample is one raw geolocation ping after timestamp normalization.
// Samples are transient: they live in the volatile buffer until a window
// closes, then either become part of a Location or are discarded.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Lat       float64   `json:"lat"`
	Long      float64   `json:"long"`
	Accuracy  float64   `json:"accuracy"`
	Speed     float64   `json:"speed"`
	UserID    string    `json:"user_id"`
}

// Location is the durable per-minute record. At most one exists per
// (user_id, minute bucket); the storage backend enforces that with a
// unique index.
type Location struct {
	ID        string
	Timestamp time.Time
	Lat       float64
	Long      float64
	Accuracy  float64
	Speed     float64
	UserID    string
}

// NewLocation builds a Location from already-normalized fields.
// An empty id gets a generated UUID. Returns an error for payloads a
// well-formed command could never produce.
func NewLocation(id string, ts time.Time, lat, long, accuracy, speed float64, userID string) (*Location, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if ts.IsZero() {
		return nil, fmt.Errorf("timestamp is required")
	}
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("lat %v out of range [-90, 90]", lat)
	}
	if long < -180 || long > 180 {
		return nil, fmt.Errorf("long %v out of range [-180, 180]", long)
	}
	if id == "" {
		id = uuid.New().String()
	}
	return &Location{
		ID:        id,
		Timestamp: ts,
		Lat:       lat,
		Long:      long,
		Accuracy:  accuracy,
		Speed:     speed,
		UserID:    userID,
	}, nil
}

// AsSample converts a durable record back into a sample so a flush can
// fold an existing minute record into a new mean.
func (l *Location) AsSample() Sample {
	return Sample{
		Timestamp: l.Timestamp,
		Lat:       l.Lat,
		Long:      l.Long,
		Accuracy:  l.Accuracy,
		Speed:     l.Speed,
		UserID:    l.UserID,
	}
}
