// Package publish fans committed events out to an external channel.
// Delivery is best effort: one attempt after commit, no retry, no
// persistence.
package publish

import "context"

// LocationsChannel is the pub/sub channel location events go to.
const LocationsChannel = "locations"

// Publisher is the external fan-out contract the core consumes.
type Publisher interface {
	Publish(ctx context.Context, channel, eventType string, payload map[string]any) error
}
