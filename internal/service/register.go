package service

import (
	"context"
	"fmt"

	"github.com/locus-lab/project-locus/internal/bus"
	"github.com/locus-lab/project-locus/internal/domain"
	"github.com/locus-lab/project-locus/internal/publish"
)

// NewBus builds the static dispatch tables: one handler per command
// kind, the publisher fan-out for LocationAdded. An empty channel falls
// back to the default locations channel.
func NewBus(h *Handlers, pub publish.Publisher, channel string) *bus.Bus {
	if channel == "" {
		channel = publish.LocationsChannel
	}
	return bus.New(
		map[domain.CommandKind]bus.CommandHandler{
			domain.KindPutLocation: h.PutLocation,
			domain.KindHealthCheck: h.HealthCheck,
		},
		map[domain.EventKind][]bus.EventHandler{
			domain.KindLocationAdded: {publishLocationAdded(pub, channel)},
		},
	)
}

// publishLocationAdded forwards a committed LocationAdded to the
// external channel. A publish failure surfaces to the bus, which logs
// and drops it; the originating command already committed.
func publishLocationAdded(pub publish.Publisher, channel string) bus.EventHandler {
	return func(ctx context.Context, evt domain.Event) ([]domain.Event, error) {
		added, ok := evt.(domain.LocationAdded)
		if !ok {
			return nil, fmt.Errorf("unexpected event type %T", evt)
		}
		return nil, pub.Publish(ctx, channel, string(domain.KindLocationAdded), added.Payload())
	}
}
