// Package ingest is the HTTP glue in front of the message bus. It binds
// ping payloads into PutLocation commands and maps handler errors onto
// HTTP responses; all actual behavior lives behind the bus.
package ingest

import (
	"github.com/gin-gonic/gin"
	"github.com/locus-lab/project-locus/internal/bus"
)

type Service struct {
	bus              *bus.Bus
	maxBodySizeBytes int64
}

func NewService(b *bus.Bus, maxBodySizeMB int) *Service {
	if b == nil {
		panic("ingest: bus must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{bus: b, maxBodySizeBytes: int64(maxBodySizeMB) * 1024 * 1024}
}

// RegisterRoutes registers the ingestion routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/locations", s.PutLocationHandler)
}
