package publish

import (
	"context"
	"log/slog"
)

// LoggingPublisher writes events to the log instead of a broker. It
// stands in when no redis address is configured and in tests.
type LoggingPublisher struct{}

func NewLoggingPublisher() *LoggingPublisher { return &LoggingPublisher{} }

func (*LoggingPublisher) Publish(_ context.Context, channel, eventType string, payload map[string]any) error {
	slog.Info("Event published (logging only)", "channel", channel, "event", eventType, "payload", payload)
	return nil
}
