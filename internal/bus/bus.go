// Package bus dispatches commands and events over a FIFO queue. The
// dispatch tables are static, built once at startup from the closed
// command/event kind sets.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/locus-lab/project-locus/internal/domain"
)

// ErrUnknownMessage marks a queue entry that is neither a command nor an
// event. That is a programming error, not a runtime condition.
var ErrUnknownMessage = errors.New("message is neither a command nor an event")

// ErrNoHandler is returned when a command has no registered handler.
var ErrNoHandler = errors.New("no handler registered for command")

// CommandHandler processes one command and returns its result plus any
// events its unit of work produced. Exactly one handler serves each
// command kind.
type CommandHandler func(ctx context.Context, cmd domain.Command) (any, []domain.Event, error)

// EventHandler reacts to one event, optionally producing follow-up
// events. Zero or more handlers serve each event kind.
type EventHandler func(ctx context.Context, evt domain.Event) ([]domain.Event, error)

// Message is what the queue holds. Commands and events are the only
// valid kinds; anything else trips ErrUnknownMessage.
type Message = any

// Bus drains a FIFO queue seeded with one inbound message. Events
// appended while handling are processed before Handle returns.
type Bus struct {
	commands map[domain.CommandKind]CommandHandler
	events   map[domain.EventKind][]EventHandler
}

func New(commands map[domain.CommandKind]CommandHandler, events map[domain.EventKind][]EventHandler) *Bus {
	if commands == nil {
		commands = map[domain.CommandKind]CommandHandler{}
	}
	if events == nil {
		events = map[domain.EventKind][]EventHandler{}
	}
	return &Bus{commands: commands, events: events}
}

// Handle dispatches msg and everything it transitively produces. For a
// command, the handler's result is returned once the queue is fully
// drained; a command handler error propagates to the caller immediately.
// Event handler errors are logged and isolated: the remaining handlers
// for that event still run, and the queue keeps draining.
func (b *Bus) Handle(ctx context.Context, msg Message) (any, error) {
	queue := []Message{msg}
	var result any

	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		switch m := head.(type) {
		case domain.Command:
			res, events, err := b.handleCommand(ctx, m)
			if err != nil {
				return nil, err
			}
			result = res
			queue = append(queue, asMessages(events)...)
		case domain.Event:
			queue = append(queue, asMessages(b.handleEvent(ctx, m))...)
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnknownMessage, head)
		}
	}
	return result, nil
}

func (b *Bus) handleCommand(ctx context.Context, cmd domain.Command) (any, []domain.Event, error) {
	handler, ok := b.commands[cmd.CommandKind()]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoHandler, cmd.CommandKind())
	}
	slog.Debug("Handling command", "kind", cmd.CommandKind())

	result, events, err := handler(ctx, cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("command %s: %w", cmd.CommandKind(), err)
	}
	return result, events, nil
}

// handleEvent runs every handler registered for the event kind in
// registration order. No retry, no dead-letter: a failed handler's
// delivery is permanently lost and downstream consumers must tolerate
// at-most-once delivery.
func (b *Bus) handleEvent(ctx context.Context, evt domain.Event) []domain.Event {
	var produced []domain.Event
	for _, handler := range b.events[evt.EventKind()] {
		slog.Debug("Handling event", "kind", evt.EventKind())
		events, err := handler(ctx, evt)
		if err != nil {
			slog.Error("Event handler failed", "kind", evt.EventKind(), "error", err)
			continue
		}
		produced = append(produced, events...)
	}
	return produced
}

func asMessages(events []domain.Event) []Message {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]Message, len(events))
	for i, evt := range events {
		msgs[i] = evt
	}
	return msgs
}
