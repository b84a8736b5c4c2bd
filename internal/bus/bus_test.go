package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/locus-lab/project-locus/internal/domain"
	"github.com/stretchr/testify/require"
)

type unknownMessage struct{}

func TestHandle_CommandResultReturned(t *testing.T) {
	b := New(map[domain.CommandKind]CommandHandler{
		domain.KindHealthCheck: func(ctx context.Context, cmd domain.Command) (any, []domain.Event, error) {
			return true, nil, nil
		},
	}, nil)

	result, err := b.Handle(context.Background(), domain.HealthCheck{})
	require.NoError(t, err)
	require.Equal(t, true, result)
}

func TestHandle_CommandErrorPropagates(t *testing.T) {
	boom := errors.New("storage down")
	b := New(map[domain.CommandKind]CommandHandler{
		domain.KindHealthCheck: func(ctx context.Context, cmd domain.Command) (any, []domain.Event, error) {
			return nil, nil, boom
		},
	}, nil)

	_, err := b.Handle(context.Background(), domain.HealthCheck{})
	require.ErrorIs(t, err, boom)
}

func TestHandle_MissingCommandHandler(t *testing.T) {
	b := New(nil, nil)
	_, err := b.Handle(context.Background(), domain.HealthCheck{})
	require.ErrorIs(t, err, ErrNoHandler)
}

func TestHandle_EventsDrainBeforeReturn(t *testing.T) {
	var delivered []string
	b := New(map[domain.CommandKind]CommandHandler{
		domain.KindPutLocation: func(ctx context.Context, cmd domain.Command) (any, []domain.Event, error) {
			return nil, []domain.Event{
				domain.LocationAdded{UserID: "a"},
				domain.LocationAdded{UserID: "b"},
			}, nil
		},
	}, map[domain.EventKind][]EventHandler{
		domain.KindLocationAdded: {
			func(ctx context.Context, evt domain.Event) ([]domain.Event, error) {
				delivered = append(delivered, evt.(domain.LocationAdded).UserID)
				return nil, nil
			},
		},
	})

	_, err := b.Handle(context.Background(), domain.PutLocation{UserID: "a"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, delivered)
}

func TestHandle_EventHandlerFailureIsIsolated(t *testing.T) {
	var secondRan bool
	b := New(nil, map[domain.EventKind][]EventHandler{
		domain.KindLocationAdded: {
			func(ctx context.Context, evt domain.Event) ([]domain.Event, error) {
				return nil, errors.New("publisher offline")
			},
			func(ctx context.Context, evt domain.Event) ([]domain.Event, error) {
				secondRan = true
				return nil, nil
			},
		},
	})

	_, err := b.Handle(context.Background(), domain.LocationAdded{UserID: "a"})
	require.NoError(t, err)
	require.True(t, secondRan)
}

func TestHandle_EventChainingAppendsToTail(t *testing.T) {
	var order []string
	b := New(map[domain.CommandKind]CommandHandler{
		domain.KindPutLocation: func(ctx context.Context, cmd domain.Command) (any, []domain.Event, error) {
			return nil, []domain.Event{domain.LocationAdded{UserID: "first"}}, nil
		},
	}, map[domain.EventKind][]EventHandler{
		domain.KindLocationAdded: {
			func(ctx context.Context, evt domain.Event) ([]domain.Event, error) {
				e := evt.(domain.LocationAdded)
				order = append(order, e.UserID)
				if e.UserID == "first" {
					return []domain.Event{domain.LocationAdded{UserID: "second"}}, nil
				}
				return nil, nil
			},
		},
	})

	_, err := b.Handle(context.Background(), domain.PutLocation{UserID: "first"})
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, order)
}

func TestHandle_UnknownMessageIsFatal(t *testing.T) {
	b := New(nil, nil)
	_, err := b.Handle(context.Background(), unknownMessage{})
	require.ErrorIs(t, err, ErrUnknownMessage)
}
