package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var first, second []Event
	d.Subscribe(EventUserCreated, func(_ context.Context, e Event) error {
		first = append(first, e)
		return nil
	})
	d.Subscribe(EventUserCreated, func(_ context.Context, e Event) error {
		second = append(second, e)
		return nil
	})
	d.Subscribe(EventUserDeleted, func(_ context.Context, e Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "evt-1", Type: EventUserCreated, UserID: "u1"})
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "u1", first[0].UserID)
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var delivered bool
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		return errors.New("handler blew up")
	})
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserLoggedIn})
	assert.NoError(t, err)
	assert.True(t, delivered)
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventUserUpdated}))
}
