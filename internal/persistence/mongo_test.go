package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

// nothing listens on this port, so every dial attempt fails quickly
func unreachableConfig(attempts int) config.MongoConfig {
	return config.MongoConfig{
		URI:                      "mongodb://127.0.0.1:1",
		Database:                 "identity_test",
		ConnectAttempts:          attempts,
		ConnectRetryDelaySeconds: 0,
		SelectionTimeoutSeconds:  1,
	}
}

func TestNewMongoDoesNotBlock(t *testing.T) {
	start := time.Now()
	m := NewMongo(unreachableConfig(2), zap.NewNop())
	// construction must return before the dial loop finishes
	assert.Less(t, time.Since(start), time.Second)

	state := m.State()
	assert.NotEqual(t, StateReady, state)
	assert.NotEqual(t, StateClosed, state)
}

func TestQueriesFailFastBeforeReady(t *testing.T) {
	m := NewMongo(unreachableConfig(2), zap.NewNop())

	// immediately, while the dial loop is still running
	coll, err := m.Collection(UsersCollection)
	assert.Nil(t, coll)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestRetryExhaustionIsTerminal(t *testing.T) {
	m := NewMongo(unreachableConfig(2), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := m.WaitReady(ctx)
	require.Error(t, err)
	assert.True(t, errorutil.IsDatabase(err))
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, StateFailed, m.State())

	// still failing fast after exhaustion; no background reconnection
	_, err = m.Collection(UsersCollection)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestWaitReadyHonorsContext(t *testing.T) {
	m := NewMongo(unreachableConfig(5), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := m.WaitReady(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCloseMarksClosed(t *testing.T) {
	m := NewMongo(unreachableConfig(1), zap.NewNop())
	_ = m.WaitReady(context.Background())

	m.Close(context.Background())
	assert.Equal(t, StateClosed, m.State())

	_, err := m.Collection(UsersCollection)
	assert.ErrorIs(t, err, ErrNotReady)
}
