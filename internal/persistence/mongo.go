package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

// ErrNotReady is returned for queries issued before the store
// connection is established. Callers fail fast; nothing is queued.
var ErrNotReady = errors.New("document store not ready")

// State tracks the connection lifecycle.
type State string

const (
	StateConnecting State = "connecting"
	StateReady      State = "ready"
	StateFailed     State = "failed"
	StateClosed     State = "closed"
)

// UsersCollection is the single collection this core owns.
const UsersCollection = "users"

// Mongo owns the process-wide document-store connection. Construction
// returns immediately and dials in the background: up to
// cfg.ConnectAttempts tries with a fixed delay between them, no
// backoff. Exhausting the attempts is terminal; there is no automatic
// reconnection after a failed startup — a supervising process must
// restart.
type Mongo struct {
	cfg    config.MongoConfig
	logger *zap.Logger

	mu      sync.RWMutex
	state   State
	client  *mongo.Client
	db      *mongo.Database
	lastErr error

	// closed once the dial loop reaches ready or failed
	done chan struct{}
}

// NewMongo starts the background dial and returns without blocking.
func NewMongo(cfg config.MongoConfig, logger *zap.Logger) *Mongo {
	m := &Mongo{
		cfg:    cfg,
		logger: logger,
		state:  StateConnecting,
		done:   make(chan struct{}),
	}
	go m.connect()
	return m
}

func (m *Mongo) connect() {
	defer close(m.done)

	attempts := m.cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 5
	}
	delay := m.cfg.ConnectRetryDelay()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := m.dial(); err != nil {
			lastErr = err
			m.logger.Warn("document store dial failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err))
			if attempt < attempts {
				time.Sleep(delay)
			}
			continue
		}
		m.logger.Info("connected to document store", zap.String("database", m.cfg.Database))
		return
	}

	m.mu.Lock()
	m.state = StateFailed
	m.lastErr = errorutil.NewDatabase(
		fmt.Sprintf("document store unreachable after %d attempts", attempts), lastErr)
	m.mu.Unlock()
}

func (m *Mongo) dial() error {
	opts := options.Client().
		ApplyURI(m.cfg.URI).
		SetServerSelectionTimeout(m.cfg.SelectionTimeout())

	client, err := mongo.Connect(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.SelectionTimeout())
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}

	db := client.Database(m.cfg.Database)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}

	m.mu.Lock()
	m.client = client
	m.db = db
	m.state = StateReady
	m.mu.Unlock()
	return nil
}

// ensureIndexes creates the unique email index. The index spans
// deleted users too: an email is never released for reuse, and the
// store-level constraint is the true guard against concurrent creates
// racing the in-service uniqueness check.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Collection hands out a collection handle, failing fast with
// ErrNotReady while the dial loop is still running or has given up.
func (m *Mongo) Collection(name string) (*mongo.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateReady {
		return nil, ErrNotReady
	}
	return m.db.Collection(name), nil
}

// State reports the current lifecycle state.
func (m *Mongo) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// WaitReady blocks until the dial loop reaches a terminal state or the
// context expires. It returns nil when the store is ready and the
// terminal failure otherwise.
func (m *Mongo) WaitReady(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == StateReady {
		return nil
	}
	return m.lastErr
}

// Close tears down the connection.
func (m *Mongo) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		if err := m.client.Disconnect(ctx); err != nil {
			m.logger.Warn("document store disconnect failed", zap.Error(err))
		}
		m.client = nil
	}
	m.state = StateClosed
}
