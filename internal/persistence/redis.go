package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
)

// Redis wraps the go-redis client as a read cache for user documents.
// Outages degrade silently to the store; a nil *Redis disables caching
// altogether.
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, ttl: cfg.CacheTTL(), logger: logger}
}

func userKey(id string) string {
	return "user:" + id
}

// GetUser returns a cached user, or (nil, false) on miss or any cache
// failure. Documents are cached in BSON so every field survives the
// round trip, unlike the API's JSON shape.
func (r *Redis) GetUser(ctx context.Context, id string) (*domain.User, bool) {
	if r == nil || r.Client == nil {
		return nil, false
	}
	raw, err := r.Client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Debug("user cache read failed", zap.String("user_id", id), zap.Error(err))
		}
		return nil, false
	}
	var user domain.User
	if err := bson.Unmarshal(raw, &user); err != nil {
		r.logger.Warn("user cache entry corrupt", zap.String("user_id", id), zap.Error(err))
		return nil, false
	}
	return &user, true
}

// SetUser caches a user document for the configured TTL.
func (r *Redis) SetUser(ctx context.Context, user *domain.User) {
	if r == nil || r.Client == nil || user == nil {
		return
	}
	raw, err := bson.Marshal(user)
	if err != nil {
		r.logger.Warn("user cache encode failed", zap.Error(err))
		return
	}
	if err := r.Client.Set(ctx, userKey(user.ID.Hex()), raw, r.ttl).Err(); err != nil {
		r.logger.Debug("user cache write failed", zap.Error(err))
	}
}

// InvalidateUser drops the cached entry. Every mutation path calls
// this before returning.
func (r *Redis) InvalidateUser(ctx context.Context, id string) {
	if r == nil || r.Client == nil {
		return
	}
	if err := r.Client.Del(ctx, userKey(id)).Err(); err != nil {
		r.logger.Debug("user cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}
