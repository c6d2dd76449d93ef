// Package denylist implements the access-token denylist on Redis.
// Entries carry a TTL equal to the token's remaining lifetime, so the list
// stays bounded by the access token TTL and needs no cleanup job.
package denylist

import (
	"context"
	"log/slog"
	"time"

	"carpool/config"
	"carpool/internal/domain/lifecycle"
	"carpool/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const denyKeyPrefix = "carpool:denylist:access:"

// redisDenylist implements the TokenDenylist interface backed by Redis.
type redisDenylist struct {
	client *redis.Client
	logger *slog.Logger
}

// noopDenylist is used when Redis is not configured. Access tokens then remain
// valid until natural expiry, which the short access TTL mitigates.
type noopDenylist struct {
	logger *slog.Logger
}

func (d *noopDenylist) Deny(_ context.Context, tokenHash string, _ time.Duration) error {
	d.logger.Debug("[NoopDenylist] Denylist disabled, token stays valid until expiry",
		slog.String("token_hash", tokenHash),
	)

	return nil
}

func (d *noopDenylist) IsDenied(context.Context, string) (bool, error) {
	return false, nil
}

func (d *noopDenylist) Close() error {
	return nil
}

// Params holds dependencies for the denylist, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates a TokenDenylist based on configuration.
func New(params Params) (service.TokenDenylist, error) {
	cfg := params.Config.Redis
	if cfg == nil || cfg.Addr == "" {
		params.Logger.Info("Redis not configured, using no-op token denylist")

		return &noopDenylist{logger: params.Logger}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	list := &redisDenylist{
		client: client,
		logger: params.Logger,
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping Redis")
			}

			return nil
		},
		OnStop: func(context.Context) error {
			return list.Close()
		},
	})

	return list, nil
}

// Deny marks a token hash as revoked for the token's remaining lifetime.
func (d *redisDenylist) Deny(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to revoke.
		return nil
	}

	if err := d.client.Set(ctx, denyKeyPrefix+tokenHash, "1", ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to write denylist entry")
	}

	return nil
}

// IsDenied reports whether a token hash has been revoked.
func (d *redisDenylist) IsDenied(ctx context.Context, tokenHash string) (bool, error) {
	count, err := d.client.Exists(ctx, denyKeyPrefix+tokenHash).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to read denylist entry")
	}

	return count > 0, nil
}

// Close releases the Redis client.
func (d *redisDenylist) Close() error {
	return errors.WithStack(d.client.Close())
}
