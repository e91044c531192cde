package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	flightsTTL  time.Duration
	identityTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL, identityTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL:  flightsTTL,
		identityTTL: identityTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns nil, nil when the list is not cached.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	found, err := c.get(ctx, flightsKey(), &flights)
	if err != nil || !found {
		return nil, err
	}
	return flights, nil
}

// FlightsVersion returns the current flight list version; zero when unset.
func (c *RedisCache) FlightsVersion(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, flightsVersionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// SetFlights stores the list only while the version is still the one read
// before loading it. A list superseded by an invalidation is dropped.
func (c *RedisCache) SetFlights(ctx context.Context, version int64, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, flightsVersionKey()).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, flightsKey(), payload, c.flightsTTL)
			return nil
		})
		return err
	}, flightsVersionKey())
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// InvalidateFlights bumps the version and drops the cached list atomically.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, flightsVersionKey())
		pipe.Del(ctx, flightsKey())
		return nil
	})
	return err
}

// GetIdentity returns nil, nil on a miss.
func (c *RedisCache) GetIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	var identity domain.Identity
	found, err := c.get(ctx, identityKey(token), &identity)
	if err != nil || !found {
		return nil, err
	}
	identity.Token = token
	return &identity, nil
}

func (c *RedisCache) SetIdentity(ctx context.Context, identity domain.Identity) error {
	return c.set(ctx, identityKey(identity.Token), identity, c.identityTTL)
}

func (c *RedisCache) DeleteIdentity(ctx context.Context, token string) error {
	return c.client.Del(ctx, identityKey(token)).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func flightsVersionKey() string {
	return "cache:flights:version"
}

func identityKey(token string) string {
	return fmt.Sprintf("cache:identity:%s", token)
}
