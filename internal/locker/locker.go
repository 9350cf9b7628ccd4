/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package locker serializes station advances. The default is an in-process
// keyed mutex; multi-instance deployments can swap in the Redis lease.
package locker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KeyedMutex serializes callers per station id within a single process.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an in-process locker.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Lock blocks until the per-station mutex is held and returns the release
// function. Entries are reference counted so the map does not grow with the
// number of stations ever seen.
func (k *KeyedMutex) Lock(_ context.Context, stationID string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[stationID]
	if !ok {
		e = &entry{}
		k.locks[stationID] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, stationID)
		}
		k.mu.Unlock()
	}, nil
}

const (
	defaultLeaseDuration = 10 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
	leaseKeyPrefix       = "skald:station:advance:"
)

// RedisLease serializes advances across instances using a per-station Redis
// lease. The lease expires on its own if a holder dies mid-advance.
type RedisLease struct {
	client        *redis.Client
	logger        zerolog.Logger
	instanceID    string
	leaseDuration time.Duration
	retryInterval time.Duration
}

// RedisLeaseConfig configures the Redis advance lock.
type RedisLeaseConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LeaseDuration time.Duration
	RetryInterval time.Duration
}

// NewRedisLease connects to Redis and returns the lease locker.
func NewRedisLease(cfg RedisLeaseConfig, logger zerolog.Logger) (*RedisLease, error) {
	if cfg.LeaseDuration == 0 {
		cfg.LeaseDuration = defaultLeaseDuration
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = defaultRetryInterval
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	instanceID := uuid.New().String()
	logger.Info().
		Str("redis_addr", cfg.RedisAddr).
		Str("instance_id", instanceID).
		Msg("connected to Redis for station advance locking")

	return &RedisLease{
		client:        client,
		logger:        logger.With().Str("component", "advance_lock").Logger(),
		instanceID:    instanceID,
		leaseDuration: cfg.LeaseDuration,
		retryInterval: cfg.RetryInterval,
	}, nil
}

// Lock acquires the per-station lease, retrying until the context expires.
func (l *RedisLease) Lock(ctx context.Context, stationID string) (func(), error) {
	key := leaseKeyPrefix + stationID
	token := l.instanceID + ":" + uuid.New().String()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.leaseDuration).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire advance lease: %w", err)
		}
		if acquired {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}

	return func() {
		// Only delete if we still own it
		script := `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			else
				return 0
			end
		`
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.client.Eval(ctx, script, []string{key}, token).Err(); err != nil {
			l.logger.Error().Err(err).Str("station_id", stationID).Msg("failed to release advance lease")
		}
	}, nil
}

// Close closes the Redis connection.
func (l *RedisLease) Close() error {
	return l.client.Close()
}
