package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bvi/citizenship_backend/internal/citizenship"
)

const redisKeyPrefix = "application:"

// maxTxRetries bounds the optimistic-lock retry loop when WATCH detects a
// concurrent write to the same applicant key.
const maxTxRetries = 5

// Redis backs the store with a go-redis client. Records are JSON per
// applicant key; atomicity comes from WATCH/MULTI optimistic transactions.
type Redis struct {
	client *redis.Client
}

// ConnectRedis parses a redis URL, dials, and validates the connection.
func ConnectRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Redis{client: client}, nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) Put(ctx context.Context, app citizenship.Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+app.ApplicantID, data, 0).Err()
}

func (s *Redis) Get(ctx context.Context, applicantID string) (citizenship.Application, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+applicantID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return citizenship.Application{}, citizenship.ErrNotFound
		}
		return citizenship.Application{}, err
	}
	var app citizenship.Application
	if err := json.Unmarshal(data, &app); err != nil {
		return citizenship.Application{}, err
	}
	return app, nil
}

func (s *Redis) ListByStatus(ctx context.Context, status citizenship.Status) ([]citizenship.Application, error) {
	var out []citizenship.Application
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var app citizenship.Application
		if err := json.Unmarshal(data, &app); err != nil {
			return nil, err
		}
		if app.Status == status {
			out = append(out, app)
		}
	}
	return out, iter.Err()
}

func (s *Redis) CreateIfNoPending(ctx context.Context, app citizenship.Application) error {
	key := redisKeyPrefix + app.ApplicantID
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == nil {
			var existing citizenship.Application
			if err := json.Unmarshal(data, &existing); err != nil {
				return err
			}
			if existing.Status == citizenship.StatusPending {
				return citizenship.ErrDuplicatePending
			}
		} else if !errors.Is(err, redis.Nil) {
			return err
		}

		encoded, err := json.Marshal(app)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	})
}

func (s *Redis) Mutate(ctx context.Context, applicantID string, fn func(citizenship.Application) (citizenship.Application, error)) (citizenship.Application, error) {
	key := redisKeyPrefix + applicantID
	var updated citizenship.Application
	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return citizenship.ErrNotFound
			}
			return err
		}
		var app citizenship.Application
		if err := json.Unmarshal(data, &app); err != nil {
			return err
		}
		updated, err = fn(app)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	})
	if err != nil {
		return citizenship.Application{}, err
	}
	return updated, nil
}

// watch runs fn inside a WATCH transaction on key, retrying when a
// concurrent writer invalidates it. A loser of the race re-reads the current
// record, so a second review observes the terminal state.
func (s *Redis) watch(ctx context.Context, key string, fn func(*redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("transaction on %s kept failing after %d retries", key, maxTxRetries)
}
