// Package redisstore publishes snapshots to Redis for other consumers.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sugarWatch/internal/model"
	"sugarWatch/internal/storage"
)

// Config locates the Redis server.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds the lifetime of the latest snapshot key.
	TTL time.Duration
	// Retention trims history entries older than this; zero keeps everything.
	Retention time.Duration
}

var (
	_ storage.Storage = (*Store)(nil)
	_ storage.Reader  = (*Store)(nil)
)

// Store keeps the latest snapshot under a TTL key and a time-scored history.
type Store struct {
	client    *redis.Client
	ttl       time.Duration
	retention time.Duration
}

func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{
		client:    client,
		ttl:       cfg.TTL,
		retention: cfg.Retention,
	}, nil
}

func latestKey(protocol string) string {
	return fmt.Sprintf("sugar:latest:%s", protocol)
}

func historyKey(protocol string) string {
	return fmt.Sprintf("sugar:history:%s", protocol)
}

// PutSnapshot replaces the latest snapshot and appends it to the history.
func (s *Store) PutSnapshot(ctx context.Context, snap model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, latestKey(snap.Protocol), data, s.ttl)
	pipe.ZAdd(ctx, historyKey(snap.Protocol), redis.Z{
		Score:  float64(snap.TakenAt.Unix()),
		Member: data,
	})
	if s.retention > 0 {
		cutoff := snap.TakenAt.Add(-s.retention).Unix()
		pipe.ZRemRangeByScore(ctx, historyKey(snap.Protocol), "-inf", "("+strconv.FormatInt(cutoff, 10))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Latest returns the latest snapshot, or false when none is stored.
func (s *Store) Latest(ctx context.Context, protocol string) (model.Snapshot, bool, error) {
	val, err := s.client.Get(ctx, latestKey(protocol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Snapshot{}, false, nil
		}
		return model.Snapshot{}, false, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// History returns snapshots taken at or after since, oldest first.
func (s *Store) History(ctx context.Context, protocol string, since time.Time) ([]model.Snapshot, error) {
	results, err := s.client.ZRangeByScore(ctx, historyKey(protocol), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.Unix(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	return decodeHistory(results)
}

func decodeHistory(members []string) ([]model.Snapshot, error) {
	out := make([]model.Snapshot, 0, len(members))
	for i, member := range members {
		var snap model.Snapshot
		if err := json.Unmarshal([]byte(member), &snap); err != nil {
			return nil, fmt.Errorf("decode history entry %d: %w", i, err)
		}
		out = append(out, snap)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
