package main

import (
	"context"
	"fmt"

	"sugarWatch/internal/config"
	"sugarWatch/internal/storage"
	"sugarWatch/internal/storage/postgres"
	"sugarWatch/internal/storage/redisstore"
)

// sinks are the opened snapshot stores, in read preference order.
type sinks struct {
	redis    *redisstore.Store
	postgres *postgres.Store
	jsonl    *storage.JsonlStorage
}

func openSinks(ctx context.Context, cfg config.SinkConfig) (*sinks, error) {
	out := &sinks{}
	if cfg.Out != "" {
		out.jsonl = storage.NewJsonlStorage(cfg.Out)
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		out.postgres = store
	}
	if cfg.Redis.Addr != "" {
		store, err := redisstore.NewStore(ctx, redisstore.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			TTL:       cfg.Redis.TTL,
			Retention: cfg.Redis.Retention,
		})
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		out.redis = store
	}
	return out, nil
}

// writer fans a snapshot out to every store.
func (s *sinks) writer() storage.Fanout {
	var fan storage.Fanout
	if s.jsonl != nil {
		fan = append(fan, s.jsonl)
	}
	if s.postgres != nil {
		fan = append(fan, s.postgres)
	}
	if s.redis != nil {
		fan = append(fan, s.redis)
	}
	return fan
}

// reader picks the store history is read from, nil when none is configured.
func (s *sinks) reader() storage.Reader {
	switch {
	case s.redis != nil:
		return s.redis
	case s.postgres != nil:
		return s.postgres
	case s.jsonl != nil:
		return s.jsonl
	default:
		return nil
	}
}

func (s *sinks) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.postgres != nil {
		s.postgres.Close()
	}
}
