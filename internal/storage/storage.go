package storage

import (
	"context"
	"errors"
	"time"

	"sugarWatch/internal/model"
)

// Storage defines a sink for protocol snapshots.
type Storage interface {
	PutSnapshot(ctx context.Context, snap model.Snapshot) error
}

// Reader reads back stored snapshots of one protocol.
type Reader interface {
	// Latest returns the newest snapshot, or false when none is stored.
	Latest(ctx context.Context, protocol string) (model.Snapshot, bool, error)
	// History returns snapshots taken at or after since, oldest first.
	History(ctx context.Context, protocol string, since time.Time) ([]model.Snapshot, error)
}

// Fanout writes every snapshot to each sink in order. All sinks are
// attempted; their errors are joined.
type Fanout []Storage

func (f Fanout) PutSnapshot(ctx context.Context, snap model.Snapshot) error {
	var errs []error
	for _, sink := range f {
		if err := sink.PutSnapshot(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
