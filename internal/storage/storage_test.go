package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sugarWatch/internal/model"
)

func sampleSnapshot(tvl float64) model.Snapshot {
	return model.Snapshot{
		ID:        uuid.New(),
		TakenAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Protocol:  "Velodrome",
		PoolCount: 1,
		TVL:       tvl,
		Pools: []model.PoolSnapshot{
			{Address: "0x7F5c764cBc14f9669B88837ca1490cCa17c31607", Symbol: "vAMM-WETH/USDC", TVL: tvl},
		},
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snapshots.jsonl")
	s := NewJsonlStorage(path)

	first := sampleSnapshot(100)
	second := sampleSnapshot(200)
	require.NoError(t, s.PutSnapshot(context.Background(), first))
	require.NoError(t, s.PutSnapshot(context.Background(), second))

	got, err := ReadSnapshots(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, 200.0, got[1].TVL)
	assert.Equal(t, "vAMM-WETH/USDC", got[1].Pools[0].Symbol)
	assert.True(t, first.TakenAt.Equal(got[0].TakenAt))
}

type recordingSink struct {
	got []model.Snapshot
	err error
}

func (r *recordingSink) PutSnapshot(_ context.Context, snap model.Snapshot) error {
	r.got = append(r.got, snap)
	return r.err
}

func TestFanoutWritesEverySink(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingSink{err: boom}
	healthy := &recordingSink{}

	err := Fanout{failing, healthy}.PutSnapshot(context.Background(), sampleSnapshot(1))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, failing.got, 1)
	assert.Len(t, healthy.got, 1)
}

func TestEmptyFanout(t *testing.T) {
	assert.NoError(t, Fanout{}.PutSnapshot(context.Background(), sampleSnapshot(1)))
}

func TestJsonlStorageReadsBack(t *testing.T) {
	s := NewJsonlStorage(filepath.Join(t.TempDir(), "snapshots.jsonl"))
	ctx := context.Background()

	_, ok, err := s.Latest(ctx, "Velodrome")
	require.NoError(t, err)
	assert.False(t, ok)

	older := sampleSnapshot(100)
	newer := sampleSnapshot(200)
	newer.TakenAt = older.TakenAt.Add(time.Hour)
	other := sampleSnapshot(300)
	other.Protocol = "Aerodrome"
	for _, snap := range []model.Snapshot{older, newer, other} {
		require.NoError(t, s.PutSnapshot(ctx, snap))
	}

	latest, ok, err := s.Latest(ctx, "Velodrome")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, newer.ID, latest.ID)

	history, err := s.History(ctx, "Velodrome", older.TakenAt.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, newer.ID, history[0].ID)

	all, err := s.History(ctx, "Velodrome", time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
