package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sugarWatch/internal/model"
)

type fakeSnapshots struct {
	snaps     []model.Snapshot
	err       error
	protocol  string
	sinceSeen time.Time
}

func (f *fakeSnapshots) Latest(_ context.Context, protocol string) (model.Snapshot, bool, error) {
	f.protocol = protocol
	if f.err != nil || len(f.snaps) == 0 {
		return model.Snapshot{}, false, f.err
	}
	return f.snaps[len(f.snaps)-1], true, nil
}

func (f *fakeSnapshots) History(_ context.Context, protocol string, since time.Time) ([]model.Snapshot, error) {
	f.protocol = protocol
	f.sinceSeen = since
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Snapshot
	for _, snap := range f.snaps {
		if !snap.TakenAt.Before(since) {
			out = append(out, snap)
		}
	}
	return out, nil
}

func snapshotServer(reader SnapshotReader) http.Handler {
	return NewServer(":0", Deps{Snapshots: reader, Protocol: "Velodrome"}, nil).Routes()
}

func TestLatestSnapshot(t *testing.T) {
	taken := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	reader := &fakeSnapshots{snaps: []model.Snapshot{
		{Protocol: "Velodrome", TakenAt: taken, TVL: 100},
		{Protocol: "Velodrome", TakenAt: taken.Add(time.Hour), TVL: 200},
	}}

	rec, body := do(t, snapshotServer(reader), "/snapshots/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200.0, body["tvl"])
	assert.Equal(t, "Velodrome", reader.protocol)
}

func TestLatestSnapshotMissing(t *testing.T) {
	rec, _ := do(t, snapshotServer(&fakeSnapshots{}), "/snapshots/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSnapshotHistorySince(t *testing.T) {
	taken := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	reader := &fakeSnapshots{snaps: []model.Snapshot{
		{Protocol: "Velodrome", TakenAt: taken, TVL: 100},
		{Protocol: "Velodrome", TakenAt: taken.Add(time.Hour), TVL: 200},
	}}
	h := snapshotServer(reader)

	for _, since := range []string{"2024-03-01T12:30:00Z", "1709296200"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshots?since="+since, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var snaps []model.Snapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
		require.Len(t, snaps, 1, since)
		assert.Equal(t, 200.0, snaps[0].TVL)
		assert.True(t, reader.sinceSeen.Equal(taken.Add(30*time.Minute)), since)
	}
}

func TestSnapshotHistoryDefaultsToLastDay(t *testing.T) {
	reader := &fakeSnapshots{}
	rec := httptest.NewRecorder()
	snapshotServer(reader).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshots", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.WithinDuration(t, time.Now().Add(-defaultHistoryWindow), reader.sinceSeen, time.Minute)
}

func TestSnapshotHistoryRejectsBadSince(t *testing.T) {
	rec, _ := do(t, snapshotServer(&fakeSnapshots{}), "/snapshots?since=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSnapshotReadFailure(t *testing.T) {
	rec, _ := do(t, snapshotServer(&fakeSnapshots{err: errors.New("redis down")}), "/snapshots/latest")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSnapshotRoutesNeedReader(t *testing.T) {
	rec, _ := do(t, snapshotServer(nil), "/snapshots/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
