package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sugarWatch/internal/model"
)

// JsonlStorage appends snapshots to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutSnapshot appends snap as one JSON line.
func (s *JsonlStorage) PutSnapshot(_ context.Context, snap model.Snapshot) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	line, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// Latest returns the newest snapshot of protocol in the file.
func (s *JsonlStorage) Latest(ctx context.Context, protocol string) (model.Snapshot, bool, error) {
	snaps, err := s.History(ctx, protocol, time.Time{})
	if err != nil || len(snaps) == 0 {
		return model.Snapshot{}, false, err
	}
	latest := snaps[0]
	for _, snap := range snaps[1:] {
		if snap.TakenAt.After(latest.TakenAt) {
			latest = snap
		}
	}
	return latest, true, nil
}

// History returns the snapshots of protocol taken at or after since, in file order.
// A missing file holds no snapshots.
func (s *JsonlStorage) History(_ context.Context, protocol string, since time.Time) ([]model.Snapshot, error) {
	s.mu.Lock()
	all, err := ReadSnapshots(s.path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]model.Snapshot, 0, len(all))
	for _, snap := range all {
		if snap.Protocol == protocol && !snap.TakenAt.Before(since) {
			out = append(out, snap)
		}
	}
	return out, nil
}

// ReadSnapshots loads every snapshot stored at path, oldest first.
func ReadSnapshots(path string) ([]model.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshots: %w", err)
	}
	defer file.Close()

	var out []model.Snapshot
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var snap model.Snapshot
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}
	return out, nil
}
