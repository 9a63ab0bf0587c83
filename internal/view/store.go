package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"attendview/internal/attendance"
	"attendview/internal/store"
)

// Snapshot is the last table a viewer rendered, kept for print, download
// and export.
type Snapshot struct {
	Seq        int64               `json:"seq"`
	Session    string              `json:"session"`
	Date       string              `json:"date"`
	Filter     string              `json:"filter"`
	Table      string              `json:"table"`
	Records    []attendance.Report `json:"records"`
	RenderedAt time.Time           `json:"rendered_at"`
}

// Store holds one snapshot per viewer. Apply must be atomic: a snapshot
// older than the stored one is rejected.
type Store interface {
	NextSeq(ctx context.Context, viewer string) (int64, error)
	Apply(ctx context.Context, viewer string, snap Snapshot) (bool, error)
	Last(ctx context.Context, viewer string) (Snapshot, error)
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	seq   map[string]int64
	snaps map[string]Snapshot
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seq: make(map[string]int64), snaps: make(map[string]Snapshot)}
}

func (m *MemoryStore) NextSeq(_ context.Context, viewer string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[viewer]++
	return m.seq[viewer], nil
}

func (m *MemoryStore) Apply(_ context.Context, viewer string, snap Snapshot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.Seq < m.seq[viewer] {
		return false, nil
	}
	if cur, ok := m.snaps[viewer]; ok && cur.Seq > snap.Seq {
		return false, nil
	}
	m.snaps[viewer] = snap
	return true, nil
}

func (m *MemoryStore) Last(_ context.Context, viewer string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[viewer]
	if !ok {
		return Snapshot{}, ErrNoTable
	}
	return snap, nil
}

// SnapshotBackend is the raw storage RedisStore builds on; *store.Redis
// implements it.
type SnapshotBackend interface {
	NextSeq(ctx context.Context, viewer string) (int64, error)
	ApplySnapshot(ctx context.Context, viewer string, seq int64, payload []byte) (bool, error)
	Snapshot(ctx context.Context, viewer string) ([]byte, error)
}

// RedisStore keeps snapshots as JSON in Redis so that several API
// instances share view state.
type RedisStore struct {
	backend SnapshotBackend
}

// NewRedisStore wraps backend.
func NewRedisStore(backend SnapshotBackend) *RedisStore {
	return &RedisStore{backend: backend}
}

func (r *RedisStore) NextSeq(ctx context.Context, viewer string) (int64, error) {
	return r.backend.NextSeq(ctx, viewer)
}

func (r *RedisStore) Apply(ctx context.Context, viewer string, snap Snapshot) (bool, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}
	return r.backend.ApplySnapshot(ctx, viewer, snap.Seq, payload)
}

func (r *RedisStore) Last(ctx context.Context, viewer string) (Snapshot, error) {
	payload, err := r.backend.Snapshot(ctx, viewer)
	if errors.Is(err, store.ErrNotFound) {
		return Snapshot{}, ErrNoTable
	}
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
