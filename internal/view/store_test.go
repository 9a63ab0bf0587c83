package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"attendview/internal/store"
)

// fakeBackend mimics the compare-and-set semantics of the Redis script.
type fakeBackend struct {
	mu   sync.Mutex
	seq  map[string]int64
	cur  map[string]int64
	data map[string][]byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{seq: map[string]int64{}, cur: map[string]int64{}, data: map[string][]byte{}}
}

func (f *fakeBackend) NextSeq(_ context.Context, viewer string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq[viewer]++
	return f.seq[viewer], nil
}

func (f *fakeBackend) ApplySnapshot(_ context.Context, viewer string, seq int64, payload []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seq < f.seq[viewer] {
		return false, nil
	}
	if cur, ok := f.cur[viewer]; ok && cur > seq {
		return false, nil
	}
	f.cur[viewer] = seq
	f.data[viewer] = payload
	return true, nil
}

func (f *fakeBackend) Snapshot(_ context.Context, viewer string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.data[viewer]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

var _ SnapshotBackend = (*store.Redis)(nil)

func TestStores_SequenceGuard(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(newFakeBackend()),
	}
	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := st.Last(ctx, "v"); !errors.Is(err, ErrNoTable) {
				t.Fatalf("Last() on empty store error = %v", err)
			}
			s1, _ := st.NextSeq(ctx, "v")
			s2, _ := st.NextSeq(ctx, "v")
			if s2 <= s1 {
				t.Fatalf("sequence not increasing: %d then %d", s1, s2)
			}

			ok, err := st.Apply(ctx, "v", Snapshot{Seq: s2, Table: "new"})
			if err != nil || !ok {
				t.Fatalf("Apply(newer) = %v, %v", ok, err)
			}
			ok, err = st.Apply(ctx, "v", Snapshot{Seq: s1, Table: "old"})
			if err != nil || ok {
				t.Fatalf("Apply(older) = %v, %v, want rejected", ok, err)
			}
			snap, err := st.Last(ctx, "v")
			if err != nil || snap.Table != "new" {
				t.Errorf("Last() = %+v, %v", snap, err)
			}
		})
	}
}

func TestStores_RejectOlderThanAllocated(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(newFakeBackend()),
	}
	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s1, _ := st.NextSeq(ctx, "v")
			// s2 is handed out but never applied, as for an empty or failed render.
			if _, err := st.NextSeq(ctx, "v"); err != nil {
				t.Fatalf("NextSeq() error = %v", err)
			}
			ok, err := st.Apply(ctx, "v", Snapshot{Seq: s1, Table: "old"})
			if err != nil || ok {
				t.Fatalf("Apply(older) = %v, %v, want rejected", ok, err)
			}
			if _, err := st.Last(ctx, "v"); !errors.Is(err, ErrNoTable) {
				t.Errorf("Last() error = %v, want ErrNoTable", err)
			}
		})
	}
}
