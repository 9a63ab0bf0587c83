package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemory_PutAndList(t *testing.T) {
	m := NewMemory()
	m.Put("users", map[string]any{"name": "Alice"}, map[string]any{"name": "Bob"})

	docs, err := m.ListDocuments(context.Background(), "users")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 || docs[1]["name"] != "Bob" {
		t.Errorf("docs = %v", docs)
	}

	empty, err := m.ListDocuments(context.Background(), "missing")
	if err != nil || len(empty) != 0 {
		t.Errorf("missing collection = %v, %v", empty, err)
	}
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemory().ListDocuments(ctx, "users"); err == nil {
		t.Error("expected context error")
	}
}

func TestLoadMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{"users":[{"name":"Alice","regNumber":"R1"}],"CS101_05-03-2025":[{"regNumber":"R1","timestamp":{"seconds":1000}}]}`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := LoadMemory(path)
	if err != nil {
		t.Fatalf("LoadMemory() error = %v", err)
	}
	docs, _ := m.ListDocuments(context.Background(), "CS101_05-03-2025")
	if len(docs) != 1 || docs[0]["regNumber"] != "R1" {
		t.Errorf("docs = %v", docs)
	}
}

func TestMemory_Collections(t *testing.T) {
	m := NewMemory()
	m.Put("users", map[string]any{"name": "Alice"})
	m.Put("CS101_05-03-2025", map[string]any{"regNumber": "R1"})

	got := m.Collections()
	if len(got) != 2 || got[0] != "CS101_05-03-2025" || got[1] != "users" {
		t.Errorf("Collections() = %v", got)
	}
}
