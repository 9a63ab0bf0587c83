package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestPocketBase_ListDocumentsWalksPages(t *testing.T) {
	pages := map[int][]map[string]any{
		1: {{"name": "Alice", "regNumber": "R1"}, {"name": "Bob", "regNumber": "R2"}},
		2: {{"name": "Carol", "regNumber": "R3"}},
	}
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/collections/users/records" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		json.NewEncoder(w).Encode(map[string]any{
			"page":       page,
			"totalPages": 2,
			"items":      pages[page],
		})
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL+"/", "token-123")
	docs, err := pb.ListDocuments(context.Background(), "users")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len = %d, want 3", len(docs))
	}
	if docs[2]["name"] != "Carol" {
		t.Errorf("order not kept: %v", docs)
	}
	if gotAuth != "token-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestPocketBase_ListDocumentsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"forbidden"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	docs, err := NewPocketBase(srv.URL, "").ListDocuments(context.Background(), "users")
	if err == nil {
		t.Fatal("expected error")
	}
	if docs != nil {
		t.Errorf("docs = %v, want nil", docs)
	}
}

func TestPocketBase_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if !NewPocketBase(srv.URL, "").Healthy(context.Background()) {
		t.Error("Healthy() = false, want true")
	}
}
