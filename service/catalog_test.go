package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func setTestCacheDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
}

const catalogJSON = `[
  {"id": 1, "title": "Oppenheimer", "posterUrl": "https://img/o.jpg", "poster": "/placeholder.svg",
   "genre": "Biography • Drama", "rating": "R",
   "sessions": [{"id": 1, "time": "12:30", "price": 12}, {"id": "2", "time": "15:45", "price": 12.5}]},
  {"id": "dune-2", "title": "Dune: Part Two", "sessions": [{"id": 3, "time": "12:00", "price": 12}]}
]`

func TestFilms_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	films, err := newTestClient(server).Films(context.Background(), server.URL+"/catalog.json")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(films) != 2 {
		t.Fatalf("expected 2 films, got %d", len(films))
	}
	if films[0].Sessions[1].Id != 2 || films[0].Sessions[1].Price != 12.5 {
		t.Fatalf("unexpected session: %+v", films[0].Sessions[1])
	}
	if films[1].Id <= 0 {
		t.Fatalf("expected string id to be hashed to a positive number, got %d", films[1].Id)
	}
}

func TestFilms_EmptyCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	if _, err := newTestClient(server).Films(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestStaticCatalog(t *testing.T) {
	films, err := StaticCatalog{}.Films(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(films) != 5 {
		t.Fatalf("expected 5 films, got %d", len(films))
	}
	if films[3].Title != "Inception" || films[3].PosterUrl != "" {
		t.Fatalf("expected Inception without primary poster, got %+v", films[3])
	}

	films[0].Sessions[0].Time = "00:00"
	again, _ := StaticCatalog{}.Films(context.Background())
	if again[0].Sessions[0].Time != "12:30" {
		t.Fatal("expected built-in catalog to be isolated from callers")
	}
}

func TestNewCatalogProvider_EmptySourceIsStatic(t *testing.T) {
	if _, ok := NewCatalogProvider("  ", time.Minute, nil, nil).(StaticCatalog); !ok {
		t.Fatal("expected static catalog for empty source")
	}
}

func TestRemoteCatalog_UsesFreshCache(t *testing.T) {
	setTestCacheDir(t)

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	provider := NewCatalogProvider(server.URL, time.Hour, newTestClient(server), nil)
	for i := 0; i < 2; i++ {
		films, err := provider.Films(context.Background())
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(films) != 2 {
			t.Fatalf("expected 2 films, got %d", len(films))
		}
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single fetch, got %d", hits)
	}
}

func TestRemoteCatalog_ServesStaleCacheOnFailure(t *testing.T) {
	setTestCacheDir(t)

	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	client := newTestClient(server)
	client.maxAttempts = 1
	provider := NewCatalogProvider(server.URL, time.Nanosecond, client, nil)
	if _, err := provider.Films(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	failing.Store(true)
	time.Sleep(time.Millisecond)
	films, err := provider.Films(context.Background())
	if err != nil {
		t.Fatalf("expected stale cache, got %v", err)
	}
	if len(films) != 2 {
		t.Fatalf("expected 2 cached films, got %d", len(films))
	}
}

func TestRemoteCatalog_FailsWithoutCache(t *testing.T) {
	setTestCacheDir(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewCatalogProvider(server.URL, time.Hour, newTestClient(server), nil).Films(context.Background())
	if !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestProbePoster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server)
	ctx := context.Background()
	if err := client.ProbePoster(ctx, server.URL+"/ok.jpg"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := client.ProbePoster(ctx, server.URL+"/missing.jpg"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := client.ProbePoster(ctx, "/placeholder.svg?height=600&width=400"); err != nil {
		t.Fatalf("expected bundled asset to resolve, got %v", err)
	}
	if err := client.ProbePoster(ctx, "ftp://example.com/p.jpg"); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
	if err := client.ProbePoster(ctx, " "); err == nil {
		t.Fatal("expected error for empty reference")
	}
}
