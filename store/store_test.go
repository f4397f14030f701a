package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gosterim-cli/model"
)

func setTestDirs(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
	return root
}

func TestCatalogCache_RoundTrip(t *testing.T) {
	setTestDirs(t)

	films, fresh, err := LoadCatalogCache("https://example.com/catalog.json", time.Hour)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if films != nil || fresh {
		t.Fatalf("expected empty cache, got %+v fresh=%v", films, fresh)
	}

	want := []model.CatalogFilm{{
		Id:       1,
		Title:    "Oppenheimer",
		Sessions: []model.CatalogSession{{Id: 2, Time: "15:45", Price: 12}},
	}}
	if err := SaveCatalogCache("https://example.com/catalog.json", want); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	got, fresh, err := LoadCatalogCache("https://example.com/catalog.json", time.Hour)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !fresh {
		t.Fatal("expected fresh cache")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cached catalog differs (-want +got):\n%s", diff)
	}

	if _, fresh, _ := LoadCatalogCache("https://example.com/catalog.json", -time.Second); fresh {
		t.Fatal("expected stale cache with negative ttl")
	}
	if other, _, _ := LoadCatalogCache("https://example.com/other.json", time.Hour); other != nil {
		t.Fatalf("expected caches keyed by source, got %+v", other)
	}
}

func TestCatalogCache_CorruptFile(t *testing.T) {
	root := setTestDirs(t)
	path := filepath.Join(root, appDir, catalogCacheName("src"))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := LoadCatalogCache("src", time.Hour); err == nil {
		t.Fatal("expected error for corrupt cache")
	}
}

func TestRememberTicket_KeepsMostRecentFirst(t *testing.T) {
	setTestDirs(t)

	tickets, err := LoadRecentTickets()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(tickets) != 0 {
		t.Fatalf("expected empty history, got %+v", tickets)
	}

	for _, id := range []string{"aaa111bbb", "ccc222ddd", "aaa111bbb"} {
		if err := RememberTicket(RecentTicket{TransactionID: id, Movie: "Oppenheimer"}); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	tickets, err = LoadRecentTickets()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	var ids []string
	for _, ticket := range tickets {
		ids = append(ids, ticket.TransactionID)
	}
	if diff := cmp.Diff([]string{"aaa111bbb", "ccc222ddd"}, ids); diff != "" {
		t.Fatalf("unexpected history (-want +got):\n%s", diff)
	}
}

func TestRememberTicket_CapsHistory(t *testing.T) {
	setTestDirs(t)

	for i := 0; i < maxRecentTickets+3; i++ {
		id := string(rune('a'+i)) + "00000000"
		if err := RememberTicket(RecentTicket{TransactionID: id}); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	tickets, _ := LoadRecentTickets()
	if len(tickets) != maxRecentTickets {
		t.Fatalf("expected %d tickets, got %d", maxRecentTickets, len(tickets))
	}
}

func TestRememberTicket_InvalidInput(t *testing.T) {
	setTestDirs(t)

	if err := RememberTicket(RecentTicket{}); err == nil {
		t.Fatal("expected error for empty transaction id")
	}
}
