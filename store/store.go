package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gosterim-cli/model"
)

const (
	appDir           = "gosterim-cli"
	maxRecentTickets = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source,omitempty"`
	Data      T         `json:"data"`
}

// RecentTicket is the summary of an issued ticket kept in the history file.
type RecentTicket struct {
	TransactionID string    `json:"transaction_id"`
	Movie         string    `json:"movie"`
	Session       string    `json:"session"`
	Seats         []string  `json:"seats"`
	Total         string    `json:"total"`
	CardSuffix    string    `json:"card_suffix"`
	IssuedAt      time.Time `json:"issued_at"`
}

type ticketHistory struct {
	Tickets []RecentTicket `json:"tickets"`
}

// LoadCatalogCache returns the cached catalog for source and whether it is
// younger than ttl. A missing cache is not an error.
func LoadCatalogCache(source string, ttl time.Duration) ([]model.CatalogFilm, bool, error) {
	path, err := cachePath(catalogCacheName(source))
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.CatalogFilm](path)
	if err != nil {
		return nil, false, err
	}
	if cache.UpdatedAt.IsZero() {
		return nil, false, nil
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= ttl, nil
}

func SaveCatalogCache(source string, films []model.CatalogFilm) error {
	path, err := cachePath(catalogCacheName(source))
	if err != nil {
		return err
	}
	return saveCache(path, source, films)
}

func catalogCacheName(source string) string {
	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.TrimSpace(source)))
	return fmt.Sprintf("catalog_%s.json", key.String())
}

// TicketDir is the default directory for exported ticket images.
func TicketDir() (string, error) {
	return cachePath("tickets")
}

func LoadRecentTickets() ([]RecentTicket, error) {
	path, err := configPath("tickets.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history ticketHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid ticket history format")
	}
	return history.Tickets, nil
}

// RememberTicket puts ticket at the head of the history, dropping any older
// entry with the same transaction id.
func RememberTicket(ticket RecentTicket) error {
	if strings.TrimSpace(ticket.TransactionID) == "" {
		return errors.New("transaction id is required")
	}
	history, _ := LoadRecentTickets()
	next := []RecentTicket{ticket}

	for _, existing := range history {
		if existing.TransactionID == ticket.TransactionID {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentTickets {
			break
		}
	}

	return saveRecentTickets(next)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, source string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Source:    source,
		Data:      data,
	}
	payload, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func saveRecentTickets(tickets []RecentTicket) error {
	path, err := configPath("tickets.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	history := ticketHistory{Tickets: tickets}
	payload, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}
