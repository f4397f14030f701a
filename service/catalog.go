package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gosterim-cli/model"
	"gosterim-cli/store"
)

// CatalogProvider supplies the raw film list the booking selector normalizes.
type CatalogProvider interface {
	Films(ctx context.Context) ([]model.CatalogFilm, error)
}

// NewCatalogProvider returns the built-in catalog when source is empty and a
// cached remote catalog otherwise.
func NewCatalogProvider(source string, ttl time.Duration, client *Client, logger *slog.Logger) CatalogProvider {
	source = strings.TrimSpace(source)
	if source == "" {
		return StaticCatalog{}
	}
	if client == nil {
		client = NewClient(nil, logger)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RemoteCatalog{client: client, source: source, ttl: ttl, logger: logger}
}

// Films fetches the catalog array served at endpoint.
func (c *Client) Films(ctx context.Context, endpoint string) ([]model.CatalogFilm, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("catalog url is required")
	}
	var films []model.CatalogFilm
	if err := c.getJSON(ctx, endpoint, &films); err != nil {
		return nil, err
	}
	if len(films) == 0 {
		return nil, errors.New("catalog is empty")
	}
	return films, nil
}

// RemoteCatalog reads a catalog endpoint through the on-disk cache. A stale
// cache is still served when the endpoint cannot be reached.
type RemoteCatalog struct {
	client *Client
	source string
	ttl    time.Duration
	logger *slog.Logger
}

func (r *RemoteCatalog) Films(ctx context.Context) ([]model.CatalogFilm, error) {
	cached, fresh, err := store.LoadCatalogCache(r.source, r.ttl)
	if err != nil {
		r.logger.Warn("read catalog cache", "source", r.source, "err", err)
	}
	if fresh && len(cached) > 0 {
		r.logger.Debug("catalog cache hit", "source", r.source, "films", len(cached))
		return cached, nil
	}

	films, err := r.client.Films(ctx, r.source)
	if err != nil {
		if len(cached) > 0 && !errors.Is(err, context.Canceled) {
			r.logger.Warn("catalog fetch failed, serving stale cache", "source", r.source, "err", err)
			return cached, nil
		}
		return nil, err
	}
	r.logger.Info("catalog fetched", "source", r.source, "films", len(films))
	if err := store.SaveCatalogCache(r.source, films); err != nil {
		r.logger.Warn("write catalog cache", "source", r.source, "err", err)
	}
	return films, nil
}

const placeholderPoster = "/placeholder.svg?height=600&width=400"

// StaticCatalog is the catalog bundled with the binary.
type StaticCatalog struct{}

func (StaticCatalog) Films(context.Context) ([]model.CatalogFilm, error) {
	films := make([]model.CatalogFilm, len(builtinFilms))
	for i, film := range builtinFilms {
		film.Sessions = append([]model.CatalogSession(nil), film.Sessions...)
		films[i] = film
	}
	return films, nil
}

var builtinFilms = []model.CatalogFilm{
	{
		Id:        1,
		Title:     "Oppenheimer",
		PosterUrl: "https://m.media-amazon.com/images/I/81+1A6lKQ-L._AC_SY679_.jpg",
		Poster:    placeholderPoster,
		Genre:     "Biography • Drama",
		Rating:    "R",
		Sessions: []model.CatalogSession{
			{Id: 1, Time: "12:30", Price: 12},
			{Id: 2, Time: "15:45", Price: 12},
		},
	},
	{
		Id:        2,
		Title:     "Dune: Part Two",
		PosterUrl: "https://m.media-amazon.com/images/I/81p+xe8cbnL._AC_SY679_.jpg",
		Poster:    placeholderPoster,
		Genre:     "Sci-Fi • Adventure",
		Rating:    "PG-13",
		Sessions: []model.CatalogSession{
			{Id: 3, Time: "12:00", Price: 12},
			{Id: 4, Time: "13:45", Price: 12},
		},
	},
	{
		Id:        3,
		Title:     "Interstellar",
		PosterUrl: "https://m.media-amazon.com/images/I/91kFYg4fX3L._AC_SY679_.jpg",
		Poster:    placeholderPoster,
		Genre:     "Sci-Fi • Drama",
		Rating:    "PG-13",
		Sessions: []model.CatalogSession{
			{Id: 5, Time: "13:45", Price: 12},
			{Id: 6, Time: "18:00", Price: 12},
		},
	},
	{
		Id:        4,
		Title:     "Inception",
		PosterUrl: "",
		Poster:    placeholderPoster,
		Genre:     "Action • Thriller",
		Rating:    "PG-13",
		Sessions: []model.CatalogSession{
			{Id: 7, Time: "13:45", Price: 12},
			{Id: 8, Time: "16:30", Price: 12},
		},
	},
	{
		Id:        5,
		Title:     "The Batman",
		PosterUrl: "https://broken-url-example.com/nonexistent.jpg",
		Poster:    placeholderPoster,
		Genre:     "Action • Crime",
		Rating:    "PG-13",
		Sessions: []model.CatalogSession{
			{Id: 9, Time: "14:15", Price: 12},
			{Id: 10, Time: "17:30", Price: 12},
		},
	},
}
