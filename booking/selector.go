package booking

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gosterim-cli/model"
)

// Film is a normalized catalog entry with its bookable showtimes.
type Film struct {
	Id        int
	Title     string
	Genre     string
	Rating    string
	Poster    string
	Secondary string
	Showtimes []model.Showtime
}

// Selector exposes the catalog read by the session and turns a (film,
// session) choice into a Showtime.
type Selector struct {
	films []Film
	index map[int]int
}

// NewSelector normalizes raw catalog entries. Entries without a title and
// sessions with an unreadable time or a negative price are dropped; a film
// left without sessions is dropped too. A nil logger discards.
func NewSelector(raw []model.CatalogFilm, logger *slog.Logger) Selector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sel := Selector{index: make(map[int]int, len(raw))}
	for _, entry := range raw {
		film, ok := normalizeFilm(entry, logger)
		if !ok {
			continue
		}
		if _, dup := sel.index[film.Id]; dup {
			logger.Warn("duplicate film id in catalog", "film_id", film.Id, "title", film.Title)
			continue
		}
		sel.index[film.Id] = len(sel.films)
		sel.films = append(sel.films, film)
	}
	return sel
}

func normalizeFilm(entry model.CatalogFilm, logger *slog.Logger) (Film, bool) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		logger.Warn("dropping catalog entry without title", "film_id", int(entry.Id))
		return Film{}, false
	}
	film := Film{
		Id:        int(entry.Id),
		Title:     title,
		Genre:     strings.TrimSpace(entry.Genre),
		Rating:    strings.TrimSpace(entry.Rating),
		Poster:    ResolvePoster(entry.PosterUrl, entry.Poster),
		Secondary: strings.TrimSpace(entry.Poster),
	}
	for _, session := range entry.Sessions {
		clock, err := normalizeClock(session.Time)
		if err != nil {
			logger.Warn("dropping session", "film", title, "session_id", int(session.Id), "err", err)
			continue
		}
		if session.Price < 0 {
			logger.Warn("dropping session with negative price", "film", title, "session_id", int(session.Id))
			continue
		}
		film.Showtimes = append(film.Showtimes, model.Showtime{
			FilmId:      film.Id,
			Title:       film.Title,
			Poster:      film.Poster,
			Genre:       film.Genre,
			Rating:      film.Rating,
			SessionId:   int(session.Id),
			SessionTime: clock,
			Price:       decimal.NewFromFloat(session.Price),
		})
	}
	if len(film.Showtimes) == 0 {
		logger.Warn("dropping film without bookable sessions", "film", title)
		return Film{}, false
	}
	return film, true
}

func normalizeClock(raw string) (string, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid session time %q", raw)
	}
	return parsed.Format("15:04"), nil
}

// Films returns the normalized catalog in provider order.
func (s Selector) Films() []Film {
	return append([]Film(nil), s.films...)
}

// Film looks up one film by id.
func (s Selector) Film(filmID int) (Film, bool) {
	i, ok := s.index[filmID]
	if !ok {
		return Film{}, false
	}
	return s.films[i], true
}

// Select resolves the showtime of filmID with sessionID.
func (s Selector) Select(filmID int, sessionID int) (model.Showtime, error) {
	film, ok := s.Film(filmID)
	if !ok {
		return model.Showtime{}, fmt.Errorf("%w: film %d", ErrUnknownShowtime, filmID)
	}
	for _, showtime := range film.Showtimes {
		if showtime.SessionId == sessionID {
			return showtime, nil
		}
	}
	return model.Showtime{}, fmt.Errorf("%w: session %d of %q", ErrUnknownShowtime, sessionID, film.Title)
}
