package booking

import "strings"

// FallbackPoster is the local image used when no catalog poster is usable.
const FallbackPoster = "/fallback-poster.png"

// ResolvePoster picks the first non-blank reference: primary, then secondary,
// then FallbackPoster.
func ResolvePoster(primary string, secondary string) string {
	if p := strings.TrimSpace(primary); p != "" {
		return p
	}
	if s := strings.TrimSpace(secondary); s != "" {
		return s
	}
	return FallbackPoster
}

// PosterChain tracks runtime load failures for one poster. Each candidate is
// attempted at most once, so a chain always terminates on FallbackPoster or
// gives up.
type PosterChain struct {
	current   string
	secondary string
	tried     map[string]bool
}

// NewPosterChain starts at the statically resolved poster.
func NewPosterChain(primary string, secondary string) PosterChain {
	current := ResolvePoster(primary, secondary)
	return PosterChain{
		current:   current,
		secondary: strings.TrimSpace(secondary),
		tried:     map[string]bool{current: true},
	}
}

func (c PosterChain) Current() string { return c.current }

// Fail records that the current poster could not be loaded and moves to the
// next candidate. It returns false once nothing is left to try; the chain then
// stays on its last target.
func (c PosterChain) Fail() (PosterChain, bool) {
	next := PosterChain{current: c.current, secondary: c.secondary, tried: make(map[string]bool, len(c.tried)+1)}
	for k, v := range c.tried {
		next.tried[k] = v
	}
	for _, candidate := range []string{c.secondary, FallbackPoster} {
		if candidate == "" || next.tried[candidate] {
			continue
		}
		next.tried[candidate] = true
		next.current = candidate
		return next, true
	}
	return next, false
}

// Exhausted reports whether every candidate has been attempted.
func (c PosterChain) Exhausted() bool {
	return (c.secondary == "" || c.tried[c.secondary]) && c.tried[FallbackPoster]
}
