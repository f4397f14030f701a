package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ProbePoster checks that a poster reference can be loaded. Paths rooted at
// "/" are assets shipped with the app and always resolve; http(s) references
// are checked with a HEAD request.
func (c *Client) ProbePoster(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("empty poster reference")
	}
	if strings.HasPrefix(ref, "/") {
		return nil
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return fmt.Errorf("invalid poster reference %q: %w", ref, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported poster scheme %q", parsed.Scheme)
	}
	return c.head(ctx, ref)
}
