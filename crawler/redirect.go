package crawler

import (
	"context"

	"github.com/mycok/uCrawl/urlnorm"
)

// resolveRedirects walks the redirect chain from start one hop at a time,
// marking every intermediate location visited, and finally marks final
// visited. The walk stops after MaxRedirects hops, on a hop that does not
// redirect, or on a hop that redirects to itself.
func (r *run) resolveRedirects(ctx context.Context, start, final string) {
	current := start

	for hop := 0; hop < r.cfg.MaxRedirects && current != final; hop++ {
		loc, err := r.cfg.Fetcher.ProbeRedirect(ctx, current)
		if err != nil || loc == "" {
			break
		}

		next, err := urlnorm.Normalize(loc, current)
		if err != nil || next == current {
			break
		}

		r.frontier.MarkVisited(next)
		current = next
	}

	r.frontier.MarkVisited(final)
}
