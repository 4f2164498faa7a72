package discovery

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/booking-scout/internal/fetch"
	"github.com/jonathan/booking-scout/internal/types"
)

// DefaultPerSourceCap bounds how many candidates one source may contribute.
const DefaultPerSourceCap = 20

// FetchFunc fetches a URL and returns whatever the server produced.
// Injected so strategies are testable without a live network.
type FetchFunc func(ctx context.Context, url string) (*fetch.Result, error)

// DefaultFetch fetches with the package defaults.
func DefaultFetch(ctx context.Context, url string) (*fetch.Result, error) {
	return fetch.URL(ctx, url, nil)
}

// Strategy produces candidate booking URLs for a resolved property. Each
// discovery source implements this contract; the aggregator is agnostic to
// how many or which strategies are registered.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, identity types.PropertyIdentity) ([]types.Candidate, error)
}

// Aggregator fans out to all registered strategies, then join-merges their
// outputs: concatenated in registration order, normalized, and deduplicated
// preserving first-seen order.
type Aggregator struct {
	strategies   []Strategy
	perSourceCap int
	log          zerolog.Logger
}

// NewAggregator creates an aggregator over the given strategies.
func NewAggregator(strategies []Strategy, perSourceCap int, log zerolog.Logger) *Aggregator {
	if perSourceCap <= 0 {
		perSourceCap = DefaultPerSourceCap
	}
	return &Aggregator{strategies: strategies, perSourceCap: perSourceCap, log: log}
}

// Gather runs every strategy concurrently and merges the results. A failing
// source contributes zero candidates and never prevents the others from
// contributing; failures are logged and the run continues. Per-strategy
// results are only merged after all strategies complete, so no candidate
// list is shared between goroutines.
func (a *Aggregator) Gather(ctx context.Context, identity types.PropertyIdentity) []types.Candidate {
	results := make([][]types.Candidate, len(a.strategies))

	g, gCtx := errgroup.WithContext(ctx)
	for i, strat := range a.strategies {
		g.Go(func() error {
			candidates, err := strat.Discover(gCtx, identity)
			if err != nil {
				a.log.Warn().Err(err).Str("source", strat.Name()).Msg("discovery source failed")
				return nil // a failed source is not a failed run
			}
			if len(candidates) > a.perSourceCap {
				candidates = candidates[:a.perSourceCap]
			}
			results[i] = candidates
			a.log.Debug().Str("source", strat.Name()).Int("candidates", len(candidates)).Msg("discovery source done")
			return nil
		})
	}
	_ = g.Wait()

	var merged []types.Candidate
	for _, r := range results {
		merged = append(merged, r...)
	}
	return Dedupe(merged)
}

// Dedupe normalizes candidate URLs and removes duplicates, keeping the
// first-seen occurrence of each normalized URL.
func Dedupe(candidates []types.Candidate) []types.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		normalized, err := Normalize(c.URL, nil)
		if err != nil {
			continue // malformed candidates are dropped, not fatal
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, types.Candidate{URL: normalized, Source: c.Source, Normalized: true})
	}
	return out
}

// resolveLinks normalizes a batch of hrefs against a base page URL and
// returns the unique absolute URLs in order.
func resolveLinks(hrefs []string, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}
	seen := make(map[string]bool, len(hrefs))
	var out []string
	for _, href := range hrefs {
		normalized, err := Normalize(href, base)
		if err != nil || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}
