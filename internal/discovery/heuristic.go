package discovery

import (
	"context"
	"strings"

	"github.com/jonathan/booking-scout/internal/types"
)

// conventionalPaths are the booking paths hotels conventionally hang off
// their official domain.
var conventionalPaths = []string{
	"/book",
	"/booking",
	"/bookings",
	"/book-now",
	"/reservations",
	"/reservation",
	"/reserve",
	"/availability",
}

// HeuristicPaths synthesizes candidates from an official domain, when one is
// known, by appending conventional booking paths. The candidates are cheap
// guesses; fetching and scoring decide whether any of them are real.
type HeuristicPaths struct {
	domain string
}

// NewHeuristicPaths creates the strategy. domain may be empty, in which
// case the strategy contributes nothing.
func NewHeuristicPaths(domain string) *HeuristicPaths {
	return &HeuristicPaths{domain: strings.TrimSpace(domain)}
}

// Name implements Strategy.
func (h *HeuristicPaths) Name() string { return string(types.SourceHeuristic) }

// Discover implements Strategy.
func (h *HeuristicPaths) Discover(_ context.Context, _ types.PropertyIdentity) ([]types.Candidate, error) {
	if h.domain == "" {
		return nil, nil
	}

	base, err := Normalize(h.domain, nil)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.Candidate, 0, len(conventionalPaths))
	for _, path := range conventionalPaths {
		candidates = append(candidates, types.Candidate{URL: base + path, Source: types.SourceHeuristic})
	}
	return candidates, nil
}
