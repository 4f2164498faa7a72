package discovery

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/booking-scout/internal/types"
)

// cseResultsPerQuery is how many results each programmable-search query
// contributes.
const cseResultsPerQuery = 5

// CSESearch is an alternative web-search strategy backed by the Google
// Programmable Search API. Registered only when API keys are configured;
// the HTML search strategy remains the default.
type CSESearch struct {
	svc *customsearch.Service
	cx  string
	log zerolog.Logger
}

// NewCSESearch creates the programmable-search strategy.
func NewCSESearch(ctx context.Context, apiKey, cx string, log zerolog.Logger) (*CSESearch, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &CSESearch{svc: svc, cx: cx, log: log}, nil
}

// Name implements Strategy.
func (c *CSESearch) Name() string { return string(types.SourceWebSearch) + "_cse" }

// Discover implements Strategy. Failed queries are skipped gracefully.
func (c *CSESearch) Discover(ctx context.Context, identity types.PropertyIdentity) ([]types.Candidate, error) {
	if !identity.Resolved() {
		return nil, nil
	}

	var candidates []types.Candidate
	for _, shape := range searchQueries {
		query := fmt.Sprintf(shape, identity.CanonicalName)
		resp, err := c.svc.Cse.List().Context(ctx).Cx(c.cx).Q(query).Num(cseResultsPerQuery).Do()
		if err != nil {
			c.log.Debug().Err(err).Str("query", query).Msg("programmable search query failed")
			continue
		}
		for _, item := range resp.Items {
			candidates = append(candidates, types.Candidate{URL: item.Link, Source: types.SourceWebSearch})
		}
	}
	return candidates, nil
}
