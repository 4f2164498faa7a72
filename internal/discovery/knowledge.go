package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/jonathan/booking-scout/internal/llm"
	"github.com/jonathan/booking-scout/internal/prompts"
	"github.com/jonathan/booking-scout/internal/schemas"
	"github.com/jonathan/booking-scout/internal/types"
)

// knowledgeMaxURLs caps how many suggestions one reply may contribute.
const knowledgeMaxURLs = 10

// Knowledge asks the knowledge service to name direct booking-engine URLs.
// Answers are unverified candidates only, never ground truth: every URL
// still goes through fetching, bot-wall detection, and scoring.
type Knowledge struct {
	client llm.Client
	log    zerolog.Logger
}

// NewKnowledge creates the knowledge-service strategy.
func NewKnowledge(client llm.Client, log zerolog.Logger) *Knowledge {
	return &Knowledge{client: client, log: log}
}

// Name implements Strategy.
func (k *Knowledge) Name() string { return string(types.SourceKnowledge) }

// Discover implements Strategy.
func (k *Knowledge) Discover(ctx context.Context, identity types.PropertyIdentity) ([]types.Candidate, error) {
	if k.client == nil || !identity.Resolved() {
		return nil, nil
	}

	prompt := prompts.Format(prompts.MustGet("discovery.json", "suggest-booking-urls"),
		map[string]string{
			"Name": identity.CanonicalName,
			"Max":  strconv.Itoa(knowledgeMaxURLs),
		})

	reply, err := k.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("knowledge suggestion: %w", err)
	}

	if err := schemas.ValidateReply(schemas.BookingURLs, reply); err != nil {
		// Malformed replies are an empty result, not a crash.
		k.log.Warn().Err(err).Msg("knowledge suggestion reply malformed")
		return nil, nil
	}

	var parsed struct {
		URLs []string `json:"urls"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		k.log.Warn().Err(err).Msg("knowledge suggestion reply did not unmarshal")
		return nil, nil
	}

	if len(parsed.URLs) > knowledgeMaxURLs {
		parsed.URLs = parsed.URLs[:knowledgeMaxURLs]
	}

	candidates := make([]types.Candidate, 0, len(parsed.URLs))
	for _, u := range parsed.URLs {
		candidates = append(candidates, types.Candidate{URL: u, Source: types.SourceKnowledge})
	}
	return candidates, nil
}
