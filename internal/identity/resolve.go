// Package identity turns a free-form property identifier into a canonical
// property name. Short single-line inputs are assumed to already be names;
// longer blocks are handed to the knowledge service for extraction.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/booking-scout/internal/llm"
	"github.com/jonathan/booking-scout/internal/prompts"
	"github.com/jonathan/booking-scout/internal/schemas"
	"github.com/jonathan/booking-scout/internal/types"
)

// maxInlineNameLength is the longest input treated as a literal property
// name without consulting the knowledge service.
const maxInlineNameLength = 140

// ErrNoInput is returned when no property identifier was provided at all.
// This is the engine's only acceptable hard failure.
var ErrNoInput = errors.New("identity: no property identifier provided")

// Resolver resolves raw input into a PropertyIdentity.
type Resolver struct {
	client llm.Client
	log    zerolog.Logger
}

// NewResolver creates a resolver. client may be nil, in which case long
// free-form inputs resolve to the unknown-property sentinel.
func NewResolver(client llm.Client, log zerolog.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// Resolve produces the canonical identity for raw input. Knowledge-service
// failures never fail the run: after the retry budget is exhausted the
// resolver falls back to the UNKNOWN_PROPERTY sentinel and downstream stages
// degrade gracefully.
func (r *Resolver) Resolve(ctx context.Context, rawInput string) (types.PropertyIdentity, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return types.PropertyIdentity{RawInput: rawInput, CanonicalName: types.UnknownProperty}, ErrNoInput
	}

	if !strings.ContainsAny(trimmed, "\r\n") && len(trimmed) <= maxInlineNameLength {
		return types.PropertyIdentity{RawInput: rawInput, CanonicalName: trimmed}, nil
	}

	name := r.extractName(ctx, trimmed)
	if name == "" {
		name = types.UnknownProperty
	}
	return types.PropertyIdentity{RawInput: rawInput, CanonicalName: name}, nil
}

// extractName asks the knowledge service for exactly one JSON object holding
// the property name. Any failure returns an empty string.
func (r *Resolver) extractName(ctx context.Context, input string) string {
	if r.client == nil {
		r.log.Warn().Msg("no knowledge-service client; cannot extract name from free-form input")
		return ""
	}

	prompt := prompts.Format(prompts.MustGet("identity.json", "extract-name"),
		map[string]string{"Input": input})

	reply, err := r.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		r.log.Warn().Err(err).Msg("identity extraction failed")
		return ""
	}

	if err := schemas.ValidateReply(schemas.PropertyName, reply); err != nil {
		r.log.Warn().Err(err).Msg("identity extraction returned malformed reply")
		return ""
	}

	var parsed struct {
		PropertyName string `json:"property_name"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		r.log.Warn().Err(err).Msg("identity extraction reply did not unmarshal")
		return ""
	}

	return strings.TrimSpace(parsed.PropertyName)
}
