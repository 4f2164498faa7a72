package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/jonathan/booking-scout/internal/engine"
	"github.com/jonathan/booking-scout/internal/llm"
	"github.com/jonathan/booking-scout/internal/observability"
)

// buildEngine assembles an engine from flags and environment. A missing
// Gemini key disables the knowledge-service sources instead of failing:
// the remaining sources still produce a usable (if weaker) finding.
func buildEngine(ctx context.Context, apiKey, domain string, capture bool, log zerolog.Logger) (*engine.Engine, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	var client llm.Client
	if apiKey != "" {
		c, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), apiKey)
		if err != nil {
			log.Warn().Err(err).Msg("knowledge service unavailable; continuing without it")
		} else {
			client = c
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; knowledge-service sources disabled")
	}

	cfg := engine.DefaultConfig()
	cfg.Client = client
	cfg.Log = log
	cfg.OfficialDomain = domain
	cfg.Capture = capture
	cfg.CSEKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	cfg.CSECX = os.Getenv("GOOGLE_SEARCH_CX")

	return engine.New(ctx, cfg)
}

// newLogger builds the command logger.
func newLogger(verbose bool) zerolog.Logger {
	return observability.NewLogger(verbose)
}
