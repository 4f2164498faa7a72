// Package engine orchestrates the per-property pipeline: resolve identity,
// gather candidates, detect verification walls, score against vendor
// signatures, select evidence, and assemble the finding. The engine is
// total over its input domain: every input yields exactly one finding.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/booking-scout/internal/botwall"
	"github.com/jonathan/booking-scout/internal/chaincode"
	"github.com/jonathan/booking-scout/internal/discovery"
	"github.com/jonathan/booking-scout/internal/fetch"
	"github.com/jonathan/booking-scout/internal/identity"
	"github.com/jonathan/booking-scout/internal/llm"
	"github.com/jonathan/booking-scout/internal/types"
	"github.com/jonathan/booking-scout/internal/vendor"
)

// State tracks pipeline progress for one property. No state is skipped even
// on partial failure; a failure degrades the outcome but always advances.
type State string

// Pipeline states in order.
const (
	StateStart              State = "start"
	StateIdentityResolved   State = "identity_resolved"
	StateCandidatesGathered State = "candidates_gathered"
	StateScored             State = "scored"
	StateEvidenceAttempted  State = "evidence_attempted"
	StateDone               State = "done"
)

// probeWorkers bounds concurrent candidate fetches; one hanging fetch must
// not stall the others.
const probeWorkers = 4

// CaptureFunc renders a URL in the browser collaborator and returns the
// final URL, rendered HTML, and screenshot evidence.
type CaptureFunc func(ctx context.Context, url string) (*fetch.Capture, error)

// Config configures an Engine.
type Config struct {
	Client         llm.Client // knowledge service; nil disables those sources
	Log            zerolog.Logger
	OfficialDomain string // property's official domain, when known
	DirectoryBase  string
	SearchEndpoint string
	CSEKey         string
	CSECX          string

	RunTimeout   time.Duration `validate:"gt=0"`
	FetchTimeout time.Duration `validate:"gt=0"`
	PerSourceCap int           `validate:"gte=1,lte=25"`
	MaxProbes    int           `validate:"gte=1,lte=80"`
	Capture      bool

	Score vendor.ScoreConfig
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		RunTimeout:   2 * time.Minute,
		FetchTimeout: 15 * time.Second,
		PerSourceCap: discovery.DefaultPerSourceCap,
		MaxProbes:    12,
		Score:        vendor.DefaultScoreConfig(),
	}
}

// Outcome is everything the engine produced for one property.
type Outcome struct {
	Identity  types.PropertyIdentity
	Finding   types.BookingFinding
	ChainCode types.ChainCodeResult
	// Screenshot is the rendered evidence of the selected URL, when capture
	// was enabled and the browser produced one. A wall screenshot is kept
	// too; it documents what blocked verification.
	Screenshot []byte
	State      State
}

// Engine is the candidate discovery and vendor-fingerprinting engine. All
// collaborators are injected at construction; there is no ambient state.
type Engine struct {
	cfg        Config
	resolver   *identity.Resolver
	aggregator *discovery.Aggregator
	chain      *chaincode.Lookup
	fetchFn    discovery.FetchFunc
	captureFn  CaptureFunc
	log        zerolog.Logger
}

// New builds an engine from config. Strategies are registered here; the
// aggregator stays agnostic to which ones exist.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	log := cfg.Log
	fetchFn := func(ctx context.Context, url string) (*fetch.Result, error) {
		return fetch.URL(ctx, url, &fetch.Options{Timeout: cfg.FetchTimeout})
	}

	dir := discovery.NewDirectory(cfg.DirectoryBase, fetchFn, log)
	strategies := []discovery.Strategy{
		dir,
		discovery.NewWebSearch(cfg.SearchEndpoint, fetchFn, log),
		discovery.NewKnowledge(cfg.Client, log),
		discovery.NewHeuristicPaths(cfg.OfficialDomain),
	}

	if cfg.CSEKey != "" && cfg.CSECX != "" {
		cse, err := discovery.NewCSESearch(ctx, cfg.CSEKey, cfg.CSECX, log)
		if err != nil {
			log.Warn().Err(err).Msg("programmable search unavailable; continuing without it")
		} else {
			strategies = append(strategies, cse)
		}
	}

	e := &Engine{
		cfg:        cfg,
		resolver:   identity.NewResolver(cfg.Client, log),
		aggregator: discovery.NewAggregator(strategies, cfg.PerSourceCap, log),
		chain:      chaincode.NewLookup(dir, cfg.Client, log),
		fetchFn:    fetchFn,
		log:        log,
	}
	if cfg.Capture {
		e.captureFn = func(ctx context.Context, url string) (*fetch.Capture, error) {
			return fetch.OpenAndCapture(ctx, url, cfg.FetchTimeout+30*time.Second)
		}
	}
	return e, nil
}

// Process runs the full pipeline for one raw property input. It never
// returns an error and never panics outward: every failure mode degrades to
// an Unknown/low-confidence finding with an explanatory note.
func (e *Engine) Process(ctx context.Context, rawInput string) (outcome Outcome) {
	outcome.State = StateStart
	notes := newNoteList()

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("engine recovered from panic")
			notes.add(fmt.Sprintf("internal error: %v", r))
			outcome.Finding = degradedFinding(outcome.Identity, notes)
			outcome.ChainCode = types.ChainCodeResult{Code: types.UnknownChainCode}
			outcome.State = StateDone
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.RunTimeout)
	defer cancel()

	// Identity resolution. Total input absence is the one hard failure; it
	// is surfaced as a note on a degraded finding, reported once.
	ident, err := e.resolver.Resolve(runCtx, rawInput)
	outcome.Identity = ident
	if err != nil {
		if errors.Is(err, identity.ErrNoInput) {
			notes.add("no property identifier could be resolved from the input")
		} else {
			notes.add("identity resolution failed: " + err.Error())
		}
	} else if !ident.Resolved() {
		notes.add("property name could not be extracted; proceeding with unresolved identity")
	}
	outcome.State = StateIdentityResolved

	// Chain code runs as an independent parallel branch; it is never
	// derived from the booking finding.
	var chainResult types.ChainCodeResult
	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		chainResult = e.chain.Resolve(gCtx, ident)
		return nil
	})

	// Candidate gathering; a run-level timeout aborts remaining sources and
	// falls through to scoring with whatever was gathered.
	candidates := e.aggregator.Gather(runCtx, ident)
	outcome.State = StateCandidatesGathered
	if len(candidates) == 0 && ident.Resolved() {
		notes.add("no candidates found by any discovery source")
	}

	// Probe candidate bodies and classify verification walls.
	bodies, blocked := e.probe(runCtx, candidates, notes)

	// Score the survivors; blocked candidates stay in the evidence list but
	// are never selected as the evidence URL.
	var scored []vendor.Scored
	for _, c := range candidates {
		if _, isBlocked := blocked[c.URL]; isBlocked {
			continue
		}
		scored = append(scored, vendor.Score(c, bodies[c.URL], e.cfg.Score))
	}
	best, found := vendor.Rank(scored)
	outcome.State = StateScored

	// Evidence capture via the browser collaborator.
	if found {
		outcome.Screenshot = e.attemptCapture(runCtx, &best, notes)
	}
	outcome.State = StateEvidenceAttempted

	_ = g.Wait()
	outcome.ChainCode = chainResult

	outcome.Finding = assembleFinding(ident, candidates, best, found, notes)
	if err := outcome.Finding.Validate(); err != nil {
		// Should be unreachable; log loudly rather than emit a bad artifact.
		e.log.Error().Err(err).Msg("finding failed invariant check")
	}
	outcome.State = StateDone

	e.log.Info().
		Str("hotel", outcome.Finding.HotelName).
		Str("vendor", outcome.Finding.Vendor).
		Str("confidence", string(outcome.Finding.Confidence)).
		Str("chain_code", outcome.ChainCode.Code).
		Int("evidence_urls", len(outcome.Finding.EvidenceURLs)).
		Msg("property processed")
	return outcome
}

// probe fetches up to MaxProbes candidates concurrently, classifies each
// response, and returns the fetched bodies plus the blocked set. Fetch
// failures are logged and skipped; they are not verification walls.
func (e *Engine) probe(ctx context.Context, candidates []types.Candidate, notes *noteList) (map[string]string, map[string]string) {
	limit := e.cfg.MaxProbes
	if limit > len(candidates) {
		limit = len(candidates)
	}

	results := make([]*fetch.Result, limit)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(probeWorkers)
	for i := 0; i < limit; i++ {
		g.Go(func() error {
			result, err := e.fetchFn(gCtx, candidates[i].URL)
			if err != nil {
				e.log.Debug().Err(err).Str("url", candidates[i].URL).Msg("candidate probe failed")
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	bodies := make(map[string]string)
	blocked := make(map[string]string)
	for i, result := range results {
		if result == nil {
			continue
		}
		url := candidates[i].URL
		if c := botwall.Classify(result.StatusCode, result.HTML); c.Blocked {
			blocked[url] = c.Reason
			notes.add(fmt.Sprintf("blocked at %s (%s)", url, c.Reason))
			continue
		}
		bodies[url] = result.HTML
	}
	return bodies, blocked
}

// attemptCapture decides whether to send the best candidate to the browser
// collaborator and interprets what came back. Low-confidence unknowns still
// get one best-effort attempt, marked informational. The screenshot is
// returned for the report in every successful capture, wall or not.
func (e *Engine) attemptCapture(ctx context.Context, best *vendor.Scored, notes *noteList) []byte {
	if e.captureFn == nil {
		return nil
	}

	authoritative := best.Vendor != vendor.UnknownVendor || best.Strength != vendor.StrengthLow
	capture, err := e.captureFn(ctx, best.Candidate.URL)
	if err != nil {
		notes.add("evidence capture failed: " + err.Error())
		return nil
	}

	if c := botwall.Classify(200, capture.HTML); c.Blocked {
		// A wall at capture time is recorded, never fought.
		notes.add(fmt.Sprintf("verification wall during capture of %s (%s)", capture.FinalURL, c.Reason))
		return capture.Screenshot
	}

	if !authoritative {
		notes.add("capture of low-confidence candidate is informational only")
	}
	if capture.FinalURL != "" && capture.FinalURL != best.Candidate.URL {
		notes.add("capture redirected to " + capture.FinalURL)
	}
	return capture.Screenshot
}

// ProcessBatch processes properties in parallel with a bounded worker pool.
// Each property's accumulator is owned by its own worker; results are
// written to distinct slice slots, so no locking is needed.
func (e *Engine) ProcessBatch(ctx context.Context, inputs []string, concurrency int) []Outcome {
	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]Outcome, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, input := range inputs {
		g.Go(func() error {
			outcomes[i] = e.Process(gCtx, input)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
