// Package chaincode resolves a property's GDS chain code. The primary
// source is the directory detail page's reservation-codes table; the
// knowledge service is a fallback. The result is computed independently of
// the booking finding.
package chaincode

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jonathan/booking-scout/internal/discovery"
	"github.com/jonathan/booking-scout/internal/llm"
	"github.com/jonathan/booking-scout/internal/prompts"
	"github.com/jonathan/booking-scout/internal/schemas"
	"github.com/jonathan/booking-scout/internal/types"
)

// gdsNames are the distribution systems listed in directory
// reservation-code tables.
var gdsNames = []string{"sabre", "amadeus", "galileo", "worldspan", "apollo", "pegasus"}

// codePattern matches a GDS chain code cell: short, purely alphanumeric,
// uppercase.
var codePattern = regexp.MustCompile(`^[A-Z0-9]{2,3}$`)

// Lookup resolves chain codes from the directory, with a knowledge-service
// fallback.
type Lookup struct {
	directory *discovery.Directory
	client    llm.Client
	log       zerolog.Logger
}

// NewLookup creates a chain-code lookup. directory and client may each be
// nil; with both nil every lookup reports UNKNOWN.
func NewLookup(directory *discovery.Directory, client llm.Client, log zerolog.Logger) *Lookup {
	return &Lookup{directory: directory, client: client, log: log}
}

// Resolve returns the chain code for a property, or UNKNOWN. It never
// returns an error: chain-code resolution is best-effort and must not
// degrade the booking finding.
func (l *Lookup) Resolve(ctx context.Context, identity types.PropertyIdentity) types.ChainCodeResult {
	if !identity.Resolved() {
		return types.ChainCodeResult{Code: types.UnknownChainCode}
	}

	if code := l.fromDirectory(ctx, identity.CanonicalName); code != "" {
		return types.ChainCodeResult{Code: code}
	}
	if code := l.fromKnowledgeService(ctx, identity.CanonicalName); code != "" {
		return types.ChainCodeResult{Code: code}
	}
	return types.ChainCodeResult{Code: types.UnknownChainCode}
}

// fromDirectory reads the GDS reservation-codes table from the property's
// directory detail page. The page is shared with the directory discovery
// strategy, so it is fetched once per run.
func (l *Lookup) fromDirectory(ctx context.Context, name string) string {
	if l.directory == nil {
		return ""
	}

	detailURL, html, err := l.directory.DetailPage(ctx, name)
	if err != nil {
		l.log.Debug().Err(err).Msg("chain-code directory lookup failed")
		return ""
	}
	if detailURL == "" {
		return ""
	}

	return ParseReservationCodes(html)
}

// ParseReservationCodes extracts the chain code from a detail page's GDS
// reservation-codes table. Rows pair a GDS name with a short code; the most
// frequent code wins since chains usually share one code across systems.
func ParseReservationCodes(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	counts := make(map[string]int)
	order := make([]string, 0, 4)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.First().Text()))
		if !isGDSName(label) {
			return
		}
		code := strings.TrimSpace(cells.Eq(1).Text())
		if !codePattern.MatchString(code) {
			return
		}
		if counts[code] == 0 {
			order = append(order, code)
		}
		counts[code]++
	})

	best := ""
	bestCount := 0
	for _, code := range order {
		if counts[code] > bestCount {
			best = code
			bestCount = counts[code]
		}
	}
	return best
}

func isGDSName(label string) bool {
	for _, name := range gdsNames {
		if strings.Contains(label, name) {
			return true
		}
	}
	return false
}

// fromKnowledgeService asks the knowledge service for the chain code.
func (l *Lookup) fromKnowledgeService(ctx context.Context, name string) string {
	if l.client == nil {
		return ""
	}

	prompt := prompts.Format(prompts.MustGet("chaincode.json", "lookup-chain-code"),
		map[string]string{"Name": name})

	reply, err := l.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		l.log.Debug().Err(err).Msg("chain-code knowledge lookup failed")
		return ""
	}
	if err := schemas.ValidateReply(schemas.ChainCode, reply); err != nil {
		l.log.Debug().Err(err).Msg("chain-code reply malformed")
		return ""
	}

	var parsed struct {
		ChainCode string `json:"chain_code"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return ""
	}

	code := strings.ToUpper(strings.TrimSpace(parsed.ChainCode))
	if !codePattern.MatchString(code) {
		return ""
	}
	return code
}
