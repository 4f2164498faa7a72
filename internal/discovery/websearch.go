package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jonathan/booking-scout/internal/types"
)

// DefaultSearchEndpoint is a search surface that returns plain, parseable
// HTML rather than a JS-rendered results page.
const DefaultSearchEndpoint = "https://html.duckduckgo.com/html/"

// searchQueries are the curated query shapes issued per property. Vendor
// names are included because vendor-hosted booking URLs rarely rank for the
// generic terms.
var searchQueries = []string{
	"%s reservations",
	"%s booking engine",
	"%s book direct",
	"%s synxis",
	"%s travelclick",
}

// WebSearch discovers candidates by issuing curated queries against an
// HTML search surface and extracting outbound result links.
type WebSearch struct {
	endpoint string
	fetch    FetchFunc
	log      zerolog.Logger
}

// NewWebSearch creates the web-search strategy.
func NewWebSearch(endpoint string, fetchFn FetchFunc, log zerolog.Logger) *WebSearch {
	if endpoint == "" {
		endpoint = DefaultSearchEndpoint
	}
	if fetchFn == nil {
		fetchFn = DefaultFetch
	}
	return &WebSearch{endpoint: endpoint, fetch: fetchFn, log: log}
}

// Name implements Strategy.
func (w *WebSearch) Name() string { return string(types.SourceWebSearch) }

// Discover implements Strategy. Individual query failures are logged and
// skipped; the strategy fails only when every query fails.
func (w *WebSearch) Discover(ctx context.Context, identity types.PropertyIdentity) ([]types.Candidate, error) {
	if !identity.Resolved() {
		return nil, nil
	}

	var candidates []types.Candidate
	failures := 0
	for _, shape := range searchQueries {
		query := fmt.Sprintf(shape, identity.CanonicalName)
		links, err := w.search(ctx, query)
		if err != nil {
			failures++
			w.log.Debug().Err(err).Str("query", query).Msg("search query failed")
			continue
		}
		for _, link := range links {
			candidates = append(candidates, types.Candidate{URL: link, Source: types.SourceWebSearch})
		}
	}

	if failures == len(searchQueries) {
		return nil, fmt.Errorf("all %d search queries failed", failures)
	}
	return candidates, nil
}

// search issues one query and extracts outbound result links.
func (w *WebSearch) search(ctx context.Context, query string) ([]string, error) {
	searchURL := fmt.Sprintf("%s?q=%s", w.endpoint, url.QueryEscape(query))
	result, err := w.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	if result.StatusCode >= 400 {
		return nil, fmt.Errorf("search returned HTTP %d", result.StatusCode)
	}
	return extractResultLinks(result.HTML, w.endpoint)
}

// extractResultLinks pulls external result links out of a search results
// page, unwrapping the engine's redirect links where present.
func extractResultLinks(html, endpoint string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("search results HTML: %w", err)
	}

	endpointDomain := ""
	if u, err := url.Parse(endpoint); err == nil {
		endpointDomain = baseDomain(u.Host)
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = unwrapRedirect(href)
		if href == "" {
			return
		}
		u, err := url.Parse(href)
		if err != nil || u.Host == "" {
			return // result pages use relative links only for navigation
		}
		if endpointDomain != "" && baseDomain(u.Host) == endpointDomain {
			return // the engine's own links are not results
		}
		hrefs = append(hrefs, href)
	})

	return resolveLinks(hrefs, endpoint), nil
}

// unwrapRedirect resolves search-engine redirect links of the form
// //host/l/?uddg=<url-encoded target> to their target.
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// baseDomain reduces a host to its last two labels, enough to recognize a
// search engine's own links across its subdomains.
func baseDomain(host string) string {
	host = strings.ToLower(host)
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
