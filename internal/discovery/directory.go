package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jonathan/booking-scout/internal/types"
	"github.com/jonathan/booking-scout/internal/vendor"
)

// DefaultDirectoryBase is the hotel-industry directory searched for property
// detail pages. Its internal search is queried directly; a general search
// engine's rendered UI would only serve challenge pages.
const DefaultDirectoryBase = "https://www.travelweekly.com"

// Directory discovers candidates through a hotel directory: search for the
// property, open the first detail page, and extract outbound links that look
// like booking/vendor URLs. Detail pages are fetched once per property and
// cached, since chain-code lookup reads the same page in the same run.
type Directory struct {
	base  string
	fetch FetchFunc
	log   zerolog.Logger

	mu    sync.Mutex
	pages map[string]detailPage
}

type detailPage struct {
	url  string
	html string
}

// NewDirectory creates the directory strategy. base defaults to the Travel
// Weekly directory; fetchFn defaults to the plain HTTP fetcher.
func NewDirectory(base string, fetchFn FetchFunc, log zerolog.Logger) *Directory {
	if base == "" {
		base = DefaultDirectoryBase
	}
	if fetchFn == nil {
		fetchFn = DefaultFetch
	}
	return &Directory{base: base, fetch: fetchFn, log: log, pages: make(map[string]detailPage)}
}

// Name implements Strategy.
func (d *Directory) Name() string { return string(types.SourceDirectory) }

// Discover implements Strategy.
func (d *Directory) Discover(ctx context.Context, identity types.PropertyIdentity) ([]types.Candidate, error) {
	if !identity.Resolved() {
		return nil, nil
	}

	detailURL, html, err := d.DetailPage(ctx, identity.CanonicalName)
	if err != nil {
		return nil, err
	}
	if detailURL == "" {
		return nil, nil
	}

	links, err := extractBookingLinks(html, detailURL)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.Candidate, 0, len(links))
	for _, link := range links {
		candidates = append(candidates, types.Candidate{URL: link, Source: types.SourceDirectory})
	}
	return candidates, nil
}

// DetailPage searches the directory for a property and returns its first
// detail page's URL and HTML, or empty values when the search produced none.
// The page is fetched at most once per property; the lock is held across the
// fetch so concurrent callers share one request.
func (d *Directory) DetailPage(ctx context.Context, name string) (string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pages[name]; ok {
		return p.url, p.html, nil
	}

	detailURL, err := d.detailPageURL(ctx, name)
	if err != nil {
		return "", "", err
	}
	if detailURL == "" {
		d.pages[name] = detailPage{}
		return "", "", nil
	}

	result, err := d.fetch(ctx, detailURL)
	if err != nil {
		return "", "", fmt.Errorf("directory detail page: %w", err)
	}

	d.pages[name] = detailPage{url: detailURL, html: result.HTML}
	return detailURL, result.HTML, nil
}

// detailPageURL searches the directory and returns the first property
// detail-page URL, or empty when the search produced none.
func (d *Directory) detailPageURL(ctx context.Context, name string) (string, error) {
	searchURL := fmt.Sprintf("%s/Hotels?searchText=%s", d.base, url.QueryEscape(name))
	result, err := d.fetch(ctx, searchURL)
	if err != nil {
		return "", fmt.Errorf("directory search: %w", err)
	}
	if result.StatusCode >= 400 {
		return "", fmt.Errorf("directory search returned HTTP %d", result.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if err != nil {
		return "", fmt.Errorf("directory search HTML: %w", err)
	}

	var detail string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !isDetailPath(href) {
			return true
		}
		base, _ := url.Parse(d.base)
		if normalized, err := Normalize(href, base); err == nil {
			detail = normalized
			return false
		}
		return true
	})
	return detail, nil
}

// isDetailPath matches the directory's detail-page URL shape, e.g.
// /Hotels/Stone-Harbor-NJ/The-Reeds-at-Shelter-Haven-p123.
func isDetailPath(href string) bool {
	lower := strings.ToLower(href)
	idx := strings.Index(lower, "/hotels/")
	if idx < 0 {
		return false
	}
	rest := lower[idx+len("/hotels/"):]
	return rest != "" && !strings.HasPrefix(rest, "?")
}

// extractBookingLinks pulls outbound links from a detail page that match
// vendor signatures or booking-semantic paths.
func extractBookingLinks(html, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("detail page HTML: %w", err)
	}

	var hrefs []string
	doc.Find("a[href], iframe[src]").Each(func(_ int, s *goquery.Selection) {
		ref, ok := s.Attr("href")
		if !ok {
			ref, _ = s.Attr("src")
		}
		if ref == "" {
			return
		}
		if _, strength := vendor.Classify(ref); strength == vendor.StrengthHigh || vendor.HasBookingPath(ref) {
			hrefs = append(hrefs, ref)
		}
	})

	return resolveLinks(hrefs, pageURL), nil
}
