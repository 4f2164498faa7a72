// Package discovery gathers booking-URL candidates from multiple
// independent, unreliable sources and merges them into one deduplicated
// candidate list. No source may block or abort the others.
package discovery

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize canonicalizes a candidate URL: scheme defaults to https,
// protocol-relative and root-relative forms resolve against base, fragments
// are dropped, hosts are lowercased, and trailing slashes are insignificant.
// Normalize is idempotent: Normalize(Normalize(u)) == Normalize(u).
func Normalize(raw string, base *url.URL) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unparsable URL %q: %w", raw, err)
	}

	switch {
	case u.Scheme == "" && u.Host == "":
		// Root-relative ("/book") or bare ("example.com/book") form.
		if strings.HasPrefix(raw, "/") {
			if base == nil {
				return "", fmt.Errorf("relative URL %q with no base", raw)
			}
			u = base.ResolveReference(u)
		} else {
			u, err = url.Parse("https://" + raw)
			if err != nil || u.Host == "" {
				return "", fmt.Errorf("unparsable URL %q", raw)
			}
		}
	case u.Scheme == "":
		// Protocol-relative ("//host/path") form.
		u.Scheme = "https"
	}

	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", raw)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")

	return u.String(), nil
}

// NormalizeKey returns the dedup key for a URL: the normalized form, or the
// raw string when normalization fails (so malformed duplicates still dedup).
func NormalizeKey(raw string, base *url.URL) string {
	if n, err := Normalize(raw, base); err == nil {
		return n
	}
	return strings.TrimSpace(raw)
}
