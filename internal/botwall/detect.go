// Package botwall classifies fetched pages that are verification challenges
// rather than real content. The detector is deliberately conservative: it
// exists to stop wasted effort and record evidence, never to defeat a
// challenge.
package botwall

import (
	"fmt"
	"strings"
)

// blockPhrases are case-insensitive markers of human-verification pages.
// Fixed set; matching any one of them classifies the page as blocked.
var blockPhrases = []string{
	"are you a human",
	"verify you are human",
	"verify you are a human",
	"captcha",
	"unusual traffic",
	"checking your browser",
	"access denied",
	"attention required",
	"pardon our interruption",
	"just a moment",
	"request blocked",
	"enable javascript and cookies to continue",
}

// Classification is the outcome of inspecting a response.
type Classification struct {
	Blocked bool
	// Reason names what triggered the classification: the matched phrase,
	// or the HTTP status for error responses.
	Reason string
}

// Classify inspects a response status and body. A page is blocked when the
// status is a client/server error or the body contains a challenge phrase,
// regardless of status code.
func Classify(status int, body string) Classification {
	lower := strings.ToLower(body)
	for _, phrase := range blockPhrases {
		if strings.Contains(lower, phrase) {
			return Classification{Blocked: true, Reason: "challenge phrase: " + phrase}
		}
	}
	if status >= 400 {
		return Classification{Blocked: true, Reason: statusReason(status)}
	}
	return Classification{}
}

// Blocked is a convenience wrapper for callers that only need the verdict.
func Blocked(status int, body string) bool {
	return Classify(status, body).Blocked
}

func statusReason(status int) string {
	switch {
	case status == 403:
		return "HTTP 403 forbidden"
	case status == 429:
		return "HTTP 429 rate limited"
	case status >= 500:
		return fmt.Sprintf("HTTP %d server error", status)
	default:
		return fmt.Sprintf("HTTP %d client error", status)
	}
}
