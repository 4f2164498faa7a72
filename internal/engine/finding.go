package engine

import (
	"strings"

	"github.com/jonathan/booking-scout/internal/types"
	"github.com/jonathan/booking-scout/internal/vendor"
)

// noteList accumulates human-readable notes during a run. Owned by a single
// worker; no synchronization needed.
type noteList struct {
	notes []string
}

func newNoteList() *noteList { return &noteList{} }

func (n *noteList) add(note string) {
	n.notes = append(n.notes, note)
}

func (n *noteList) join() string {
	return strings.Join(n.notes, "; ")
}

// assembleFinding builds the terminal artifact. The full considered-evidence
// list is retained (bounded) regardless of which candidate won, so a human
// reviewer can audit the decision.
func assembleFinding(ident types.PropertyIdentity, candidates []types.Candidate, best vendor.Scored, found bool, notes *noteList) types.BookingFinding {
	evidenceURLs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if len(evidenceURLs) == types.MaxEvidenceURLs {
			break
		}
		evidenceURLs = append(evidenceURLs, c.URL)
	}

	// The selected candidate always keeps a slot in the bounded audit trail,
	// even when truncation dropped its original position.
	if found && !containsURL(evidenceURLs, best.Candidate.URL) {
		if len(evidenceURLs) == types.MaxEvidenceURLs {
			evidenceURLs[len(evidenceURLs)-1] = best.Candidate.URL
		} else {
			evidenceURLs = append(evidenceURLs, best.Candidate.URL)
		}
	}

	finding := types.BookingFinding{
		HotelName:    ident.CanonicalName,
		Vendor:       types.UnknownVendor,
		Confidence:   types.ConfidenceLow,
		EvidenceURLs: evidenceURLs,
	}

	if found {
		finding.Vendor = best.Vendor
		finding.EvidenceURL = best.Candidate.URL
		finding.Confidence = confidenceFor(best.Strength)
		if best.BodyVendor != "" && best.Vendor == vendor.UnknownVendor {
			notes.add("page body embeds vendor host for " + best.BodyVendor)
		}
	}

	// Nothing at all to show for this property: unknown vendor with an
	// empty evidence list reports no confidence rather than low.
	if finding.Vendor == types.UnknownVendor && len(finding.EvidenceURLs) == 0 {
		finding.Confidence = types.ConfidenceNone
	}

	finding.Notes = notes.join()
	return finding
}

func containsURL(urls []string, target string) bool {
	for _, u := range urls {
		if u == target {
			return true
		}
	}
	return false
}

// degradedFinding is the totality fallback used when processing failed
// outright: the run still yields exactly one finding.
func degradedFinding(ident types.PropertyIdentity, notes *noteList) types.BookingFinding {
	name := ident.CanonicalName
	if name == "" {
		name = types.UnknownProperty
	}
	return types.BookingFinding{
		HotelName:  name,
		Vendor:     types.UnknownVendor,
		Confidence: types.ConfidenceNone,
		Notes:      notes.join(),
	}
}

// confidenceFor maps a classification strength onto the finding-level
// confidence label.
func confidenceFor(s vendor.Strength) types.Confidence {
	switch s {
	case vendor.StrengthHigh:
		return types.ConfidenceHigh
	case vendor.StrengthMedium:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}
