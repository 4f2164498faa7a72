package types

import "fmt"

// Confidence labels how trustworthy the selected evidence is.
type Confidence string

// Confidence levels, ordered from strongest to weakest.
const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
	ConfidenceNone   Confidence = "None"
)

// UnknownVendor is the vendor label used when no signature matched.
const UnknownVendor = "Unknown"

// MaxEvidenceURLs bounds the audit trail kept on a finding.
const MaxEvidenceURLs = 80

// BookingFinding is the terminal artifact for one property. It is assembled
// once at the end of processing, is immutable afterwards, and is handed to
// the report writer.
type BookingFinding struct {
	HotelName    string     `json:"hotel_name"`
	Vendor       string     `json:"vendor"`
	EvidenceURL  string     `json:"evidence_url"`
	Confidence   Confidence `json:"confidence"`
	EvidenceURLs []string   `json:"evidence_urls"`
	Notes        string     `json:"notes"`
}

// Validate checks the finding invariants:
// confidence is None iff the vendor is unknown and no evidence was gathered,
// and the selected evidence URL must appear in the evidence list.
func (f *BookingFinding) Validate() error {
	noneState := f.Vendor == UnknownVendor && len(f.EvidenceURLs) == 0
	if (f.Confidence == ConfidenceNone) != noneState {
		return fmt.Errorf("confidence %q inconsistent with vendor %q and %d evidence URLs",
			f.Confidence, f.Vendor, len(f.EvidenceURLs))
	}
	if len(f.EvidenceURLs) > MaxEvidenceURLs {
		return fmt.Errorf("evidence list exceeds bound: %d > %d", len(f.EvidenceURLs), MaxEvidenceURLs)
	}
	if f.EvidenceURL == "" {
		return nil
	}
	for _, u := range f.EvidenceURLs {
		if u == f.EvidenceURL {
			return nil
		}
	}
	return fmt.Errorf("evidence URL %q not present in evidence list", f.EvidenceURL)
}
