// Package report writes terminal findings to disk for human review. The
// engine hands over immutable BookingFinding and ChainCodeResult records;
// the format is this package's concern alone.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/booking-scout/internal/engine"
)

// Report is the on-disk artifact for one run.
type Report struct {
	RunID       uuid.UUID        `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Properties  []PropertyRecord `json:"properties"`
}

// PropertyRecord pairs a property's finding with its chain code.
type PropertyRecord struct {
	Finding   jsonFinding `json:"finding"`
	ChainCode string      `json:"chain_code"`
	// Screenshot is the relative path of the captured evidence image, when
	// one was taken.
	Screenshot string `json:"screenshot,omitempty"`
}

type jsonFinding struct {
	HotelName    string   `json:"hotel_name"`
	Vendor       string   `json:"vendor"`
	EvidenceURL  string   `json:"evidence_url"`
	Confidence   string   `json:"confidence"`
	EvidenceURLs []string `json:"evidence_urls"`
	Notes        string   `json:"notes"`
}

// Writer persists run reports to an output directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Write emits findings.json and summary.csv for the given outcomes and
// returns the paths written.
func (w *Writer) Write(outcomes []engine.Outcome) (jsonPath, csvPath string, err error) {
	report := Report{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Properties:  make([]PropertyRecord, 0, len(outcomes)),
	}
	taken := make(map[string]bool)
	for _, o := range outcomes {
		record := PropertyRecord{
			Finding: jsonFinding{
				HotelName:    o.Finding.HotelName,
				Vendor:       o.Finding.Vendor,
				EvidenceURL:  o.Finding.EvidenceURL,
				Confidence:   string(o.Finding.Confidence),
				EvidenceURLs: o.Finding.EvidenceURLs,
				Notes:        o.Finding.Notes,
			},
			ChainCode: o.ChainCode.Code,
		}
		if len(o.Screenshot) > 0 {
			rel, err := w.writeScreenshot(o.Finding.HotelName, o.Screenshot, taken)
			if err != nil {
				return "", "", err
			}
			record.Screenshot = rel
		}
		report.Properties = append(report.Properties, record)
	}

	jsonPath = filepath.Join(w.dir, "findings.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}

	csvPath = filepath.Join(w.dir, "summary.csv")
	if err := w.writeCSV(csvPath, report); err != nil {
		return "", "", err
	}

	return jsonPath, csvPath, nil
}

// writeScreenshot stores one evidence image under screenshots/ and returns
// its path relative to the report directory. taken tracks filenames already
// used this run so same-named properties do not overwrite each other.
func (w *Writer) writeScreenshot(hotelName string, image []byte, taken map[string]bool) (string, error) {
	name := slugify(hotelName)
	rel := filepath.Join("screenshots", name+".png")
	for n := 2; taken[rel]; n++ {
		rel = filepath.Join("screenshots", fmt.Sprintf("%s-%d.png", name, n))
	}
	taken[rel] = true

	path := filepath.Join(w.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshots directory: %w", err)
	}
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return rel, nil
}

// slugify reduces a property name to a safe lowercase filename stem.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "property"
	}
	return slug
}

func (w *Writer) writeCSV(path string, report Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	header := []string{"hotel_name", "chain_code", "vendor", "confidence", "evidence_url", "evidence_count", "notes"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range report.Properties {
		row := []string{
			p.Finding.HotelName,
			p.ChainCode,
			p.Finding.Vendor,
			p.Finding.Confidence,
			p.Finding.EvidenceURL,
			strconv.Itoa(len(p.Finding.EvidenceURLs)),
			p.Finding.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
