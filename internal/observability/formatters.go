// Package observability provides formatted output utilities for verbose CLI
// mode, plus the logger constructor shared by the commands.
package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/booking-scout/internal/engine"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// NewLogger returns a zerolog Logger. Verbose mode enables debug level with
// a human-friendly console writer.
func NewLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate by rune so multi-byte property names are never split
		// mid-character.
		if runes := []rune(line); len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintOutcome outputs a human-readable summary of one property's result.
func (p *Printer) PrintOutcome(o *engine.Outcome) {
	if o == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hotel:      %s\n", o.Finding.HotelName))
	sb.WriteString(fmt.Sprintf("Chain code: %s\n", o.ChainCode.Code))
	sb.WriteString(fmt.Sprintf("Vendor:     %s\n", o.Finding.Vendor))
	sb.WriteString(fmt.Sprintf("Confidence: %s\n", o.Finding.Confidence))
	if o.Finding.EvidenceURL != "" {
		sb.WriteString(fmt.Sprintf("Evidence:   %s\n", o.Finding.EvidenceURL))
	}

	if len(o.Finding.EvidenceURLs) > 0 {
		sb.WriteString("\nConsidered URLs:\n")
		count := len(o.Finding.EvidenceURLs)
		if count > maxItemsToShow {
			count = maxItemsToShow
		}
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", o.Finding.EvidenceURLs[i]))
		}
		if len(o.Finding.EvidenceURLs) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(o.Finding.EvidenceURLs)-maxItemsToShow))
		}
	}

	if o.Finding.Notes != "" {
		sb.WriteString("\nNotes: " + o.Finding.Notes + "\n")
	}

	p.printBox("Booking Finding", sb.String())
}
