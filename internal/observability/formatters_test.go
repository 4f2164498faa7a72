package observability

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/booking-scout/internal/engine"
	"github.com/jonathan/booking-scout/internal/types"
)

func TestPrintOutcome_TruncatesByRune(t *testing.T) {
	name := strings.Repeat("Hôtel Châteaû ", 10) // well past the box width

	var sb strings.Builder
	p := NewPrinter(&sb)
	p.PrintOutcome(&engine.Outcome{
		Finding: types.BookingFinding{
			HotelName:  name,
			Vendor:     types.UnknownVendor,
			Confidence: types.ConfidenceNone,
		},
		ChainCode: types.ChainCodeResult{Code: types.UnknownChainCode},
		State:     engine.StateDone,
	})

	out := sb.String()
	assert.True(t, utf8.ValidString(out), "truncation must never split a multi-byte rune")
	assert.Contains(t, out, "Booking Finding")
	assert.Contains(t, out, "...")
}

func TestPrintOutcome_NilIsNoop(t *testing.T) {
	var sb strings.Builder
	NewPrinter(&sb).PrintOutcome(nil)
	assert.Empty(t, sb.String())
}
