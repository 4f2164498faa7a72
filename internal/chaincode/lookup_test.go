package chaincode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/booking-scout/internal/discovery"
	"github.com/jonathan/booking-scout/internal/llm"
	"github.com/jonathan/booking-scout/internal/types"
)

type fakeClient struct {
	reply string
	err   error
}

func (f *fakeClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return f.reply, f.err
}

func (f *fakeClient) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return f.reply, f.err
}

func (f *fakeClient) Close() error { return nil }

func testIdentity() types.PropertyIdentity {
	return types.PropertyIdentity{RawInput: "The Reeds", CanonicalName: "The Reeds at Shelter Haven"}
}

const codesTable = `<html><body>
	<h2>GDS Reservation Codes</h2>
	<table>
		<tr><th>System</th><th>Code</th></tr>
		<tr><td>Sabre</td><td>WV</td></tr>
		<tr><td>Amadeus</td><td>WV</td></tr>
		<tr><td>Galileo/Apollo</td><td>WV</td></tr>
		<tr><td>Worldspan</td><td>WR</td></tr>
	</table>
</body></html>`

func TestParseReservationCodes_MostFrequentWins(t *testing.T) {
	assert.Equal(t, "WV", ParseReservationCodes(codesTable))
}

func TestParseReservationCodes_NoTable(t *testing.T) {
	assert.Equal(t, "", ParseReservationCodes(`<html><body><p>No codes here.</p></body></html>`))
}

func TestParseReservationCodes_IgnoresNonCodeCells(t *testing.T) {
	html := `<table>
		<tr><td>Sabre</td><td>Not Available</td></tr>
		<tr><td>Amadeus</td><td>toolongcode</td></tr>
		<tr><td>Phone</td><td>WV</td></tr>
	</table>`
	assert.Equal(t, "", ParseReservationCodes(html))
}

func TestParseReservationCodes_TieKeepsFirstSeen(t *testing.T) {
	html := `<table>
		<tr><td>Sabre</td><td>AB</td></tr>
		<tr><td>Amadeus</td><td>CD</td></tr>
	</table>`
	assert.Equal(t, "AB", ParseReservationCodes(html))
}

func TestResolve_FromDirectory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Hotels", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/Hotels/Stone-Harbor-NJ/The-Reeds-p123">The Reeds</a>
		</body></html>`))
	})
	mux.HandleFunc("/Hotels/Stone-Harbor-NJ/The-Reeds-p123", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(codesTable))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := discovery.NewDirectory(srv.URL, nil, zerolog.Nop())
	l := NewLookup(dir, nil, zerolog.Nop())

	got := l.Resolve(context.Background(), testIdentity())
	assert.Equal(t, "WV", got.Code)
	assert.True(t, got.Known())
}

func TestResolve_FallsBackToKnowledgeService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>No results.</p></body></html>`))
	}))
	defer srv.Close()

	dir := discovery.NewDirectory(srv.URL, nil, zerolog.Nop())
	l := NewLookup(dir, &fakeClient{reply: `{"chain_code": "wv"}`}, zerolog.Nop())

	got := l.Resolve(context.Background(), testIdentity())
	assert.Equal(t, "WV", got.Code, "knowledge-service codes are uppercased")
}

func TestResolve_MalformedKnowledgeReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"not a code", `{"chain_code": "definitely not"}`, nil},
		{"wrong key", `{"code": "WV"}`, nil},
		{"service down", "", errors.New("quota exhausted")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLookup(nil, &fakeClient{reply: tt.reply, err: tt.err}, zerolog.Nop())
			got := l.Resolve(context.Background(), testIdentity())
			assert.Equal(t, types.UnknownChainCode, got.Code)
			assert.False(t, got.Known())
		})
	}
}

func TestResolve_NothingConfigured(t *testing.T) {
	l := NewLookup(nil, nil, zerolog.Nop())
	got := l.Resolve(context.Background(), testIdentity())
	assert.Equal(t, types.UnknownChainCode, got.Code)
}

func TestResolve_UnresolvedIdentity(t *testing.T) {
	l := NewLookup(nil, &fakeClient{reply: `{"chain_code": "WV"}`}, zerolog.Nop())
	got := l.Resolve(context.Background(), types.PropertyIdentity{CanonicalName: types.UnknownProperty})
	assert.Equal(t, types.UnknownChainCode, got.Code)
}
