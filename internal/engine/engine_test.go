package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/booking-scout/internal/fetch"
	"github.com/jonathan/booking-scout/internal/types"
)

// emptySearchPage satisfies the web-search strategy without contributing
// candidates.
const emptySearchPage = `<html><body><p>No results.</p></body></html>`

func testConfig(srvURL string) Config {
	cfg := DefaultConfig()
	cfg.Log = zerolog.Nop()
	cfg.RunTimeout = 30 * time.Second
	cfg.FetchTimeout = 5 * time.Second
	cfg.DirectoryBase = srvURL
	cfg.SearchEndpoint = srvURL + "/search"
	return cfg
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(context.Background(), cfg)
	require.NoError(t, err)
	return e
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RunTimeout = 0
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.MaxProbes = 500
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestProcess_Totality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchPage))
	}))
	defer srv.Close()

	e := newEngine(t, testConfig(srv.URL))

	inputs := []string{
		"",
		"   \n\t  ",
		strings.Repeat("lorem ipsum dolor sit amet ", 400), // ~10k chars, no name
	}
	for _, input := range inputs {
		outcome := e.Process(context.Background(), input)
		assert.Equal(t, StateDone, outcome.State)
		assert.NoError(t, outcome.Finding.Validate())
		assert.Equal(t, types.UnknownVendor, outcome.Finding.Vendor)
		assert.Equal(t, types.ConfidenceNone, outcome.Finding.Confidence)
		assert.Equal(t, types.UnknownChainCode, outcome.ChainCode.Code)
		assert.NotEmpty(t, outcome.Finding.Notes)
	}
}

func TestProcess_VendorSignatureMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchPage))
	})
	mux.HandleFunc("/Hotels", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/Hotels/Stone-Harbor-NJ/The-Reeds-p123">The Reeds at Shelter Haven</a>
		</body></html>`))
	})
	mux.HandleFunc("/Hotels/Stone-Harbor-NJ/The-Reeds-p123", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/be.synxis.com/rez">Book now</a>
			<table>
				<tr><td>Sabre</td><td>WV</td></tr>
				<tr><td>Amadeus</td><td>WV</td></tr>
			</table>
		</body></html>`))
	})
	mux.HandleFunc("/be.synxis.com/rez", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Select your dates</h1></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := newEngine(t, testConfig(srv.URL))
	outcome := e.Process(context.Background(), "The Reeds at Shelter Haven")

	require.Equal(t, StateDone, outcome.State)
	require.NoError(t, outcome.Finding.Validate())
	assert.Equal(t, "The Reeds at Shelter Haven", outcome.Finding.HotelName)
	assert.Equal(t, "SynXis (Sabre Hospitality)", outcome.Finding.Vendor)
	assert.Equal(t, types.ConfidenceHigh, outcome.Finding.Confidence)
	assert.Equal(t, srv.URL+"/be.synxis.com/rez", outcome.Finding.EvidenceURL)
	assert.Contains(t, outcome.Finding.EvidenceURLs, outcome.Finding.EvidenceURL)
	assert.Equal(t, "WV", outcome.ChainCode.Code)
}

func TestProcess_BlockedCandidateIsNeverSelected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchPage))
	})
	mux.HandleFunc("/Hotels", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/Hotels/Stone-Harbor-NJ/The-Reeds-p123">The Reeds at Shelter Haven</a>
		</body></html>`))
	})
	mux.HandleFunc("/Hotels/Stone-Harbor-NJ/The-Reeds-p123", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/reservations">Reserve</a>
			<a href="/availability">Availability</a>
		</body></html>`))
	})
	mux.HandleFunc("/reservations", func(w http.ResponseWriter, _ *http.Request) {
		// A wall served with a success status.
		_, _ = w.Write([]byte(`<html><head><title>Access Denied</title></head><body>Access Denied</body></html>`))
	})
	mux.HandleFunc("/availability", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Choose a room</h1></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := newEngine(t, testConfig(srv.URL))
	outcome := e.Process(context.Background(), "The Reeds at Shelter Haven")

	require.NoError(t, outcome.Finding.Validate())
	assert.Equal(t, srv.URL+"/availability", outcome.Finding.EvidenceURL)
	assert.Equal(t, types.ConfidenceMedium, outcome.Finding.Confidence)
	// The blocked candidate stays in the audit trail and is explained.
	assert.Contains(t, outcome.Finding.EvidenceURLs, srv.URL+"/reservations")
	assert.Contains(t, outcome.Finding.Notes, "blocked at "+srv.URL+"/reservations")
}

func TestProcess_AllCandidatesBlocked(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchPage))
	})
	mux.HandleFunc("/Hotels", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/Hotels/Somewhere/The-Reeds-p123">The Reeds at Shelter Haven</a>
		</body></html>`))
	})
	mux.HandleFunc("/Hotels/Somewhere/The-Reeds-p123", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/book-now">Book</a></body></html>`))
	})
	mux.HandleFunc("/book-now", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>Please verify you are human to continue.</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := newEngine(t, testConfig(srv.URL))
	outcome := e.Process(context.Background(), "The Reeds at Shelter Haven")

	require.NoError(t, outcome.Finding.Validate())
	assert.Equal(t, types.UnknownVendor, outcome.Finding.Vendor)
	assert.Empty(t, outcome.Finding.EvidenceURL)
	// Evidence was gathered even though none could be selected.
	assert.Equal(t, types.ConfidenceLow, outcome.Finding.Confidence)
	assert.NotEmpty(t, outcome.Finding.EvidenceURLs)
	assert.Contains(t, outcome.Finding.Notes, "blocked at")
}

func TestProcess_HeuristicDomainContributes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchPage))
	})
	mux.HandleFunc("/Hotels", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchPage))
	})
	mux.HandleFunc("/book", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script src="https://be.synxis.com/widget.js"></script>Book here</body></html>`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.OfficialDomain = srv.URL
	e := newEngine(t, cfg)

	outcome := e.Process(context.Background(), "The Reeds at Shelter Haven")
	require.NoError(t, outcome.Finding.Validate())
	// /book resolved with a vendor host embedded in its body.
	assert.Equal(t, srv.URL+"/book", outcome.Finding.EvidenceURL)
	assert.Equal(t, types.ConfidenceMedium, outcome.Finding.Confidence)
}

func captureTestServer() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchPage))
	})
	mux.HandleFunc("/Hotels", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/Hotels/Somewhere/The-Reeds-p123">The Reeds at Shelter Haven</a>
		</body></html>`))
	})
	mux.HandleFunc("/Hotels/Somewhere/The-Reeds-p123", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/be.synxis.com/rez">Book</a></body></html>`))
	})
	mux.HandleFunc("/be.synxis.com/rez", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Select your dates</h1></body></html>`))
	})
	return mux
}

func TestProcess_CaptureStoresScreenshot(t *testing.T) {
	srv := httptest.NewServer(captureTestServer())
	defer srv.Close()

	e := newEngine(t, testConfig(srv.URL))
	e.captureFn = func(_ context.Context, url string) (*fetch.Capture, error) {
		return &fetch.Capture{
			FinalURL:   url,
			HTML:       `<html><body><h1>Select your dates</h1></body></html>`,
			Screenshot: []byte("png bytes"),
		}, nil
	}

	outcome := e.Process(context.Background(), "The Reeds at Shelter Haven")
	require.NoError(t, outcome.Finding.Validate())
	assert.Equal(t, []byte("png bytes"), outcome.Screenshot)
}

func TestProcess_CaptureKeepsWallScreenshot(t *testing.T) {
	srv := httptest.NewServer(captureTestServer())
	defer srv.Close()

	e := newEngine(t, testConfig(srv.URL))
	e.captureFn = func(_ context.Context, url string) (*fetch.Capture, error) {
		return &fetch.Capture{
			FinalURL:   url,
			HTML:       `<html><body>Please verify you are human.</body></html>`,
			Screenshot: []byte("wall png"),
		}, nil
	}

	outcome := e.Process(context.Background(), "The Reeds at Shelter Haven")
	require.NoError(t, outcome.Finding.Validate())
	assert.Contains(t, outcome.Finding.Notes, "verification wall during capture")
	assert.Equal(t, []byte("wall png"), outcome.Screenshot, "the wall image documents what blocked verification")
}

func TestProcessBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(emptySearchPage))
	}))
	defer srv.Close()

	e := newEngine(t, testConfig(srv.URL))

	inputs := []string{"Hotel One", "Hotel Two", "Hotel Three"}
	outcomes := e.ProcessBatch(context.Background(), inputs, 2)
	require.Len(t, outcomes, len(inputs))
	for i, outcome := range outcomes {
		assert.Equal(t, inputs[i], outcome.Finding.HotelName, "outcome order matches input order")
		assert.Equal(t, StateDone, outcome.State)
		assert.NoError(t, outcome.Finding.Validate())
	}
}
