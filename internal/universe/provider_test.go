package universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicstocks/calendar/pkg/config"
	"github.com/magicstocks/calendar/pkg/httputil"
	"github.com/magicstocks/calendar/pkg/logger"
)

const nasdaqFeed = `Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares
AAPL|Apple Inc. - Common Stock|Q|N|N|100|N|N
MSFT|Microsoft Corporation - Common Stock|Q|N|N|100|N|N
ZVZZT|NASDAQ TEST STOCK|G|Y|N|100|N|N
ABCD$|Test Preferred|Q|N|N|100|N|N
File Creation Time: 0812202521:30|||||||
`

const otherFeed = `ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol
A|Agilent Technologies, Inc. Common Stock|N|A|N|100|N|A
MSFT|Microsoft Corporation - Common Stock|N|MSFT|N|100|N|MSFT
BRK.B|Berkshire Hathaway Inc. Class B|N|BRK B|N|100|N|BRK/B
File Creation Time: 0812202521:30|||||||
`

func newTestProvider(t *testing.T, nasdaqURL, otherURL string) *Provider {
	t.Helper()

	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	cfg := &config.Config{}
	cfg.Universe.NasdaqListedURL = nasdaqURL
	cfg.Universe.OtherListedURL = otherURL
	cfg.Universe.CacheDir = t.TempDir()

	return NewProvider(cfg, httputil.New(log).DisableRetry(), log)
}

func TestEquitySymbolsParsesAndDedupes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/nasdaq" {
			w.Write([]byte(nasdaqFeed))
			return
		}
		w.Write([]byte(otherFeed))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL+"/nasdaq", server.URL+"/other")
	symbols := p.EquitySymbols(context.Background(), 0)

	// MSFT appears in both feeds but is kept once, in first-seen order.
	assert.Equal(t, []string{"AAPL", "MSFT", "ZVZZT", "A", "BRK.B"}, symbols)
}

func TestEquitySymbolsExcludesDollarSuffix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nasdaqFeed))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, server.URL)
	symbols := p.EquitySymbols(context.Background(), 0)

	assert.NotContains(t, symbols, "ABCD$")
}

func TestEquitySymbolsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nasdaqFeed))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, server.URL)
	symbols := p.EquitySymbols(context.Background(), 2)

	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestEquitySymbolsFallsBackToDiskCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL+"/nasdaq", server.URL+"/other")
	require.NoError(t, os.WriteFile(filepath.Join(p.cacheDir, "nasdaqlisted.txt"), []byte(nasdaqFeed), 0o644))

	symbols := p.EquitySymbols(context.Background(), 0)

	assert.Equal(t, []string{"AAPL", "MSFT", "ZVZZT"}, symbols)
}

func TestEquitySymbolsEmptyWhenNothingAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, server.URL)
	symbols := p.EquitySymbols(context.Background(), 0)

	assert.Empty(t, symbols)
}

func TestEquitySymbolsRefreshesDiskCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nasdaqFeed))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL+"/nasdaq", server.URL+"/other")
	p.EquitySymbols(context.Background(), 0)

	cached, err := os.ReadFile(filepath.Join(p.cacheDir, "nasdaqlisted.txt"))
	require.NoError(t, err)
	assert.Equal(t, nasdaqFeed, string(cached))
}

func TestCommoditySymbolsStatic(t *testing.T) {
	p := newTestProvider(t, "", "")

	symbols := p.CommoditySymbols()
	assert.Len(t, symbols, 13)
	assert.Contains(t, symbols, "GC=F")
	assert.Contains(t, symbols, "CL=F")
	assert.Contains(t, symbols, "ZC=F")
}

func TestParseListingSkipsHeaderAndFooter(t *testing.T) {
	symbols := parseListing(nasdaqFeed)

	assert.NotContains(t, symbols, "Symbol")
	for _, s := range symbols {
		assert.NotContains(t, s, "File Creation Time")
	}
}

func TestParseListingUppercaseOnly(t *testing.T) {
	feed := "Symbol|Name\nGOOD|ok\nbad|lowercase\nMiXd|mixed\n123|digits only\n"

	assert.Equal(t, []string{"GOOD"}, parseListing(feed))
}
