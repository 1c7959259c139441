// Package universe supplies the equity and commodity symbol lists consumed
// by the training pipeline.
package universe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/magicstocks/calendar/pkg/config"
	"github.com/magicstocks/calendar/pkg/httputil"
	"github.com/magicstocks/calendar/pkg/logger"
)

// Provider downloads and parses exchange bulk-listing feeds. Successful
// downloads are cached on disk; when a feed is unreachable the provider
// falls back to the cached copy, and to an empty list when neither exists.
type Provider struct {
	httpClient *httputil.Client
	nasdaqURL  string
	otherURL   string
	cacheDir   string
	logger     *logger.Logger
}

// NewProvider creates a universe provider.
func NewProvider(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Provider {
	return &Provider{
		httpClient: httpClient,
		nasdaqURL:  cfg.Universe.NasdaqListedURL,
		otherURL:   cfg.Universe.OtherListedURL,
		cacheDir:   cfg.Universe.CacheDir,
		logger:     log.WithField("module", "universe"),
	}
}

// EquitySymbols returns listed equity tickers from both exchange feeds,
// deduplicated in first-seen order. limit <= 0 means no truncation.
// A feed failure never produces an error; it degrades to the cached or
// empty list.
func (p *Provider) EquitySymbols(ctx context.Context, limit int) []string {
	symbols := append(
		p.fetchListing(ctx, p.nasdaqURL, "nasdaqlisted.txt"),
		p.fetchListing(ctx, p.otherURL, "otherlisted.txt")...,
	)

	seen := make(map[string]struct{}, len(symbols))
	uniq := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}

	if limit > 0 && len(uniq) > limit {
		uniq = uniq[:limit]
	}

	p.logger.WithFields(map[string]interface{}{
		"count": len(uniq),
		"limit": limit,
	}).Debug("Equity universe assembled")
	return uniq
}

// CommoditySymbols returns the fixed futures ticker table. It is static and
// never fetched externally.
func (p *Provider) CommoditySymbols() []string {
	return []string{
		"GC=F", // Gold
		"SI=F", // Silver
		"PL=F", // Platinum
		"HG=F", // Copper
		"CL=F", // Crude Oil WTI
		"BZ=F", // Brent
		"NG=F", // Natural Gas
		"ZC=F", // Corn
		"ZW=F", // Wheat
		"ZS=F", // Soybeans
		"KC=F", // Coffee
		"SB=F", // Sugar
		"CT=F", // Cotton
	}
}

// fetchListing downloads one pipe-delimited listing feed, refreshing the
// disk cache on success and reading it back on failure.
func (p *Provider) fetchListing(ctx context.Context, url, filename string) []string {
	cachePath := filepath.Join(p.cacheDir, filename)

	content, err := p.download(ctx, url)
	if err != nil {
		p.logger.WithError(err).WithField("url", url).Warn("Listing download failed, trying disk cache")
		cached, readErr := os.ReadFile(cachePath)
		if readErr != nil {
			p.logger.WithField("path", cachePath).Warn("No cached listing available")
			return nil
		}
		content = cached
	} else {
		if err := os.MkdirAll(p.cacheDir, 0o755); err == nil {
			if err := os.WriteFile(cachePath, content, 0o644); err != nil {
				p.logger.WithError(err).Debug("Listing cache write failed")
			}
		}
	}

	return parseListing(string(content))
}

func (p *Provider) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := p.httpClient.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// parseListing extracts the symbol column from a pipe-delimited feed,
// skipping the header and the "File Creation Time" footer and dropping
// test issues that carry a $ suffix.
func parseListing(content string) []string {
	var symbols []string

	for i, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		if i == 0 {
			// Header line ("Symbol|..." or "ACT Symbol|...")
			continue
		}

		sym := strings.TrimSpace(strings.SplitN(line, "|", 2)[0])
		if sym == "" || strings.HasPrefix(sym, "File Creation Time") {
			continue
		}
		if strings.Contains(sym, "$") {
			continue
		}
		if !isUpperTicker(sym) {
			continue
		}

		symbols = append(symbols, sym)
	}

	return symbols
}

// isUpperTicker reports whether s contains at least one letter and no
// lowercase letters.
func isUpperTicker(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
