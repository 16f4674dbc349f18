package provider

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"crypto-volume-toolkit/internal/domain"
)

// prefilterRatio is the minimum volume/market cap ratio a row needs before
// it is considered for cross-source verification.
const prefilterRatio = 0.75

// pageInterval is the minimum spacing between paginated requests.
const pageInterval = 200 * time.Millisecond

// ListingProvider fetches spot listings from one market data source.
type ListingProvider interface {
	Name() string
	Source() domain.Source
	FetchListings(ctx context.Context) ([]domain.Listing, error)
}

// keepListing applies the stablecoin filter and the volume prefilter.
func keepListing(source domain.Source, symbol string, marketCap, volume float64) (domain.Listing, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || domain.IsStablecoin(symbol) {
		return domain.Listing{}, false
	}
	if marketCap == 0 || volume <= prefilterRatio*marketCap {
		return domain.Listing{}, false
	}
	return domain.Listing{Symbol: symbol, MarketCap: marketCap, Volume: volume, Source: source}, true
}

// pageResult tracks paginated fetches so a provider fails only when every
// page failed.
type pageResult struct {
	name     string
	pages    int
	failures int
	lastErr  error
}

func (r *pageResult) fail(page int, err error) {
	r.pages++
	r.failures++
	r.lastErr = err
	log.Printf("%s page %d skipped: %v", r.name, page, err)
}

func (r *pageResult) ok() {
	r.pages++
}

func (r *pageResult) err() error {
	if r.pages > 0 && r.failures == r.pages {
		return r.lastErr
	}
	return nil
}

// asFloat accepts the number encodings the providers use: JSON numbers,
// numeric strings and nulls.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		return parseFloatString(n)
	default:
		return 0
	}
}

func parseFloatString(v string) float64 {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return n
}
