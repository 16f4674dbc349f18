package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crypto-volume-toolkit/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
	coingeckoPages   = 4
	coingeckoPerPage = 250
)

// CoinGeckoProvider scans the top 1000 coins by market cap from the CoinGecko
// markets endpoint. The free tier needs no key; a demo key is sent when set.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewCoinGeckoProvider(tracer trace.Tracer, apiKey string) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  NewHTTPClient(15 * time.Second),
		baseURL: coingeckoBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		tracer:  tracer,
		limiter: NewRateLimiter(1, pageInterval),
	}
}

func (p *CoinGeckoProvider) Name() string          { return "CoinGecko" }
func (p *CoinGeckoProvider) Source() domain.Source { return domain.SourceCoinGecko }

func (p *CoinGeckoProvider) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-listings")
	defer span.End()

	var listings []domain.Listing
	result := pageResult{name: p.Name()}

	for page := 1; page <= coingeckoPages; page++ {
		rows, err := p.fetchPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return listings, ctx.Err()
			}
			result.fail(page, err)
			continue
		}
		result.ok()
		listings = append(listings, rows...)
	}

	span.SetAttributes(attribute.Int("listings", len(listings)))
	if err := result.err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch coingecko markets: %w", err)
	}
	return listings, nil
}

func (p *CoinGeckoProvider) fetchPage(ctx context.Context, page int) ([]domain.Listing, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(coingeckoPerPage))
	q.Set("page", strconv.Itoa(page))
	endpoint := p.baseURL + "/coins/markets?" + q.Encode()

	body, err := doWithRetry(ctx, p.client, "coingecko", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if p.apiKey != "" {
			req.Header.Set("x-cg-demo-api-key", p.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	// Response shape: [{"symbol": "btc", "market_cap": 1.9e12, "total_volume": 4.5e10}, ...]
	var raw []struct {
		Symbol      string `json:"symbol"`
		MarketCap   any    `json:"market_cap"`
		TotalVolume any    `json:"total_volume"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse markets page %d: %w", page, err)
	}

	out := make([]domain.Listing, 0, len(raw))
	for _, r := range raw {
		if l, ok := keepListing(domain.SourceCoinGecko, r.Symbol, asFloat(r.MarketCap), asFloat(r.TotalVolume)); ok {
			out = append(out, l)
		}
	}
	return out, nil
}
