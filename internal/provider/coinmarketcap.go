package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"crypto-volume-toolkit/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	cmcBaseURL  = "https://pro-api.coinmarketcap.com"
	cmcPageSize = 100
	cmcMaxRank  = 1000
)

type CoinMarketCapProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewCoinMarketCapProvider(tracer trace.Tracer, apiKey string) *CoinMarketCapProvider {
	return &CoinMarketCapProvider{
		client:  NewHTTPClient(15 * time.Second),
		baseURL: cmcBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(1, pageInterval),
	}
}

func (p *CoinMarketCapProvider) Name() string          { return "CoinMarketCap" }
func (p *CoinMarketCapProvider) Source() domain.Source { return domain.SourceCoinMarketCap }

// FetchListings walks the latest listings 100 ranks at a time up to rank 1000.
func (p *CoinMarketCapProvider) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	ctx, span := p.tracer.Start(ctx, "coinmarketcap.fetch-listings")
	defer span.End()

	var listings []domain.Listing
	result := pageResult{name: p.Name()}

	for start := 1; start <= cmcMaxRank; start += cmcPageSize {
		rows, err := p.fetchPage(ctx, start)
		if err != nil {
			if ctx.Err() != nil {
				return listings, ctx.Err()
			}
			result.fail(start, err)
			continue
		}
		result.ok()
		listings = append(listings, rows...)
	}

	span.SetAttributes(attribute.Int("listings", len(listings)))
	if err := result.err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch coinmarketcap listings: %w", err)
	}
	return listings, nil
}

func (p *CoinMarketCapProvider) fetchPage(ctx context.Context, start int) ([]domain.Listing, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	q.Set("limit", strconv.Itoa(cmcPageSize))
	q.Set("convert", "USD")
	endpoint := p.baseURL + "/v1/cryptocurrency/listings/latest?" + q.Encode()

	body, err := doWithRetry(ctx, p.client, "coinmarketcap", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-CMC_PRO_API_KEY", p.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data []struct {
			Symbol string `json:"symbol"`
			Quote  struct {
				USD struct {
					Volume24h any `json:"volume_24h"`
					MarketCap any `json:"market_cap"`
				} `json:"USD"`
			} `json:"quote"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse listings from %d: %w", start, err)
	}

	out := make([]domain.Listing, 0, len(raw.Data))
	for _, r := range raw.Data {
		usd := r.Quote.USD
		if l, ok := keepListing(domain.SourceCoinMarketCap, r.Symbol, asFloat(usd.MarketCap), asFloat(usd.Volume24h)); ok {
			out = append(out, l)
		}
	}
	return out, nil
}
