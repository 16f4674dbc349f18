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
	coinrankingsBaseURL  = "https://api.coinranking.com"
	coinrankingsPageSize = 100
	coinrankingsMaxCoins = 1000
)

// CoinRankingsProvider pages through api.coinranking.com ordered by market cap.
// The API returns numbers as JSON strings.
type CoinRankingsProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewCoinRankingsProvider(tracer trace.Tracer, apiKey string) *CoinRankingsProvider {
	return &CoinRankingsProvider{
		client:  NewHTTPClient(15 * time.Second),
		baseURL: coinrankingsBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(1, pageInterval),
	}
}

func (p *CoinRankingsProvider) Name() string          { return "CoinRankings" }
func (p *CoinRankingsProvider) Source() domain.Source { return domain.SourceCoinRankings }

func (p *CoinRankingsProvider) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	ctx, span := p.tracer.Start(ctx, "coinrankings.fetch-listings")
	defer span.End()

	var listings []domain.Listing
	result := pageResult{name: p.Name()}

	for offset := 0; offset < coinrankingsMaxCoins; offset += coinrankingsPageSize {
		rows, err := p.fetchPage(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return listings, ctx.Err()
			}
			result.fail(offset, err)
			continue
		}
		result.ok()
		listings = append(listings, rows...)
	}

	span.SetAttributes(attribute.Int("listings", len(listings)))
	if err := result.err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch coinrankings coins: %w", err)
	}
	return listings, nil
}

func (p *CoinRankingsProvider) fetchPage(ctx context.Context, offset int) ([]domain.Listing, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(coinrankingsPageSize))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("orderBy", "marketCap")
	q.Set("orderDirection", "desc")
	endpoint := p.baseURL + "/v2/coins?" + q.Encode()

	body, err := doWithRetry(ctx, p.client, "coinrankings", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-access-token", p.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data struct {
			Coins []struct {
				Symbol    string `json:"symbol"`
				MarketCap any    `json:"marketCap"`
				Volume24h any    `json:"24hVolume"`
			} `json:"coins"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse coins at offset %d: %w", offset, err)
	}

	out := make([]domain.Listing, 0, len(raw.Data.Coins))
	for _, c := range raw.Data.Coins {
		if l, ok := keepListing(domain.SourceCoinRankings, c.Symbol, asFloat(c.MarketCap), asFloat(c.Volume24h)); ok {
			out = append(out, l)
		}
	}
	return out, nil
}
