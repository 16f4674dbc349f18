package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"crypto-volume-toolkit/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const livecoinwatchBaseURL = "https://api.livecoinwatch.com"

// LiveCoinWatchProvider fetches the top 1000 coins in a single POST.
type LiveCoinWatchProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewLiveCoinWatchProvider(tracer trace.Tracer, apiKey string) *LiveCoinWatchProvider {
	return &LiveCoinWatchProvider{
		client:  NewHTTPClient(20 * time.Second),
		baseURL: livecoinwatchBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

func (p *LiveCoinWatchProvider) Name() string          { return "LiveCoinWatch" }
func (p *LiveCoinWatchProvider) Source() domain.Source { return domain.SourceLiveCoinWatch }

type livecoinwatchRequest struct {
	Currency string `json:"currency"`
	Sort     string `json:"sort"`
	Order    string `json:"order"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
	Meta     bool   `json:"meta"`
}

func (p *LiveCoinWatchProvider) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	ctx, span := p.tracer.Start(ctx, "livecoinwatch.fetch-listings")
	defer span.End()

	payload, err := json.Marshal(livecoinwatchRequest{
		Currency: "USD",
		Sort:     "rank",
		Order:    "ascending",
		Offset:   0,
		Limit:    1000,
		Meta:     true,
	})
	if err != nil {
		return nil, err
	}

	body, err := doWithRetry(ctx, p.client, "livecoinwatch", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/coins/list", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("x-api-key", p.apiKey)
		return req, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch livecoinwatch coins: %w", err)
	}

	var raw []struct {
		Code   string `json:"code"`
		Volume any    `json:"volume"`
		Cap    any    `json:"cap"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse livecoinwatch coins: %w", err)
	}

	listings := make([]domain.Listing, 0, len(raw))
	for _, r := range raw {
		if l, ok := keepListing(domain.SourceLiveCoinWatch, r.Code, asFloat(r.Cap), asFloat(r.Volume)); ok {
			listings = append(listings, l)
		}
	}

	span.SetAttributes(attribute.Int("listings", len(listings)))
	return listings, nil
}
