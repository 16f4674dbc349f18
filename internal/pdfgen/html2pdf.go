package pdfgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const html2pdfURL = "https://api.html2pdf.app/v1/generate"

// html2pdfRetries is the number of retries after the first attempt.
const html2pdfRetries = 3

var (
	ErrInvalidAPIKey = errors.New("html2pdf: invalid API key")
	ErrRateLimited   = errors.New("html2pdf: rate limit exceeded")
	ErrServer        = errors.New("html2pdf: server error")
)

// HTML2PDFClient converts documents with the html2pdf.app API.
type HTML2PDFClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	backOff  func() backoff.BackOff
}

func NewHTML2PDFClient(apiKey string) *HTML2PDFClient {
	return &HTML2PDFClient{
		client:   &http.Client{Timeout: 30 * time.Second},
		endpoint: html2pdfURL,
		apiKey:   apiKey,
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.Multiplier = 2
			b.MaxInterval = 4 * time.Second
			return b
		},
	}
}

func (c *HTML2PDFClient) Name() string { return "html2pdf.app" }

// Convert posts html to the API. Transport errors, 429 and 5xx responses are
// retried; 401 and other client errors fail on the first attempt.
func (c *HTML2PDFClient) Convert(ctx context.Context, html string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"html":   html,
		"apiKey": c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("html2pdf request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return io.ReadAll(resp.Body)
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, backoff.Permanent(ErrInvalidAPIKey)
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, ErrRateLimited
		case resp.StatusCode >= http.StatusInternalServerError:
			return nil, fmt.Errorf("%w (%d)", ErrServer, resp.StatusCode)
		default:
			return nil, backoff.Permanent(fmt.Errorf("html2pdf API error %d", resp.StatusCode))
		}
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(html2pdfRetries+1),
		backoff.WithMaxElapsedTime(time.Minute),
	)
}
