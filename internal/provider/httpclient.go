package provider

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// maxRetries is the number of retries after the first attempt.
const maxRetries = 3

// newRetryBackOff is swapped out in tests so retries do not sleep.
var newRetryBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.MaxInterval = 5 * time.Second
	return b
}

// NewHTTPClient returns a client with explicit transport limits for market data APIs.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// doWithRetry sends the request built by newReq and returns the body of a 200
// response. Transport errors and 429/5xx responses are retried; any other
// status fails immediately with "<name> API error <code>: <body>".
func doWithRetry(ctx context.Context, client *http.Client, name string, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	op := func() ([]byte, error) {
		req, err := newReq(ctx)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		apiErr := fmt.Errorf("%s API error %d: %s", name, resp.StatusCode, string(body))
		if !retryableStatus(resp.StatusCode) {
			return nil, backoff.Permanent(apiErr)
		}
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 && secs <= 30 {
			return nil, fmt.Errorf("%w: %w", apiErr, backoff.RetryAfter(secs))
		}
		return nil, apiErr
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(newRetryBackOff()),
		backoff.WithMaxTries(maxRetries+1),
		backoff.WithMaxElapsedTime(time.Minute),
	)
}
