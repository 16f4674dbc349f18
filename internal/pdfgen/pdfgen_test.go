package pdfgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"crypto-volume-toolkit/internal/domain"

	"github.com/cenkalti/backoff/v5"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(status int, body string, check func(*http.Request)) *HTML2PDFClient {
	c := NewHTML2PDFClient("key-123")
	c.endpoint = "http://example/v1/generate"
	c.backOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	c.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if check != nil {
				check(req)
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}
	return c
}

func TestHTML2PDFClientConvert(t *testing.T) {
	t.Parallel()

	c := newTestClient(http.StatusOK, "%PDF-1.7", func(req *http.Request) {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		var body map[string]string
		raw, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["html"] != "<p>hi</p>" || body["apiKey"] != "key-123" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	data, err := c.Convert(context.Background(), "<p>hi</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("unexpected pdf bytes: %q", data)
	}
}

func TestHTML2PDFClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrInvalidAPIKey},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadGateway, ErrServer},
	}
	for _, tt := range tests {
		_, err := newTestClient(tt.status, "", nil).Convert(context.Background(), "<p/>")
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
	}

	_, err := newTestClient(http.StatusBadRequest, "", nil).Convert(context.Background(), "<p/>")
	if err == nil || err.Error() != "html2pdf API error 400" {
		t.Fatalf("unexpected error for 400: %v", err)
	}
}

func newSequenceClient(statuses []int, calls *int) *HTML2PDFClient {
	c := NewHTML2PDFClient("key-123")
	c.endpoint = "http://example/v1/generate"
	c.backOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	c.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			status := statuses[len(statuses)-1]
			if *calls < len(statuses) {
				status = statuses[*calls]
			}
			*calls++
			body := ""
			if status == http.StatusOK {
				body = "%PDF-1.7"
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}
	return c
}

func TestHTML2PDFClientRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	data, err := newSequenceClient([]int{http.StatusServiceUnavailable, http.StatusOK}, &calls).Convert(context.Background(), "<p/>")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("unexpected result calls=%d data=%q", calls, data)
	}

	calls = 0
	_, err = newSequenceClient([]int{http.StatusTooManyRequests}, &calls).Convert(context.Background(), "<p/>")
	if !errors.Is(err, ErrRateLimited) || calls != html2pdfRetries+1 {
		t.Fatalf("expected ErrRateLimited after %d calls, got %v after %d", html2pdfRetries+1, err, calls)
	}

	for _, status := range []int{http.StatusUnauthorized, http.StatusBadRequest} {
		calls = 0
		if _, err := newSequenceClient([]int{status}, &calls).Convert(context.Background(), "<p/>"); err == nil || calls != 1 {
			t.Fatalf("status %d: expected one attempt and an error, got calls=%d err=%v", status, calls, err)
		}
	}
}

func TestSelect(t *testing.T) {
	withKey := domain.APIKeys{HTML2PDF: "real-key"}
	placeholder := domain.APIKeys{HTML2PDF: domain.PlaceholderHTML2PDF}

	tests := []struct {
		engine string
		keys   domain.APIKeys
		want   string
		err    bool
	}{
		{"auto", withKey, "html2pdf.app", false},
		{"", placeholder, "headless Chrome", false},
		{"api", withKey, "html2pdf.app", false},
		{"api", placeholder, "", true},
		{"chrome", withKey, "headless Chrome", false},
		{"wkhtml", withKey, "", true},
	}
	for _, tt := range tests {
		c, err := Select(tt.engine, tt.keys)
		if tt.err {
			if err == nil {
				t.Fatalf("%q: expected error", tt.engine)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.engine, err)
		}
		if c.Name() != tt.want {
			t.Fatalf("%q: expected %s, got %s", tt.engine, tt.want, c.Name())
		}
	}
}
