// Package mcpserver exposes the spot scan and futures signals as MCP tools.
package mcpserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/futures"
	"crypto-volume-toolkit/internal/service"
	"crypto-volume-toolkit/internal/workspace"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	Name    = "crypto-volume-toolkit"
	Version = "1.0.0"

	// DefaultTopN caps the tokens returned by the scan tools.
	DefaultTopN = 25
)

type Scanner interface {
	Run(ctx context.Context, uid string) (*service.SpotResult, error)
	LatestScan(uid string) (*domain.SpotScan, bool)
}

type ReportLister interface {
	ListReports(uid string) ([]workspace.File, error)
}

type Config struct {
	Tracer     trace.Tracer
	Scanner    Scanner
	Reports    ReportLister
	DefaultUID string
	Timeout    time.Duration
}

type Server struct {
	tracer     trace.Tracer
	scanner    Scanner
	reports    ReportLister
	defaultUID string
	timeout    time.Duration
}

func New(cfg Config) *Server {
	uid := cfg.DefaultUID
	if uid == "" {
		uid = "mcp"
	}
	return &Server{
		tracer:     cfg.Tracer,
		scanner:    cfg.Scanner,
		reports:    cfg.Reports,
		defaultUID: uid,
		timeout:    cfg.Timeout,
	}
}

type UserInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"workspace user, defaults to the server's user"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum tokens to return, default 25"`
}

type ScanOutput struct {
	UserID      string             `json:"user_id"`
	GeneratedAt string             `json:"generated_at,omitempty"`
	Total       int                `json:"total"`
	HighVolume  int                `json:"high_volume"`
	LargeCaps   int                `json:"large_caps"`
	PeakVTMR    float64            `json:"peak_vtmr"`
	Tokens      []domain.SpotToken `json:"tokens"`
	HTMLReport  string             `json:"html_report,omitempty"`
	XLSXReport  string             `json:"xlsx_report,omitempty"`
}

type ReportsInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"workspace user, defaults to the server's user"`
}

type ReportFile struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time"`
}

type ReportsOutput struct {
	UserID  string       `json:"user_id"`
	Reports []ReportFile `json:"reports"`
}

type SignalInput struct {
	OIChange    string `json:"oi_change" jsonschema:"24h open interest change, e.g. +12.5%"`
	FundingRate string `json:"funding_rate,omitempty" jsonschema:"funding rate, e.g. 0.01%"`
}

type SignalOutput struct {
	OISSScore    int    `json:"oiss_score"`
	OISSLabel    string `json:"oiss_label"`
	OIChange     string `json:"oi_change"`
	FundingRate  string `json:"funding_rate"`
	FundingLabel string `json:"funding_label,omitempty"`
}

// MCP builds the protocol server with every tool registered.
func (s *Server) MCP() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "spot_scan",
		Description: "Scan CoinGecko, CoinMarketCap, LiveCoinWatch and CoinRankings for tokens whose 24h volume rivals their market cap.",
	}, s.SpotScan)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "latest_scan",
		Description: "Return the most recent spot scan without fetching new data.",
	}, s.LatestScan)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_reports",
		Description: "List generated spot and cross-market reports, newest first.",
	}, s.ListReports)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "futures_signal",
		Description: "Score an open interest change (OISS 0-5) and classify a funding rate.",
	}, s.FuturesSignal)
	return srv
}

func (s *Server) uid(in string) string {
	if in = strings.TrimSpace(in); in != "" {
		return in
	}
	return s.defaultUID
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Server) SpotScan(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, ScanOutput, error) {
	ctx, span := s.tracer.Start(ctx, "mcp.spot-scan")
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	uid := s.uid(in.UserID)
	span.SetAttributes(attribute.String("uid", uid))

	res, err := s.scanner.Run(ctx, uid)
	if err != nil {
		span.RecordError(err)
		return nil, ScanOutput{}, fmt.Errorf("spot scan: %w", err)
	}
	out := summarize(uid, res.Scan, in.Limit)
	out.HTMLReport, out.XLSXReport = res.HTMLPath, res.XLSXPath
	return nil, out, nil
}

func (s *Server) LatestScan(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, ScanOutput, error) {
	_, span := s.tracer.Start(ctx, "mcp.latest-scan")
	defer span.End()

	uid := s.uid(in.UserID)
	scan, ok := s.scanner.LatestScan(uid)
	if !ok {
		return nil, ScanOutput{}, fmt.Errorf("no spot scan for %s yet, call spot_scan first", uid)
	}
	return nil, summarize(uid, scan, in.Limit), nil
}

func (s *Server) ListReports(ctx context.Context, _ *mcp.CallToolRequest, in ReportsInput) (*mcp.CallToolResult, ReportsOutput, error) {
	_, span := s.tracer.Start(ctx, "mcp.list-reports")
	defer span.End()

	uid := s.uid(in.UserID)
	files, err := s.reports.ListReports(uid)
	if err != nil {
		span.RecordError(err)
		return nil, ReportsOutput{}, fmt.Errorf("list reports: %w", err)
	}
	out := ReportsOutput{UserID: uid, Reports: make([]ReportFile, 0, len(files))}
	for _, f := range files {
		out.Reports = append(out.Reports, ReportFile{Name: f.Name, Size: f.Size, ModTime: f.ModTime.Format(time.RFC3339)})
	}
	return nil, out, nil
}

var errNoOIChange = errors.New("oi_change is missing or not a percentage")

func (s *Server) FuturesSignal(ctx context.Context, _ *mcp.CallToolRequest, in SignalInput) (*mcp.CallToolResult, SignalOutput, error) {
	_, span := s.tracer.Start(ctx, "mcp.futures-signal")
	defer span.End()

	sig, ok := futures.OISS(in.OIChange)
	if !ok {
		return nil, SignalOutput{}, errNoOIChange
	}
	funding := futures.Funding(in.FundingRate)
	return nil, SignalOutput{
		OISSScore:    sig.Score,
		OISSLabel:    sig.Label,
		OIChange:     sig.Percent,
		FundingRate:  funding.Value,
		FundingLabel: funding.Label,
	}, nil
}

func summarize(uid string, scan *domain.SpotScan, limit int) ScanOutput {
	if limit <= 0 {
		limit = DefaultTopN
	}
	out := ScanOutput{UserID: uid, Tokens: []domain.SpotToken{}}
	if scan == nil {
		return out
	}
	out.GeneratedAt = scan.GeneratedAt.Format(time.RFC3339)
	out.Total = len(scan.Tokens)
	out.HighVolume = scan.HighVolumeCount()
	out.LargeCaps = scan.LargeCapCount()
	out.PeakVTMR = scan.PeakVTMR()
	out.Tokens = append(out.Tokens, scan.Top(limit)...)
	return out
}

// HTTPHandler serves srv over streamable HTTP. A non-empty token requires
// "Authorization: Bearer <token>".
func HTTPHandler(srv *mcp.Server, token string) http.Handler {
	h := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)
	if token == "" {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.ServeHTTP(w, r)
	})
}
