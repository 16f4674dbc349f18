package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/service"
	"crypto-volume-toolkit/internal/workspace"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
)

type stubScanner struct {
	uid    string
	scan   *domain.SpotScan
	err    error
	latest map[string]*domain.SpotScan
}

func (s *stubScanner) Run(_ context.Context, uid string) (*service.SpotResult, error) {
	s.uid = uid
	if s.err != nil {
		return nil, s.err
	}
	return &service.SpotResult{Scan: s.scan, HTMLPath: "/work/x.html"}, nil
}

func (s *stubScanner) LatestScan(uid string) (*domain.SpotScan, bool) {
	scan, ok := s.latest[uid]
	return scan, ok
}

type stubReports struct{ files []workspace.File }

func (s stubReports) ListReports(string) ([]workspace.File, error) { return s.files, nil }

func newServer(sc *stubScanner, reports ReportLister) *Server {
	return New(Config{
		Tracer:     trace.NewNoopTracerProvider().Tracer("test"),
		Scanner:    sc,
		Reports:    reports,
		DefaultUID: "mcp-user",
		Timeout:    time.Second,
	})
}

func scanWith(n int) *domain.SpotScan {
	scan := &domain.SpotScan{GeneratedAt: time.Now()}
	for i := 0; i < n; i++ {
		scan.Tokens = append(scan.Tokens, domain.SpotToken{Symbol: "T", VTMR: 2.5, LargeCap: i == 0})
	}
	return scan
}

func TestSpotScanSummarizes(t *testing.T) {
	sc := &stubScanner{scan: scanWith(30)}
	_, out, err := newServer(sc, nil).SpotScan(context.Background(), nil, UserInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.uid != "mcp-user" || out.UserID != "mcp-user" {
		t.Fatalf("expected default uid, got %q/%q", sc.uid, out.UserID)
	}
	if out.Total != 30 || len(out.Tokens) != DefaultTopN || out.HighVolume != 30 || out.LargeCaps != 1 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.HTMLReport != "/work/x.html" || out.PeakVTMR != 2.5 {
		t.Fatalf("unexpected report fields: %+v", out)
	}

	_, out, _ = newServer(sc, nil).SpotScan(context.Background(), nil, UserInput{UserID: "bob", Limit: 3})
	if sc.uid != "bob" || len(out.Tokens) != 3 {
		t.Fatalf("expected explicit uid and limit, got %q %d", sc.uid, len(out.Tokens))
	}
}

func TestSpotScanError(t *testing.T) {
	sc := &stubScanner{err: service.ErrNoListings}
	if _, _, err := newServer(sc, nil).SpotScan(context.Background(), nil, UserInput{}); !errors.Is(err, service.ErrNoListings) {
		t.Fatalf("expected wrapped ErrNoListings, got %v", err)
	}
}

func TestLatestScan(t *testing.T) {
	sc := &stubScanner{latest: map[string]*domain.SpotScan{"alice": scanWith(2)}}
	srv := newServer(sc, nil)

	_, out, err := srv.LatestScan(context.Background(), nil, UserInput{UserID: "alice"})
	if err != nil || out.Total != 2 {
		t.Fatalf("unexpected latest: %+v err=%v", out, err)
	}
	if _, _, err := srv.LatestScan(context.Background(), nil, UserInput{}); err == nil || !strings.Contains(err.Error(), "mcp-user") {
		t.Fatalf("expected missing scan error, got %v", err)
	}
}

func TestListReports(t *testing.T) {
	reports := stubReports{files: []workspace.File{{Name: "a.pdf"}}}
	_, out, err := newServer(&stubScanner{}, reports).ListReports(context.Background(), nil, ReportsInput{UserID: "x"})
	if err != nil || len(out.Reports) != 1 || out.UserID != "x" {
		t.Fatalf("unexpected reports: %+v err=%v", out, err)
	}
}

func TestFuturesSignal(t *testing.T) {
	srv := newServer(&stubScanner{}, nil)
	_, out, err := srv.FuturesSignal(context.Background(), nil, SignalInput{OIChange: "+25%", FundingRate: "0.06%"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OISSScore != 5 || out.OISSLabel != "Strong" || out.OIChange != "+25%" || out.FundingLabel != "Greed" {
		t.Fatalf("unexpected signal: %+v", out)
	}

	if _, _, err := srv.FuturesSignal(context.Background(), nil, SignalInput{OIChange: "-"}); !errors.Is(err, errNoOIChange) {
		t.Fatalf("expected errNoOIChange, got %v", err)
	}
}

func TestToolsOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	srv := newServer(&stubScanner{}, nil).MCP()

	ct, st := mcp.NewInMemoryTransports()
	if _, err := srv.Connect(ctx, st, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"spot_scan", "latest_scan", "list_reports", "futures_signal"} {
		if !names[want] {
			t.Fatalf("missing tool %s in %v", want, names)
		}
	}

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "futures_signal",
		Arguments: map[string]any{"oi_change": "+15%"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError || len(res.Content) == 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "Bullish") {
		t.Fatalf("unexpected content: %#v", res.Content[0])
	}
}

func TestHTTPHandlerRequiresToken(t *testing.T) {
	h := HTTPHandler(newServer(&stubScanner{}, nil).MCP(), "secret")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", w.Code)
	}
}
