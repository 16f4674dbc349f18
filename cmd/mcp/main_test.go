package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crypto-volume-toolkit/internal/config"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func stubMCPDeps(t *testing.T, transport string) (stdioRuns *int, httpAddr *string) {
	t.Helper()
	dir := t.TempDir()
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origRunStdio := runStdioFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	t.Cleanup(func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		runStdioFunc = origRunStdio
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	})

	stdioRuns = new(int)
	httpAddr = new(string)
	addrCh := make(chan string, 1)

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			WorkDir:               filepath.Join(dir, "work"),
			SettingsFile:          filepath.Join(dir, "settings.json"),
			MCPTransport:          transport,
			MCPHTTPBind:           "127.0.0.1",
			MCPHTTPPort:           8090,
			MCPRequestTimeoutSecs: 5,
			ScheduledUser:         "scheduler",
		}
	}
	initPostgresFunc = func(context.Context) {}
	initRedisFunc = func(context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	runStdioFunc = func(context.Context, *mcp.Server) error {
		*stdioRuns++
		return nil
	}
	startHTTPServerFunc = func(srv *http.Server) error {
		addrCh <- srv.Addr
		return http.ErrServerClosed
	}
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {
		select {
		case *httpAddr = <-addrCh:
		case <-time.After(time.Second):
		}
	}
	return stdioRuns, httpAddr
}

func runMain(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestMainStdio(t *testing.T) {
	runs, _ := stubMCPDeps(t, "stdio")
	runMain(t)
	if *runs != 1 {
		t.Fatalf("expected one stdio session, got %d", *runs)
	}
}

func TestMainHTTP(t *testing.T) {
	runs, addr := stubMCPDeps(t, "http")
	runMain(t)
	if *runs != 0 {
		t.Fatalf("expected no stdio session, got %d", *runs)
	}
	if *addr != "127.0.0.1:8090" {
		t.Fatalf("unexpected listen addr %q", *addr)
	}
}
