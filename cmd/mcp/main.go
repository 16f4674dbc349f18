package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"crypto-volume-toolkit/internal/app"
	"crypto-volume-toolkit/internal/cache"
	"crypto-volume-toolkit/internal/config"
	"crypto-volume-toolkit/internal/db"
	"crypto-volume-toolkit/internal/mcpserver"
	"crypto-volume-toolkit/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newToolkitFunc   = app.New
	runStdioFunc     = func(ctx context.Context, srv *mcp.Server) error {
		return srv.Run(ctx, &mcp.StdioTransport{})
	}
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stdout carries the protocol on stdio.
	log.SetOutput(os.Stderr)

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	toolkit := newToolkitFunc(app.Options{Config: cfg, Tracer: tracer, Pool: db.Pool, Redis: cache.Client})
	srv := mcpserver.New(mcpserver.Config{
		Tracer:     tracer,
		Scanner:    toolkit.Spot,
		Reports:    toolkit.Workspace,
		DefaultUID: cfg.ScheduledUser,
		Timeout:    time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	}).MCP()

	defer db.Close()
	defer cache.Close()

	if cfg.MCPTransport != "http" {
		log.Println("MCP server running on stdio")
		if err := runStdioFunc(ctx, srv); err != nil {
			log.Printf("MCP stdio session ended: %v", err)
		}
		return
	}

	if cfg.MCPAuthToken == "" {
		log.Println("Warning: MCP_AUTH_TOKEN not set, HTTP transport is unauthenticated")
	}
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort),
		Handler: mcpserver.HTTPHandler(srv, cfg.MCPAuthToken),
	}
	go func() {
		log.Printf("MCP server listening on http://%s", httpSrv.Addr)
		if err := startHTTPServerFunc(httpSrv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down MCP server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdownHTTPServerFunc(httpSrv, shutdownCtx); err != nil {
		log.Printf("MCP server shutdown error: %v", err)
	}
	log.Println("MCP server exited")
}
