package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crypto-volume-toolkit/internal/app"
	"crypto-volume-toolkit/internal/config"

	"github.com/charmbracelet/ssh"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

func TestMainBootstrap(t *testing.T) {
	restore := stubSSHDeps(t)
	defer restore()

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

func stubSSHDeps(t *testing.T) func() {
	dir := t.TempDir()
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewToolkit := newToolkitFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			WorkDir:        filepath.Join(dir, "work"),
			SettingsFile:   filepath.Join(dir, "settings.json"),
			SSHPort:        2222,
			SSHHostKeyPath: ".ssh/test_key",
		}
	}
	initPostgresFunc = func(context.Context) {}
	initRedisFunc = func(context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newToolkitFunc = func(opts app.Options) *app.Toolkit {
		if opts.Pool != nil {
			t.Errorf("expected no postgres pool in test")
		}
		return app.New(opts)
	}
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		return nil, nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newToolkitFunc = origNewToolkit
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}

type stubSSHContext struct {
	ssh.Context
	user string
}

func (c stubSSHContext) User() string { return c.user }

func newPublicKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	return key
}

func TestFingerprintAuth(t *testing.T) {
	allowed := newPublicKey(t)
	other := newPublicKey(t)

	auth := fingerprintAuth([]string{" " + gossh.FingerprintSHA256(allowed) + " ", ""})
	ctx := stubSSHContext{user: "alice"}

	if !auth(ctx, allowed) {
		t.Fatal("expected allowlisted key to be accepted")
	}
	if auth(ctx, other) {
		t.Fatal("expected unknown key to be refused")
	}
	if fingerprintAuth(nil)(ctx, allowed) {
		t.Fatal("expected empty allowlist to refuse every key")
	}
}

func TestSessionUserID(t *testing.T) {
	if got := sessionUserID("bob"); got != "ssh-bob" {
		t.Fatalf("unexpected uid %q", got)
	}
}
