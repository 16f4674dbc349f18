package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("WORK_DIR", "")
	t.Setenv("PDF_ENGINE", "")
	t.Setenv("LISTING_CACHE_SECS", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("SCAN_INTERVAL_MINS", "")
	t.Setenv("MCP_TRANSPORT", "")
	t.Setenv("SSH_ALLOWED_FINGERPRINTS", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.WorkDir != "temp_uploads" || cfg.SettingsFile != "crypto_vat_config.json" {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.PDFEngine != "auto" {
		t.Fatalf("expected auto pdf engine, got %s", cfg.PDFEngine)
	}
	if cfg.ListingCacheSecs != 300 || cfg.HTTPPort != 8080 || cfg.ScanIntervalMins != 0 {
		t.Fatalf("unexpected numeric defaults: %+v", cfg)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected stdio transport, got %s", cfg.MCPTransport)
	}
	if len(cfg.SSHAllowedFingerprints) != 0 {
		t.Fatalf("expected no fingerprints, got %v", cfg.SSHAllowedFingerprints)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("CMC_API_KEY", " cmc ")
	t.Setenv("COINALYZE_VTMR_URL", "https://coinalyze.net/futures-data/custom/")
	t.Setenv("PDF_ENGINE", "Chrome")
	t.Setenv("SCAN_INTERVAL_MINS", "30")
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("SSH_ALLOWED_FINGERPRINTS", "SHA256:a, SHA256:b ,")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.PDFEngine != "chrome" {
		t.Fatalf("expected chrome engine, got %s", cfg.PDFEngine)
	}
	if cfg.ScanIntervalMins != 30 || cfg.MCPTransport != "http" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.SSHAllowedFingerprints) != 2 || cfg.SSHAllowedFingerprints[1] != "SHA256:b" {
		t.Fatalf("unexpected fingerprints: %v", cfg.SSHAllowedFingerprints)
	}

	keys := cfg.DefaultKeys()
	if keys.CMC != "cmc" || keys.VTMRURL == "" {
		t.Fatalf("unexpected default keys: %+v", keys)
	}

	t.Setenv("PDF_ENGINE", "wkhtmltopdf")
	t.Setenv("HTTP_PORT", "bad")
	cfg = Load()
	if cfg.PDFEngine != "auto" {
		t.Fatalf("unsupported engine should fall back to auto, got %s", cfg.PDFEngine)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("invalid port should fall back to default, got %d", cfg.HTTPPort)
	}
}
