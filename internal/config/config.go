package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"crypto-volume-toolkit/internal/domain"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	// Keys from the environment act as defaults for every user that has not
	// finished the setup wizard.
	CMCAPIKey           string
	LiveCoinWatchAPIKey string
	CoinRankingsAPIKey  string
	HTML2PDFAPIKey      string
	CoinGeckoAPIKey     string
	CoinalyzeVTMRURL    string

	WorkDir          string
	SettingsFile     string
	PDFEngine        string
	ListingCacheSecs int

	HTTPPort         int
	DashboardAPIKey  string
	RateLimitPerMin  int
	ScanIntervalMins int
	ScheduledUser    string

	MCPTransport          string
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int

	OpenAIAPIKey string
	OpenAIModel  string

	SSHPort                int
	SSHHostKeyPath         string
	SSHAllowedFingerprints []string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		CMCAPIKey:           strings.TrimSpace(os.Getenv("CMC_API_KEY")),
		LiveCoinWatchAPIKey: strings.TrimSpace(os.Getenv("LIVECOINWATCH_API_KEY")),
		CoinRankingsAPIKey:  strings.TrimSpace(os.Getenv("COINRANKINGS_API_KEY")),
		HTML2PDFAPIKey:      strings.TrimSpace(os.Getenv("HTML2PDF_API_KEY")),
		CoinGeckoAPIKey:     strings.TrimSpace(os.Getenv("COINGECKO_API_KEY")),
		CoinalyzeVTMRURL:    strings.TrimSpace(os.Getenv("COINALYZE_VTMR_URL")),
		DashboardAPIKey:     os.Getenv("DASHBOARD_API_KEY"),
		MCPAuthToken:        os.Getenv("MCP_AUTH_TOKEN"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, report archive disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.WorkDir = strings.TrimSpace(os.Getenv("WORK_DIR"))
	if cfg.WorkDir == "" {
		cfg.WorkDir = "temp_uploads"
	}

	cfg.SettingsFile = strings.TrimSpace(os.Getenv("SETTINGS_FILE"))
	if cfg.SettingsFile == "" {
		cfg.SettingsFile = "crypto_vat_config.json"
	}

	cfg.PDFEngine = strings.ToLower(strings.TrimSpace(os.Getenv("PDF_ENGINE")))
	switch cfg.PDFEngine {
	case "auto", "api", "chrome":
	case "":
		cfg.PDFEngine = "auto"
	default:
		log.Printf("Warning: unsupported PDF_ENGINE=%q, defaulting to auto", cfg.PDFEngine)
		cfg.PDFEngine = "auto"
	}

	cfg.ListingCacheSecs = 300
	if v := strings.TrimSpace(os.Getenv("LISTING_CACHE_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ListingCacheSecs = n
		}
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.RateLimitPerMin = 30
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitPerMin = n
		}
	}

	cfg.ScanIntervalMins = 0
	if v := strings.TrimSpace(os.Getenv("SCAN_INTERVAL_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ScanIntervalMins = n
		}
	}

	cfg.ScheduledUser = strings.TrimSpace(os.Getenv("SCHEDULED_SCAN_USER"))
	if cfg.ScheduledUser == "" {
		cfg.ScheduledUser = "scheduler"
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 120
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, market notes will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}

	for _, fp := range strings.Split(os.Getenv("SSH_ALLOWED_FINGERPRINTS"), ",") {
		if fp = strings.TrimSpace(fp); fp != "" {
			cfg.SSHAllowedFingerprints = append(cfg.SSHAllowedFingerprints, fp)
		}
	}

	return cfg
}

// DefaultKeys returns the environment-provided API keys.
func (c *Config) DefaultKeys() domain.APIKeys {
	return domain.APIKeys{
		CMC:           c.CMCAPIKey,
		LiveCoinWatch: c.LiveCoinWatchAPIKey,
		CoinRankings:  c.CoinRankingsAPIKey,
		HTML2PDF:      c.HTML2PDFAPIKey,
		VTMRURL:       c.CoinalyzeVTMRURL,
	}
}
