// Package app assembles the scan and analysis services shared by every
// binary.
package app

import (
	"log"
	"time"

	"crypto-volume-toolkit/internal/commentary"
	"crypto-volume-toolkit/internal/config"
	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/futures"
	"crypto-volume-toolkit/internal/pdfgen"
	"crypto-volume-toolkit/internal/progress"
	"crypto-volume-toolkit/internal/provider"
	"crypto-volume-toolkit/internal/repository"
	"crypto-volume-toolkit/internal/report"
	"crypto-volume-toolkit/internal/service"
	"crypto-volume-toolkit/internal/settings"
	"crypto-volume-toolkit/internal/spotfile"
	"crypto-volume-toolkit/internal/workspace"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var newLLMClientFunc = commentary.NewOpenAIClient

type Options struct {
	Config *config.Config
	Tracer trace.Tracer
	// Pool and Redis are optional. A nil pool keeps settings in the JSON
	// file and disables the report archive.
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// Toolkit is the wired set of services.
type Toolkit struct {
	Tracker   *progress.Tracker
	Workspace *workspace.Workspace
	Settings  settings.Store
	Keys      *settings.Resolver
	Spot      *service.SpotService
	Analysis  *service.AnalysisService

	// Reports and Activity are nil without Postgres.
	Reports  *repository.ReportRepository
	Activity *repository.ActivityRepository
}

func New(opts Options) *Toolkit {
	cfg, tracer := opts.Config, opts.Tracer

	t := &Toolkit{
		Tracker:   progress.NewTracker(),
		Workspace: workspace.New(cfg.WorkDir),
	}

	var (
		archive  service.ReportArchive
		activity service.ActivityLog
	)
	if opts.Pool != nil {
		t.Reports = repository.NewReportRepository(opts.Pool, tracer)
		t.Activity = repository.NewActivityRepository(opts.Pool, tracer)
		t.Settings = repository.NewSettingsRepository(opts.Pool, tracer)
		archive, activity = t.Reports, t.Activity
	} else {
		t.Settings = settings.NewFileStore(cfg.SettingsFile)
	}
	t.Keys = settings.NewResolver(t.Settings, cfg.DefaultKeys())

	var cache service.RedisClient
	if opts.Redis != nil {
		cache = opts.Redis
	}

	var notes service.Commentator
	if cfg.OpenAIAPIKey != "" {
		notes = commentary.NewService(tracer, newLLMClientFunc(cfg.OpenAIAPIKey), cfg.OpenAIModel)
		log.Println("Market notes enabled")
	}

	gen := report.NewGenerator()
	t.Spot = service.NewSpotService(service.SpotServiceConfig{
		Tracer: tracer,
		Keys:   t.Keys,
		Providers: func(keys domain.APIKeys) ([]provider.ListingProvider, []string) {
			return provider.Build(keys, cfg.CoinGeckoAPIKey, tracer)
		},
		Redis:     cache,
		CacheTTL:  time.Duration(cfg.ListingCacheSecs) * time.Second,
		Workspace: t.Workspace,
		Generator: gen,
		Logs:      t.Tracker,
		Archive:   archive,
		Activity:  activity,
	})
	t.Analysis = service.NewAnalysisService(service.AnalysisServiceConfig{
		Tracer:    tracer,
		Keys:      t.Keys,
		Workspace: t.Workspace,
		Parser:    futures.NewParser(futures.PDFTextExtractor{}),
		LoadSpot:  spotfile.Load,
		Converters: func(keys domain.APIKeys) (pdfgen.Converter, error) {
			return pdfgen.Select(cfg.PDFEngine, keys)
		},
		Generator: gen,
		Notes:     notes,
		Logs:      t.Tracker,
		Archive:   archive,
		Activity:  activity,
	})
	return t
}
