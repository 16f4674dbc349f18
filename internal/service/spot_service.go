package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"crypto-volume-toolkit/internal/analysis"
	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/provider"
	"crypto-volume-toolkit/internal/report"
	"crypto-volume-toolkit/internal/repository"
	"crypto-volume-toolkit/internal/workspace"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultListingCacheTTL is how long provider listings stay in Redis.
const DefaultListingCacheTTL = 5 * time.Minute

var ErrNoListings = errors.New("no spot listings fetched from any provider")

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Logger receives run-scoped log lines for a user. progress.Tracker
// implements it.
type Logger interface {
	Logf(uid, format string, args ...any)
}

// KeySource resolves a user's API keys with environment defaults applied.
type KeySource interface {
	Keys(ctx context.Context, uid string) (domain.APIKeys, error)
}

// ProviderFactory builds the listing providers usable with keys and names
// the providers skipped for lack of a key.
type ProviderFactory func(keys domain.APIKeys) ([]provider.ListingProvider, []string)

type ReportArchive interface {
	Insert(ctx context.Context, rep *domain.Report) error
}

type ActivityLog interface {
	Log(ctx context.Context, uid, action string) error
}

// SpotResult is the outcome of a spot run.
type SpotResult struct {
	Scan     *domain.SpotScan
	HTMLPath string
	XLSXPath string
}

// SpotService runs the multi-provider spot scan and writes its reports.
type SpotService struct {
	tracer    trace.Tracer
	keys      KeySource
	providers ProviderFactory
	redis     RedisClient
	cacheTTL  time.Duration
	ws        *workspace.Workspace
	gen       *report.Generator
	logs      Logger
	archive   ReportArchive
	activity  ActivityLog
	now       func() time.Time

	mu     sync.RWMutex
	latest map[string]*domain.SpotScan
}

type SpotServiceConfig struct {
	Tracer    trace.Tracer
	Keys      KeySource
	Providers ProviderFactory
	Redis     RedisClient
	CacheTTL  time.Duration
	Workspace *workspace.Workspace
	Generator *report.Generator
	Logs      Logger
	Archive   ReportArchive
	Activity  ActivityLog
}

func NewSpotService(cfg SpotServiceConfig) *SpotService {
	return &SpotService{
		tracer:    cfg.Tracer,
		keys:      cfg.Keys,
		providers: cfg.Providers,
		redis:     cfg.Redis,
		cacheTTL:  cfg.CacheTTL,
		ws:        cfg.Workspace,
		gen:       cfg.Generator,
		logs:      cfg.Logs,
		archive:   cfg.Archive,
		activity:  cfg.Activity,
		now:       time.Now,
		latest:    make(map[string]*domain.SpotScan),
	}
}

type providerResult struct {
	listings []domain.Listing
	err      error
}

// Run fetches every usable provider in parallel, verifies the listings and
// writes the HTML and XLSX spot reports into the user's workspace.
func (s *SpotService) Run(ctx context.Context, uid string) (*SpotResult, error) {
	ctx, span := s.tracer.Start(ctx, "spot-service.run")
	defer span.End()

	keys, err := s.keys.Keys(ctx, uid)
	if err != nil {
		log.Printf("load keys for %s: %v", uid, err)
	}
	providers, skipped := s.providers(keys)
	for _, name := range skipped {
		s.logs.Logf(uid, "No %s API key provided", name)
	}

	// Logged in provider order before the fan-out; progress milestones key
	// off these lines.
	for _, p := range providers {
		s.logs.Logf(uid, "Scanning %s...", p.Name())
	}

	results := make([]providerResult, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			listings, err := s.listings(gctx, p)
			results[i] = providerResult{listings: listings, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []domain.Listing
	var firstErr error
	for i, r := range results {
		if r.err != nil {
			log.Printf("[%s] %s unavailable: %v", uid, providers[i].Name(), r.err)
			s.logs.Logf(uid, "%s unavailable, continuing with other sources", providers[i].Name())
			if firstErr == nil {
				firstErr = r.err
			}
		}
		all = append(all, r.listings...)
	}
	if len(all) == 0 && firstErr != nil {
		span.RecordError(firstErr)
		return nil, fmt.Errorf("%w: %w", ErrNoListings, firstErr)
	}

	s.logs.Logf(uid, "Scanning for high-volume tokens...")
	now := s.now()
	scan := &domain.SpotScan{
		UserID:       uid,
		GeneratedAt:  now,
		Tokens:       analysis.Verify(all),
		SourceCounts: analysis.CountSources(all),
	}
	if len(scan.Tokens) == 0 {
		s.logs.Logf(uid, "No high-volume tokens found")
	} else {
		s.logs.Logf(uid, "Found %d high-volume tokens at %s", len(scan.Tokens), now.Format("15:04"))
	}

	res := &SpotResult{Scan: scan}
	var buf bytes.Buffer
	if err := s.gen.SpotHTML(&buf, scan); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("render spot report: %w", err)
	}
	if res.HTMLPath, err = s.ws.WriteFile(uid, report.SpotFileName(workspace.SanitizeUserID(uid), now), buf.Bytes()); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save spot report: %w", err)
	}

	buf.Reset()
	if err := s.gen.SpotXLSX(&buf, scan); err != nil {
		log.Printf("[%s] render spot xlsx: %v", uid, err)
	} else if res.XLSXPath, err = s.ws.WriteFile(uid, report.SpotXLSXName(workspace.SanitizeUserID(uid), now), buf.Bytes()); err != nil {
		log.Printf("[%s] save spot xlsx: %v", uid, err)
	}

	s.mu.Lock()
	s.latest[uid] = scan
	s.mu.Unlock()

	recordRun(ctx, s.archive, s.activity, uid, &domain.Report{
		UserID:     uid,
		Kind:       domain.ReportSpot,
		FileName:   report.SpotFileName(workspace.SanitizeUserID(uid), now),
		Path:       res.HTMLPath,
		TokenCount: len(scan.Tokens),
	}, repository.ActionRunSpot)

	s.logs.Logf(uid, "Spot data saved. Run Advanced Analysis to use this data.")
	return res, nil
}

// LatestScan returns the most recent scan run for uid in this process.
func (s *SpotService) LatestScan(uid string) (*domain.SpotScan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scan, ok := s.latest[uid]
	return scan, ok
}

// recordRun archives the report and activity; failures only get logged.
func recordRun(ctx context.Context, archive ReportArchive, activity ActivityLog, uid string, rep *domain.Report, action string) {
	if archive != nil {
		if err := archive.Insert(ctx, rep); err != nil {
			log.Printf("[%s] archive report: %v", uid, err)
		}
	}
	if activity != nil {
		if err := activity.Log(ctx, uid, action); err != nil {
			log.Printf("[%s] log activity: %v", uid, err)
		}
	}
}

func listingsKey(src domain.Source) string {
	return "listings:" + string(src)
}

// listings returns a provider's listings from Redis, fetching and caching
// them on a miss.
func (s *SpotService) listings(ctx context.Context, p provider.ListingProvider) ([]domain.Listing, error) {
	if s.redis != nil && s.cacheTTL > 0 {
		cached, err := s.getListingsCache(ctx, p.Source())
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	listings, err := p.FetchListings(ctx)
	if err != nil {
		return listings, err
	}
	if s.redis != nil && s.cacheTTL > 0 {
		if err := s.setListingsCache(ctx, p.Source(), listings); err != nil {
			log.Printf("redis cache write error for %s: %v", p.Source(), err)
		}
	}
	return listings, nil
}

func (s *SpotService) setListingsCache(ctx context.Context, src domain.Source, listings []domain.Listing) error {
	if listings == nil {
		listings = []domain.Listing{}
	}
	data, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, listingsKey(src), data, s.cacheTTL).Err()
}

func (s *SpotService) getListingsCache(ctx context.Context, src domain.Source) ([]domain.Listing, error) {
	data, err := s.redis.Get(ctx, listingsKey(src)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	listings := []domain.Listing{}
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}
