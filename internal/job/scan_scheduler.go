package job

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// SpotScanner runs one spot scan for a user.
type SpotScanner interface {
	Scan(ctx context.Context, uid string) error
}

// SpotScanFunc adapts a function to SpotScanner.
type SpotScanFunc func(ctx context.Context, uid string) error

func (f SpotScanFunc) Scan(ctx context.Context, uid string) error { return f(ctx, uid) }

// ScanScheduler periodically queues a spot scan for one workspace user.
type ScanScheduler struct {
	tracer   trace.Tracer
	runner   *Runner
	scanner  SpotScanner
	uid      string
	interval time.Duration
}

func NewScanScheduler(tracer trace.Tracer, runner *Runner, scanner SpotScanner, uid string, intervalMins int) *ScanScheduler {
	return &ScanScheduler{
		tracer:   tracer,
		runner:   runner,
		scanner:  scanner,
		uid:      uid,
		interval: time.Duration(intervalMins) * time.Minute,
	}
}

// Enabled reports whether a positive interval was configured.
func (s *ScanScheduler) Enabled() bool {
	return s.interval > 0
}

// Start queues a scan immediately and then on every tick. Blocks until ctx
// is cancelled.
func (s *ScanScheduler) Start(ctx context.Context) {
	if !s.Enabled() {
		log.Println("Scan scheduler disabled")
		return
	}
	log.Printf("Scan scheduler starting for %s every %s", s.uid, s.interval)

	s.tick(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Scan scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ScanScheduler) tick(ctx context.Context) {
	_, span := s.tracer.Start(ctx, "scan-scheduler.tick")
	defer span.End()

	err := s.runner.Start(s.uid, "Scheduled spot scan", func(ctx context.Context) error {
		return s.scanner.Scan(ctx, s.uid)
	})
	if errors.Is(err, ErrTaskRunning) {
		log.Printf("scheduled scan skipped for %s: previous task still running", s.uid)
	}
}
