package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"crypto-volume-toolkit/internal/analysis"
	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/pdfgen"
	"crypto-volume-toolkit/internal/report"
	"crypto-volume-toolkit/internal/repository"
	"crypto-volume-toolkit/internal/workspace"

	"go.opentelemetry.io/otel/trace"
)

var ErrNoData = errors.New("no data to generate report")

type FuturesParser interface {
	Parse(ctx context.Context, path string, logf func(string, ...any)) ([]domain.FuturesToken, error)
}

// SpotLoader reads a spot report written by a previous spot run.
type SpotLoader func(path string, logf func(string, ...any)) ([]domain.SpotRow, error)

// ConverterFactory picks the PDF engine for a user's keys.
type ConverterFactory func(keys domain.APIKeys) (pdfgen.Converter, error)

// Commentator writes optional market notes for the cross-market report.
type Commentator interface {
	MarketNotes(ctx context.Context, cross analysis.CrossMarket) (string, error)
}

// AnalysisResult is the outcome of an advanced analysis.
type AnalysisResult struct {
	Path  string
	Cross analysis.CrossMarket
}

type AnalysisService struct {
	tracer     trace.Tracer
	keys       KeySource
	ws         *workspace.Workspace
	parser     FuturesParser
	loadSpot   SpotLoader
	converters ConverterFactory
	gen        *report.Generator
	notes      Commentator
	logs       Logger
	archive    ReportArchive
	activity   ActivityLog
	now        func() time.Time
}

type AnalysisServiceConfig struct {
	Tracer     trace.Tracer
	Keys       KeySource
	Workspace  *workspace.Workspace
	Parser     FuturesParser
	LoadSpot   SpotLoader
	Converters ConverterFactory
	Generator  *report.Generator
	Notes      Commentator
	Logs       Logger
	Archive    ReportArchive
	Activity   ActivityLog
}

func NewAnalysisService(cfg AnalysisServiceConfig) *AnalysisService {
	return &AnalysisService{
		tracer:     cfg.Tracer,
		keys:       cfg.Keys,
		ws:         cfg.Workspace,
		parser:     cfg.Parser,
		loadSpot:   cfg.LoadSpot,
		converters: cfg.Converters,
		gen:        cfg.Generator,
		notes:      cfg.Notes,
		logs:       cfg.Logs,
		archive:    cfg.Archive,
		activity:   cfg.Activity,
		now:        time.Now,
	}
}

// Run merges today's futures PDF with today's spot report, renders the
// cross-market report to PDF and removes the source files. When conversion
// fails the HTML report is kept instead and the error is returned.
func (s *AnalysisService) Run(ctx context.Context, uid string) (*AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.run")
	defer span.End()

	logf := func(format string, args ...any) { s.logs.Logf(uid, format, args...) }

	logf("Scanning for Futures PDF and Spot CSV/HTML files")
	in, err := s.ws.FindInputs(uid)
	if err != nil {
		logf("Required files not found.")
		return nil, err
	}

	futuresRows, err := s.parser.Parse(ctx, in.Futures, logf)
	if err != nil {
		span.RecordError(err)
		logf("Futures PDF error: %v", err)
		return nil, fmt.Errorf("parse futures pdf: %w", err)
	}
	spotRows, err := s.loadSpot(in.Spot, logf)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load spot file: %w", err)
	}

	cross := analysis.Merge(spotRows, futuresRows)
	if cross.Empty() {
		logf("No data to generate report")
		return nil, ErrNoData
	}

	commentary := ""
	if s.notes != nil {
		if commentary, err = s.notes.MarketNotes(ctx, cross); err != nil {
			log.Printf("[%s] market notes unavailable: %v", uid, err)
			commentary = ""
		}
	}

	var buf bytes.Buffer
	if err := s.gen.CrossMarketHTML(&buf, cross, commentary); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("render analysis report: %w", err)
	}

	keys, err := s.keys.Keys(ctx, uid)
	if err != nil {
		log.Printf("load keys for %s: %v", uid, err)
	}

	logf("Converting to PDF...")
	pdfName := report.AnalysisFileName(s.now())
	pdf, convErr := s.convert(ctx, keys, buf.String())

	logf("Cleaning up source files after analysis...")
	logf("Cleaned up %d source files", s.ws.Cleanup(in.Spot, in.Futures))

	if convErr != nil {
		span.RecordError(convErr)
		htmlName := strings.TrimSuffix(pdfName, ".pdf") + ".html"
		if path, err := s.ws.WriteFile(uid, htmlName, buf.Bytes()); err == nil {
			log.Printf("[%s] kept HTML report at %s", uid, path)
		}
		logf("PDF conversion failed! Check API Key")
		return nil, convErr
	}

	path, err := s.ws.WriteFile(uid, pdfName, pdf)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save analysis pdf: %w", err)
	}

	recordRun(ctx, s.archive, s.activity, uid, &domain.Report{
		UserID:     uid,
		Kind:       domain.ReportAdvanced,
		FileName:   pdfName,
		Path:       path,
		TokenCount: len(cross.Both) + len(cross.FuturesOnly) + len(cross.SpotOnly),
	}, repository.ActionRunAdvanced)

	logf("PDF saved: %s", path)
	logf("Analysis completed! Source files cleaned up.")
	return &AnalysisResult{Path: path, Cross: cross}, nil
}

func (s *AnalysisService) convert(ctx context.Context, keys domain.APIKeys, html string) ([]byte, error) {
	conv, err := s.converters(keys)
	if err != nil {
		return nil, err
	}
	pdf, err := conv.Convert(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("convert with %s: %w", conv.Name(), err)
	}
	return pdf, nil
}
