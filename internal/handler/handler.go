package handler

import (
	"context"
	"embed"
	"html/template"
	"strings"

	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/service"
	"crypto-volume-toolkit/internal/settings"
	"crypto-volume-toolkit/internal/workspace"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// UserCookie names the cookie that carries the dashboard user id.
const UserCookie = "cvat_uid"

type SpotRunner interface {
	Run(ctx context.Context, uid string) (*service.SpotResult, error)
}

type AnalysisRunner interface {
	Run(ctx context.Context, uid string) (*service.AnalysisResult, error)
}

// TaskStarter runs fn in the background for uid, one task per user.
type TaskStarter interface {
	Start(uid, name string, fn func(ctx context.Context) error) error
}

type ProgressReader interface {
	Progress(uid string) domain.Progress
	Logs(uid string, last int) ([]string, int)
}

type KeySource interface {
	Keys(ctx context.Context, uid string) (domain.APIKeys, error)
}

// ReportLister reads the report archive. It is nil when Postgres is off.
type ReportLister interface {
	ListByUser(ctx context.Context, uid string, limit int) ([]domain.Report, error)
}

type Deps struct {
	Tracer          trace.Tracer
	Settings        settings.Store
	Keys            KeySource
	Spot            SpotRunner
	Analysis        AnalysisRunner
	Tasks           TaskStarter
	Progress        ProgressReader
	Workspace       *workspace.Workspace
	Reports         ReportLister
	APIKey          string
	RateLimitPerMin int
}

type Handler struct {
	tracer    trace.Tracer
	settings  settings.Store
	keys      KeySource
	spot      SpotRunner
	analysis  AnalysisRunner
	tasks     TaskStarter
	progress  ProgressReader
	workspace *workspace.Workspace
	reports   ReportLister
	auth      gin.HandlerFunc
	limit     gin.HandlerFunc
}

func New(d Deps) *Handler {
	return &Handler{
		tracer:    d.Tracer,
		settings:  d.Settings,
		keys:      d.Keys,
		spot:      d.Spot,
		analysis:  d.Analysis,
		tasks:     d.Tasks,
		progress:  d.Progress,
		workspace: d.Workspace,
		reports:   d.Reports,
		auth:      APIKeyAuth(d.APIKey),
		limit:     RateLimit(d.RateLimitPerMin),
	}
}

// Templates parses the embedded dashboard pages.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html.tmpl"))
}

// RegisterRoutes mounts the dashboard. Everything except /health sits
// behind APIKeyAuth.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())

	r.GET("/health", h.Health)

	g := r.Group("/", h.auth)
	g.GET("/", h.Dashboard)
	g.GET("/setup", h.Setup)
	g.GET("/settings", h.Settings)
	g.GET("/help", h.Help)
	g.POST("/save-config", h.SaveConfig)
	g.GET("/factory-reset", h.FactoryReset)
	g.POST("/factory-reset", h.FactoryReset)

	g.GET("/run-spot", h.limit, h.RunSpot)
	g.POST("/run-spot", h.limit, h.RunSpot)
	g.GET("/run-advanced", h.limit, h.RunAdvanced)
	g.POST("/run-advanced", h.limit, h.RunAdvanced)

	g.GET("/get-futures-data", h.FuturesData)
	g.POST("/upload-futures", h.limit, h.UploadFutures)

	g.GET("/reports-list", h.ReportsList)
	g.GET("/reports/:name", h.DownloadReport)
	g.GET("/latest-report", h.LatestReport)
	g.GET("/api/reports", h.ArchivedReports)

	g.GET("/progress", h.Progress)
	g.GET("/logs-chunk", h.LogsChunk)
}

// userID resolves the caller from the X-User-ID header, then the cookie.
func userID(c *gin.Context) string {
	if uid := strings.TrimSpace(c.GetHeader("X-User-ID")); uid != "" {
		return uid
	}
	if uid, err := c.Cookie(UserCookie); err == nil && strings.TrimSpace(uid) != "" {
		return strings.TrimSpace(uid)
	}
	return "local"
}
