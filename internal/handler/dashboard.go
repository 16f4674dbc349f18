package handler

import (
	"log"
	"net/http"
	"strings"

	"crypto-volume-toolkit/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type setupPage struct {
	Title     string
	Button    string
	Keys      domain.APIKeys
	Missing   []string
	ShowReset bool
}

// Dashboard godoc
// @Summary      Dashboard
// @Description  Renders the dashboard, or redirects to /setup until the API keys are configured
// @Tags         dashboard
// @Produce      html
// @Success      200
// @Success      302
// @Router       / [get]
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.dashboard")
	defer span.End()

	uid := userID(c)
	span.SetAttributes(attribute.String("uid", uid))

	keys, err := h.keys.Keys(ctx, uid)
	if err != nil {
		log.Printf("load keys for %s: %v", uid, err)
	}
	if !keys.Configured() {
		c.Redirect(http.StatusFound, "/setup")
		return
	}
	c.HTML(http.StatusOK, "dashboard.html.tmpl", gin.H{"Progress": h.progress.Progress(uid)})
}

// Setup godoc
// @Summary      Setup wizard
// @Tags         dashboard
// @Produce      html
// @Success      200
// @Router       /setup [get]
func (h *Handler) Setup(c *gin.Context) {
	h.renderSetup(c, setupPage{Title: "Setup Wizard", Button: "SAVE & LAUNCH"})
}

// Settings godoc
// @Summary      Settings page
// @Tags         dashboard
// @Produce      html
// @Success      200
// @Router       /settings [get]
func (h *Handler) Settings(c *gin.Context) {
	h.renderSetup(c, setupPage{Title: "Settings", Button: "UPDATE SETTINGS", ShowReset: true})
}

func (h *Handler) renderSetup(c *gin.Context, page setupPage) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.setup")
	defer span.End()

	uid := userID(c)
	keys, err := h.keys.Keys(ctx, uid)
	if err != nil {
		log.Printf("load keys for %s: %v", uid, err)
	}
	page.Keys = keys.Blanked()
	page.Missing = keys.Missing()
	c.HTML(http.StatusOK, "setup.html.tmpl", page)
}

// SaveConfig godoc
// @Summary      Save API keys
// @Description  Stores the submitted keys for the current user. Blank fields fall back to placeholders.
// @Tags         dashboard
// @Accept       x-www-form-urlencoded
// @Param        cmc_key       formData  string  false  "CoinMarketCap key"
// @Param        lcw_key       formData  string  false  "LiveCoinWatch key"
// @Param        cr_key        formData  string  false  "CoinRankings key"
// @Param        html2pdf_key  formData  string  false  "html2pdf.app key"
// @Param        vtmr_url      formData  string  false  "CoinAlyze VTMR URL"
// @Success      303
// @Failure      500  {object}  map[string]string
// @Router       /save-config [post]
func (h *Handler) SaveConfig(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.save-config")
	defer span.End()

	keys := domain.APIKeys{
		CMC:           strings.TrimSpace(c.PostForm("cmc_key")),
		LiveCoinWatch: strings.TrimSpace(c.PostForm("lcw_key")),
		CoinRankings:  strings.TrimSpace(c.PostForm("cr_key")),
		HTML2PDF:      strings.TrimSpace(c.PostForm("html2pdf_key")),
		VTMRURL:       strings.TrimSpace(c.PostForm("vtmr_url")),
	}
	if err := h.settings.Save(ctx, userID(c), keys); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// FactoryReset godoc
// @Summary      Factory reset
// @Description  Resets the current user's keys to placeholders
// @Tags         dashboard
// @Success      303
// @Failure      500  {object}  map[string]string
// @Router       /factory-reset [post]
func (h *Handler) FactoryReset(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.factory-reset")
	defer span.End()

	if err := h.settings.Reset(ctx, userID(c)); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/setup")
}

// Help godoc
// @Summary      Help page
// @Tags         dashboard
// @Produce      html
// @Success      200
// @Router       /help [get]
func (h *Handler) Help(c *gin.Context) {
	c.HTML(http.StatusOK, "help.html.tmpl", nil)
}
