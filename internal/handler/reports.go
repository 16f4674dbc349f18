package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/workspace"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// FuturesData godoc
// @Summary      CoinAlyze instructions
// @Description  Shows how to export the VTMR view to PDF, with the upload form
// @Tags         futures
// @Produce      html
// @Success      200
// @Router       /get-futures-data [get]
func (h *Handler) FuturesData(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.futures-data")
	defer span.End()

	uid := userID(c)
	keys, err := h.keys.Keys(ctx, uid)
	if err != nil {
		log.Printf("load keys for %s: %v", uid, err)
	}
	link := ""
	if domain.Usable(keys.VTMRURL) {
		link = keys.VTMRURL
	}
	c.HTML(http.StatusOK, "futures.html.tmpl", gin.H{"URL": link})
}

// UploadFutures godoc
// @Summary      Upload a futures PDF
// @Description  Stores the CoinAlyze PDF export as {uid}_futures.pdf
// @Tags         futures
// @Accept       multipart/form-data
// @Param        futures_pdf  formData  file  true  "CoinAlyze PDF export"
// @Success      303
// @Failure      400  {string}  string
// @Failure      429  {object}  map[string]string
// @Router       /upload-futures [post]
func (h *Handler) UploadFutures(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.upload-futures")
	defer span.End()

	uid := userID(c)
	fh, err := c.FormFile("futures_pdf")
	if err != nil {
		c.String(http.StatusBadRequest, "No file uploaded")
		return
	}
	span.SetAttributes(attribute.String("uid", uid), attribute.String("file", fh.Filename))

	f, err := fh.Open()
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid File")
		return
	}
	defer f.Close()

	if _, err := h.workspace.SaveFutures(uid, fh.Filename, f); err != nil {
		if errors.Is(err, workspace.ErrInvalidFile) {
			c.String(http.StatusBadRequest, "Invalid File")
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ReportsList godoc
// @Summary      List reports
// @Description  Lists the reports in the current user's workspace, newest first
// @Tags         reports
// @Produce      html
// @Success      200
// @Router       /reports-list [get]
func (h *Handler) ReportsList(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.reports-list")
	defer span.End()

	files, err := h.workspace.ListReports(userID(c))
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.HTML(http.StatusOK, "reports.html.tmpl", gin.H{"Files": files})
}

// DownloadReport godoc
// @Summary      Download a report
// @Tags         reports
// @Produce      octet-stream
// @Param        name  path  string  true  "Report file name"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reports/{name} [get]
func (h *Handler) DownloadReport(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.download-report")
	defer span.End()

	name := c.Param("name")
	span.SetAttributes(attribute.String("file", name))

	f, err := h.workspace.Open(userID(c), name)
	switch {
	case errors.Is(err, workspace.ErrInvalidFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, workspace.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
}

// LatestReport godoc
// @Summary      Latest analysis PDF
// @Description  Redirects to the newest analysis PDF
// @Tags         reports
// @Success      302
// @Failure      404  {object}  map[string]string
// @Router       /latest-report [get]
func (h *Handler) LatestReport(c *gin.Context) {
	latest, err := h.workspace.Latest(userID(c))
	if errors.Is(err, workspace.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusFound, "/reports/"+url.PathEscape(latest.Name))
}

// ArchivedReports godoc
// @Summary      Archived reports
// @Description  Lists reports recorded in Postgres for the current user
// @Tags         reports
// @Produce      json
// @Param        limit  query  int  false  "Maximum rows (default 50)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/reports [get]
func (h *Handler) ArchivedReports(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.archived-reports")
	defer span.End()

	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report archive disabled: DATABASE_URL not set"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	reports, err := h.reports.ListByUser(ctx, userID(c), limit)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
