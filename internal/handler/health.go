package handler

import (
	"net/http"

	"crypto-volume-toolkit/pkg/tracing"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Reports liveness and whether the Postgres report archive is wired
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	archive := "disabled"
	if h.reports != nil {
		archive = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": tracing.ServiceName, "archive": archive})
}
