package handler

import (
	"context"
	"errors"
	"net/http"

	"crypto-volume-toolkit/internal/job"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// RunSpot godoc
// @Summary      Start a spot scan
// @Description  Starts a background spot volume scan for the current user
// @Tags         runs
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /run-spot [post]
func (h *Handler) RunSpot(c *gin.Context) {
	h.start(c, "Spot scan", func(ctx context.Context, uid string) error {
		_, err := h.spot.Run(ctx, uid)
		return err
	})
}

// RunAdvanced godoc
// @Summary      Start an advanced analysis
// @Description  Merges today's spot data with the uploaded futures PDF in the background
// @Tags         runs
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /run-advanced [post]
func (h *Handler) RunAdvanced(c *gin.Context) {
	h.start(c, "Advanced analysis", func(ctx context.Context, uid string) error {
		_, err := h.analysis.Run(ctx, uid)
		return err
	})
}

func (h *Handler) start(c *gin.Context, name string, run func(ctx context.Context, uid string) error) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.run")
	defer span.End()

	uid := userID(c)
	span.SetAttributes(attribute.String("uid", uid), attribute.String("task", name))

	err := h.tasks.Start(uid, name, func(ctx context.Context) error { return run(ctx, uid) })
	switch {
	case errors.Is(err, job.ErrTaskRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "started"})
	}
}
