package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Progress godoc
// @Summary      Task progress
// @Tags         status
// @Produce      json
// @Success      200  {object}  domain.Progress
// @Router       /progress [get]
func (h *Handler) Progress(c *gin.Context) {
	c.JSON(http.StatusOK, h.progress.Progress(userID(c)))
}

// LogsChunk godoc
// @Summary      Live log lines
// @Description  Returns the log lines after index last and the next index to poll with
// @Tags         status
// @Produce      json
// @Param        last  query  int  false  "Index returned by the previous call"  default(0)
// @Success      200  {object}  map[string]interface{}
// @Router       /logs-chunk [get]
func (h *Handler) LogsChunk(c *gin.Context) {
	last, err := strconv.Atoi(c.DefaultQuery("last", "0"))
	if err != nil || last < 0 {
		last = 0
	}
	lines, next := h.progress.Logs(userID(c), last)
	c.JSON(http.StatusOK, gin.H{"logs": lines, "last_index": next})
}
