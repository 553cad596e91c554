package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/vidgrab/internal/api/middleware"
	"github.com/denisAlshanov/vidgrab/internal/database"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

type DownloadsHandler struct {
	journal database.Journal
}

func NewDownloadsHandler(journal database.Journal) *DownloadsHandler {
	return &DownloadsHandler{journal: journal}
}

// ListDownloads godoc
// @Summary Completed downloads
// @Description Lists the calling session's completed downloads, newest first.
// @Tags downloads
// @Produce json
// @Param limit query int false "Page size (default 50, max 500)"
// @Success 200 {object} models.DownloadListResponse
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/downloads [get]
func (h *DownloadsHandler) ListDownloads(c *gin.Context) {
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.Query("limit"))
	limit = database.ClampLimit(limit)

	// Only the caller's own session is listed.
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusOK, models.DownloadListResponse{Limit: limit, Downloads: []models.DownloadRecord{}})
		return
	}

	records, err := h.journal.ListDownloads(ctx, sessionID, limit)
	if err != nil {
		utils.LogError(ctx, "Failed to list downloads", err)
		h.errorResponse(c, utils.NewDatabaseError(err))
		return
	}

	c.JSON(http.StatusOK, models.DownloadListResponse{
		Total:     len(records),
		Limit:     limit,
		Downloads: records,
	})
}

func (h *DownloadsHandler) errorResponse(c *gin.Context, err *utils.AppError) {
	c.JSON(err.StatusCode, gin.H{
		"error":      err,
		"request_id": c.GetString("request_id"),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}
