package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	assetmodel "assetstore-backend/internal/domains/asset/model"
	"assetstore-backend/internal/domains/download"
	"assetstore-backend/internal/shared/middleware"
	"assetstore-backend/internal/shared/response"
)

// Handler - HTTP handlers for downloads and the activity report
type Handler struct {
	service download.Service
}

// NewHandler - Constructor with DI
func NewHandler(service download.Service) *Handler {
	return &Handler{service: service}
}

// Download - GET /v1/assets/:id/download
// Works for anonymous and signed-in users; the user is attached to the
// download record when a valid token is present.
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid asset id")
		return
	}

	var userID *uuid.UUID
	if raw, exists := c.Get("userID"); exists {
		if uid, ok := raw.(uuid.UUID); ok {
			userID = &uid
		}
	}

	ip := middleware.GetClientIPFromContext(c.Request.Context())
	userAgent := c.Request.UserAgent()

	file, err := h.service.Download(c.Request.Context(), id, userID, ip, userAgent)
	if assetmodel.HandleAssetError(c, err) {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Activity - GET /v1/admin/activity?period=
func (h *Handler) Activity(c *gin.Context) {
	report, err := h.service.Activity(c.Request.Context(), parsePeriod(c))
	if err != nil {
		response.InternalServerError(c, "could not load activity report")
		return
	}

	response.Success(c, http.StatusOK, report)
}

// ExportActivity - GET /v1/admin/activity/export?period=
func (h *Handler) ExportActivity(c *gin.Context) {
	data, err := h.service.ExportActivity(c.Request.Context(), parsePeriod(c))
	if err != nil {
		response.InternalServerError(c, "could not export activity report")
		return
	}

	filename := fmt.Sprintf("download-activity-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parsePeriod(c *gin.Context) int {
	period := 0
	if raw := c.Query("period"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			period = p
		}
	}
	return period
}
