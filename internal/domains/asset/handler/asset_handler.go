package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"assetstore-backend/internal/domains/asset/model"
	"assetstore-backend/internal/domains/asset/service"
	"assetstore-backend/internal/shared/response"
)

const defaultFeaturedLimit = 6

// Handler - HTTP handlers for the asset catalog
type Handler struct {
	service service.AssetService
}

// NewHandler - Constructor with DI
func NewHandler(service service.AssetService) *Handler {
	return &Handler{service: service}
}

// ========================================
// PUBLIC ENDPOINTS
// ========================================

// ListPublished - GET /v1/assets
// Query params: search, type. Status is always published; drafts are
// never visible on the public surface.
func (h *Handler) ListPublished(c *gin.Context) {
	q := model.FilterQuery{
		SearchTerm: c.Query("search"),
		MediaKind:  c.DefaultQuery("type", model.FilterMediaAll),
		Status:     model.FilterStatusPublished,
	}

	assets, err := h.service.List(c.Request.Context(), q)
	if model.HandleAssetError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, model.ToAssetResponses(assets))
}

// Featured - GET /v1/assets/featured
func (h *Handler) Featured(c *gin.Context) {
	limit := defaultFeaturedLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	assets, err := h.service.Featured(c.Request.Context(), limit)
	if model.HandleAssetError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, model.ToAssetResponses(assets))
}

// GetPublished - GET /v1/assets/:id
func (h *Handler) GetPublished(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid asset id")
		return
	}

	asset, err := h.service.Get(c.Request.Context(), id)
	if model.HandleAssetError(c, err) {
		return
	}

	// Drafts exist only for admins.
	if !asset.IsPublished {
		response.NotFound(c, "The specified asset does not exist")
		return
	}

	response.Success(c, http.StatusOK, model.ToAssetResponse(*asset))
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// List - GET /v1/admin/assets
// Query params: search, type, status. Drafts included.
func (h *Handler) List(c *gin.Context) {
	q := model.FilterQuery{
		SearchTerm: c.Query("search"),
		MediaKind:  c.DefaultQuery("type", model.FilterMediaAll),
		Status:     c.DefaultQuery("status", model.FilterStatusAll),
	}

	assets, err := h.service.List(c.Request.Context(), q)
	if model.HandleAssetError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, model.ToAssetResponses(assets))
}

// Stats - GET /v1/admin/assets/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if model.HandleAssetError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// Refresh - POST /v1/admin/assets/refresh
// Re-fetches the catalog from the external store.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); model.HandleAssetError(c, err) {
		return
	}

	stats, err := h.service.Stats(c.Request.Context())
	if model.HandleAssetError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// Create - POST /v1/admin/assets
// Multipart form: file, title, description, category, tags (CSV),
// is_published.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := c.Get("userID")
	uploaderID, _ := userID.(uuid.UUID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "could not read uploaded file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.InternalServerError(c, "could not read uploaded file")
		return
	}

	req := model.CreateAssetRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Tags:        parseTags(c.PostForm("tags")),
		IsPublished: c.PostForm("is_published") == "true",
	}

	upload := model.FileUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}

	asset, err := h.service.Create(c.Request.Context(), uploaderID, req, upload)
	if model.HandleAssetError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, model.ToAssetResponse(*asset))
}

// Update - PATCH /v1/admin/assets/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid asset id")
		return
	}

	var req model.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	asset, err := h.service.Update(c.Request.Context(), id, req)
	if model.HandleAssetError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, model.ToAssetResponse(*asset))
}

// Delete - DELETE /v1/admin/assets/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid asset id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); model.HandleAssetError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
