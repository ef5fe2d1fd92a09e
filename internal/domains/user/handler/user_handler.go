package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"assetstore-backend/internal/domains/user"
	"assetstore-backend/internal/shared/response"
)

// Handler - HTTP handlers for authentication
type Handler struct {
	service user.Service
}

// NewHandler - Constructor with DI
func NewHandler(service user.Service) *Handler {
	return &Handler{service: service}
}

// Register - POST /v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// Login - POST /v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Logout - POST /v1/auth/logout (authenticated)
func (h *Handler) Logout(c *gin.Context) {
	raw, exists := c.Get("userID")
	userID, ok := raw.(uuid.UUID)
	if !exists || !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Refresh - POST /v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req user.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "refresh_token is required")
		return
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// VerifyEmail - GET /v1/auth/verify?token=
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.BadRequest(c, "token is required")
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), token); user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verified": true})
}

// ResendVerification - POST /v1/auth/resend-verification
func (h *Handler) ResendVerification(c *gin.Context) {
	var req user.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), req.Email); user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

// ForgotPassword - POST /v1/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req); user.HandleUserError(c, err) {
		return
	}

	// Always the same answer whether or not the email exists.
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

// ResetPassword - POST /v1/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

// Me - GET /v1/auth/me (authenticated)
func (h *Handler) Me(c *gin.Context) {
	raw, exists := c.Get("userID")
	userID, ok := raw.(uuid.UUID)
	if !exists || !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	dto, err := h.service.GetProfile(c.Request.Context(), userID)
	if user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, dto)
}
