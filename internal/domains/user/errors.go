package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"assetstore-backend/internal/shared/response"
)

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUserInactive       = errors.New("user account is inactive")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotVerified    = errors.New("email address not verified")
	ErrInvalidRole        = errors.New("invalid user role")
)

var userErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrUserNotFound: {
		Status:  http.StatusNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "The specified user does not exist",
	},
	ErrEmailAlreadyExists: {
		Status:  http.StatusConflict,
		Code:    "EMAIL_EXISTS",
		Message: "An account with this email already exists",
	},
	ErrInvalidCredentials: {
		Status:  http.StatusUnauthorized,
		Code:    "INVALID_CREDENTIALS",
		Message: "Invalid email or password",
	},
	ErrUserNotVerified: {
		Status:  http.StatusForbidden,
		Code:    "EMAIL_NOT_VERIFIED",
		Message: "Please verify your email address before signing in",
	},
	ErrUserInactive: {
		Status:  http.StatusForbidden,
		Code:    "ACCOUNT_INACTIVE",
		Message: "This account has been deactivated",
	},
	ErrInvalidToken: {
		Status:  http.StatusBadRequest,
		Code:    "INVALID_TOKEN",
		Message: "The token is invalid or has expired",
	},
	ErrTokenExpired: {
		Status:  http.StatusBadRequest,
		Code:    "TOKEN_EXPIRED",
		Message: "The token has expired, please request a new one",
	},
	ErrInvalidRole: {
		Status:  http.StatusBadRequest,
		Code:    "INVALID_ROLE",
		Message: "The specified role is not valid",
	},
}

// HandleUserError maps domain errors to HTTP responses. Returns true
// when err was handled.
func HandleUserError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for sentinel, config := range userErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, config.Status, config.Code, config.Message)
			return true
		}
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", validationErrs)
		return true
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled user error")
	response.InternalServerError(c, "An unexpected error occurred")
	return true
}
