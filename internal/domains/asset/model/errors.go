package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"assetstore-backend/internal/shared/response"
)

var (
	ErrAssetNotFound       = errors.New("asset not found")
	ErrNotAuthenticated    = errors.New("user not authenticated")
	ErrCatalogFetch        = errors.New("failed to fetch asset catalog")
	ErrVersionConflict     = errors.New("version conflict: asset was modified by another user")
	ErrInvalidCategory     = errors.New("invalid asset category")
	ErrTitleRequired       = errors.New("title must not be empty")
	ErrTitleTooLong        = errors.New("title exceeds 255 characters")
	ErrUnsupportedFileType = errors.New("file type must be audio/* or image/*")
	ErrFileTooLarge        = errors.New("file exceeds maximum upload size")
)

var assetErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrAssetNotFound: {
		Status:  http.StatusNotFound,
		Code:    "ASSET_NOT_FOUND",
		Message: "The specified asset does not exist",
	},
	ErrNotAuthenticated: {
		Status:  http.StatusUnauthorized,
		Code:    "NOT_AUTHENTICATED",
		Message: "You must be signed in to perform this action",
	},
	ErrVersionConflict: {
		Status:  http.StatusConflict,
		Code:    "VERSION_CONFLICT",
		Message: "The asset has been modified by another user. Please refresh and try again",
	},
	ErrInvalidCategory: {
		Status:  http.StatusBadRequest,
		Code:    "INVALID_CATEGORY",
		Message: "The specified category is not in the allowed set",
	},
	ErrUnsupportedFileType: {
		Status:  http.StatusBadRequest,
		Code:    "UNSUPPORTED_FILE_TYPE",
		Message: "Only audio and image files can be uploaded",
	},
	ErrFileTooLarge: {
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "FILE_TOO_LARGE",
		Message: "The uploaded file exceeds the maximum allowed size",
	},
	ErrCatalogFetch: {
		Status:  http.StatusInternalServerError,
		Code:    "CATALOG_FETCH_FAILED",
		Message: "Could not load the asset catalog. Please retry",
	},
}

// HandleAssetError maps domain errors to HTTP responses. Returns true
// when err was handled (handler should return).
func HandleAssetError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for sentinel, config := range assetErrorMap {
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

	log.Error().Err(err).Msg("Unhandled asset error")
	response.InternalServerError(c, "Internal server error")
	return true
}
