package diagserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/framegraph/errors"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error   string              `json:"error"`
	Code    apperrors.ErrorCode `json:"code,omitempty"`
	Details map[string]any      `json:"details,omitempty"`
}

// respondWithError derives the status from the error code. Errors that are
// not AppErrors become INTERNAL_ERROR.
func respondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	c.JSON(statusFor(appErr.Code), errorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// respondUnavailable reports that no graph has published diagnostics yet.
func respondUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no diagnostics published yet"})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeUnknownNode, apperrors.ErrCodeUnknownPort, apperrors.ErrCodeComponentNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidPipeline, apperrors.ErrCodeConfig:
		return http.StatusBadRequest
	case apperrors.ErrCodeTypeMismatch, apperrors.ErrCodeCyclicDependency:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
