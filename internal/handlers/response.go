package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chalodk/lims-sub002/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondFromError maps the error taxonomy onto HTTP statuses: missing
// records 404, malformed input 422, everything else 500.
func RespondFromError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case apperr.IsValidation(err):
		RespondError(c, http.StatusUnprocessableEntity, "validation_failed", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
