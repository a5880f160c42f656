package api

import (
	"errors"
	"net/http"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func statusOf(err error) int {
	if errors.Is(err, account.ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	switch apperr.KindOf(err) {
	case apperr.KindDomainRule:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError hides the cause of unexpected failures; they are logged by
// the command and query layers.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	body := ErrorResponse{Error: err.Error(), Kind: apperr.KindOf(err).String()}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}

func respondBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// bindJSON reports whether the body decoded into v.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
