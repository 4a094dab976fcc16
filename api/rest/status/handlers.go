package status

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/errors"
	"codeberg.org/recruitportal/server/internal/logger"
	"codeberg.org/recruitportal/server/internal/status"
	"github.com/gin-gonic/gin"
)

const cacheHeader = "X-Cache"

// GetStatusHandler godoc
// @Summary Get application status
// @Description Returns the newest application row for the signed-in applicant
// @Tags status
// @Accept json
// @Produce json
// @Param request body StatusRequest true "Applicant email"
// @Success 200 {object} status.Application
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.RateLimitResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/get-status [post]
func GetStatusHandler(service *status.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, exists := auth.GetClaim(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req StatusRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		result, err := service.Lookup(c.Request.Context(), *claim, req.Email)
		if err != nil {
			respondLookupError(c, err)
			return
		}

		if result.Cached {
			c.Header(cacheHeader, "HIT")
		} else {
			c.Header(cacheHeader, "MISS")
		}

		c.JSON(http.StatusOK, result.Application)
	}
}

func respondLookupError(c *gin.Context, err error) {
	var limited *status.RateLimitedError

	switch {
	case stderrors.Is(err, status.ErrForbidden):
		errors.Forbidden(c, "you can only check your own status")
	case stderrors.As(err, &limited):
		logger.FromContext(c.Request.Context()).Info("status lookup rate limited", "ip", c.ClientIP(), "retry_after", limited.RetryAfter)
		errors.TooManyRequests(c, "too many status requests", limited.RetryAfter)
	case stderrors.Is(err, status.ErrNotFound):
		errors.NotFound(c, "application")
	default:
		errors.InternalError(c, "unable to fetch application status", err)
	}
}
