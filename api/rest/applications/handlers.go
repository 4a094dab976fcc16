package applications

import (
	"net/http"

	"codeberg.org/recruitportal/server/internal/application"
	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/errors"
	"codeberg.org/recruitportal/server/internal/logger"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/gin-gonic/gin"
)

// SubmitApplicationHandler godoc
// @Summary Submit an application
// @Description Validates the form, mints a verification token and relays both to the Google Form
// @Tags applications
// @Accept json
// @Produce json
// @Param request body application.Form true "Application form"
// @Success 200 {object} SubmitResponse
// @Failure 400 {object} errors.FieldErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/submit-application [post]
func SubmitApplicationHandler(relay *application.Relay, tokens *verification.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, exists := auth.GetClaim(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var form application.Form

		if err := c.ShouldBindJSON(&form); err != nil {
			errors.BadRequest(c, "invalid application", err)
			return
		}

		// the form email is never taken from the body
		form.Email = claim.Email

		if problems := form.Validate(); problems != nil {
			errors.FieldErrors(c, problems)
			return
		}

		token := tokens.Now(claim.Email)

		if err := relay.Submit(c.Request.Context(), &form, token); err != nil {
			errors.BadGateway(c, "failed to submit application", err)
			return
		}

		logger.Info("application relayed",
			"email", logger.MaskEmail(claim.Email),
			"team", form.Team,
		)

		c.JSON(http.StatusOK, SubmitResponse{Success: true, Team: form.Team})
	}
}
