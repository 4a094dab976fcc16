package session

import (
	stderrors "errors"
	"net/http"
	"net/url"

	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/errors"
	"codeberg.org/recruitportal/server/internal/logger"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

// CheckSessionHandler godoc
// @Summary Check session
// @Description Returns the signed-in applicant from the session cookie
// @Tags session
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/check-session [get]
func CheckSessionHandler(codec *auth.SessionCodec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, err := auth.SessionFromContext(c, codec, cookieName)
		if err != nil {
			if stderrors.Is(err, auth.ErrNoSession) {
				errors.Unauthorized(c, "no session")
				return
			}

			errors.Unauthorized(c, "invalid session")
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: claim})
	}
}

// VerifyGoogleTokenHandler godoc
// @Summary Sign in with Google
// @Description Verifies a Google ID token and sets the session cookie
// @Tags session
// @Accept json
// @Produce json
// @Param request body VerifyTokenRequest true "Google credential"
// @Success 200 {object} VerifyTokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.RateLimitResponse
// @Router /api/v1/verify-google-token [post]
func VerifyGoogleTokenHandler(verifier auth.IdentityVerifier, codec *auth.SessionCodec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyTokenRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "token is required", nil)
			return
		}

		claim, err := verifier.Verify(c.Request.Context(), req.Token)
		if err != nil {
			if stderrors.Is(err, auth.ErrEmailNotVerified) {
				errors.Forbidden(c, "email not verified")
				return
			}

			logger.Warn("identity token rejected", "ip", c.ClientIP(), "error", err.Error())
			errors.Unauthorized(c, "invalid token")
			return
		}

		if !issueSession(c, codec, cookieName, claim) {
			return
		}

		logger.Info("applicant signed in", "email", logger.MaskEmail(claim.Email))

		c.JSON(http.StatusOK, VerifyTokenResponse{
			Success: true,
			User:    claim,
		})
	}
}

// GenerateTokenHandler godoc
// @Summary Mint a verification token
// @Description Returns a short-lived token binding the applicant's email to the current minute
// @Tags session
// @Accept json
// @Produce json
// @Param request body GenerateTokenRequest true "Applicant email"
// @Success 200 {object} GenerateTokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/generate-token [post]
func GenerateTokenHandler(tokens *verification.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, exists := auth.GetClaim(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req GenerateTokenRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if req.Email != claim.Email {
			errors.Forbidden(c, "email mismatch")
			return
		}

		c.JSON(http.StatusOK, GenerateTokenResponse{Token: tokens.Now(claim.Email)})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Clears the session cookie
// @Tags session
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/logout [post]
func LogoutHandler(cookieName string, clearOAuthState bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.ClearSessionCookie(c.Writer, cookieName)

		if clearOAuthState {
			if err := gothic.Logout(c.Writer, c.Request); err != nil {
				logger.Debug("no oauth state to clear", "error", err.Error())
			}
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// BeginGoogleLoginHandler godoc
// @Summary Start Google redirect login
// @Description Redirects the browser to Google's consent screen
// @Tags session
// @Success 307 {string} string "Redirect to Google"
// @Router /api/v1/auth/google [get]
func BeginGoogleLoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		setProvider(c)
		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// GoogleCallbackHandler godoc
// @Summary Google redirect login callback
// @Description Completes the redirect login, sets the session cookie and returns to the frontend
// @Tags session
// @Success 302 {string} string "Redirect to the frontend"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/auth/google/callback [get]
func GoogleCallbackHandler(codec *auth.SessionCodec, cookieName, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		setProvider(c)

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			logger.Warn("google redirect login failed", "error", err.Error())
			errors.Unauthorized(c, "authentication failed")
			return
		}

		claim, err := auth.ClaimFromGothUser(gothUser)
		if err != nil {
			if stderrors.Is(err, auth.ErrEmailNotVerified) {
				errors.Forbidden(c, "email not verified")
				return
			}

			errors.Unauthorized(c, "authentication failed")
			return
		}

		if !issueSession(c, codec, cookieName, claim) {
			return
		}

		logger.Info("applicant signed in via redirect", "email", logger.MaskEmail(claim.Email))

		c.Redirect(http.StatusFound, safeRedirect(frontendURL))
	}
}

func issueSession(c *gin.Context, codec *auth.SessionCodec, cookieName string, claim *auth.Claim) bool {
	token, _, err := codec.Issue(*claim)
	if err != nil {
		errors.InternalError(c, "failed to create session", err)
		return false
	}

	auth.SetSessionCookie(c.Writer, cookieName, token, codec.TTL())
	return true
}

// gothic reads the provider from the query string
func setProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", "google")
	c.Request.URL.RawQuery = q.Encode()
}

// returns frontendURL when it parses as an absolute URL, else "/"
func safeRedirect(frontendURL string) string {
	u, err := url.Parse(frontendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "/"
	}

	return u.String()
}
