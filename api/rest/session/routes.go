package session

import (
	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/ratelimit"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/gin-gonic/gin"
)

// Dependencies are what the session routes need from the server
type Dependencies struct {
	Sessions   *auth.SessionCodec
	Identity   auth.IdentityVerifier
	Tokens     *verification.Codec
	Throttle   *ratelimit.IPThrottle
	CookieName string

	// redirect login, registered only when enabled
	RedirectLogin bool
	FrontendURL   string
}

// registers all session routes
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies) {
	router.GET("/check-session", CheckSessionHandler(deps.Sessions, deps.CookieName))
	router.POST("/logout", LogoutHandler(deps.CookieName, deps.RedirectLogin))

	verify := []gin.HandlerFunc{VerifyGoogleTokenHandler(deps.Identity, deps.Sessions, deps.CookieName)}
	if deps.Throttle != nil {
		verify = append([]gin.HandlerFunc{deps.Throttle.Middleware()}, verify...)
	}
	router.POST("/verify-google-token", verify...)

	router.POST("/generate-token",
		auth.RequireSession(deps.Sessions, deps.CookieName),
		GenerateTokenHandler(deps.Tokens),
	)

	if deps.RedirectLogin {
		authGroup := router.Group("/auth")
		{
			authGroup.GET("/google", BeginGoogleLoginHandler())
			authGroup.GET("/google/callback", GoogleCallbackHandler(deps.Sessions, deps.CookieName, deps.FrontendURL))
		}
	}
}
