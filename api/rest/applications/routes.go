package applications

import (
	"codeberg.org/recruitportal/server/internal/application"
	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/gin-gonic/gin"
)

// registers the relay route; callers skip this when no field map is configured
func RegisterRoutes(router *gin.RouterGroup, relay *application.Relay, tokens *verification.Codec, sessions *auth.SessionCodec, cookieName string) {
	router.POST("/submit-application",
		auth.RequireSession(sessions, cookieName),
		SubmitApplicationHandler(relay, tokens),
	)
}
