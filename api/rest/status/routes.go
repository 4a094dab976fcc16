package status

import (
	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/status"
	"github.com/gin-gonic/gin"
)

// registers the status lookup route
func RegisterRoutes(router *gin.RouterGroup, service *status.Service, sessions *auth.SessionCodec, cookieName string) {
	router.POST("/get-status",
		auth.RequireSession(sessions, cookieName),
		GetStatusHandler(service),
	)
}
