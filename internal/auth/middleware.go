package auth

import (
	"errors"

	apierrors "codeberg.org/recruitportal/server/internal/errors"
	"github.com/gin-gonic/gin"
)

const (
	contextClaimKey = "session_claim"
	contextEmailKey = "user_email"
)

// validates the session cookie and adds the claim to the context
func RequireSession(codec *SessionCodec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, err := SessionFromContext(c, codec, cookieName)
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				apierrors.Unauthorized(c, "not authenticated")
			} else {
				apierrors.Unauthorized(c, "invalid session")
			}
			c.Abort()
			return
		}

		c.Set(contextClaimKey, claim)
		c.Set(contextEmailKey, claim.Email)

		c.Next()
	}
}

// reads and verifies the session cookie without aborting
func SessionFromContext(c *gin.Context, codec *SessionCodec, cookieName string) (*Claim, error) {
	raw, err := SessionFromRequest(c.Request, cookieName)
	if err != nil {
		return nil, err
	}

	return codec.Verify(raw)
}

// extracts the claim from context after RequireSession
func GetClaim(c *gin.Context) (*Claim, bool) {
	value, exists := c.Get(contextClaimKey)
	if !exists {
		return nil, false
	}

	claim, ok := value.(*Claim)
	return claim, ok
}
