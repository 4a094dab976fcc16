package auth

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/recruitportal/server/internal/config"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

// RedirectCallbackPath is where Google returns the browser after consent.
const RedirectCallbackPath = "/api/v1/auth/google/callback"

// sets up the redirect based Google login using goth
func InitializeProviders(cfg *config.Config) error {
	if !cfg.RedirectLoginEnabled() {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET must be set for redirect login")
	}

	// the state cookie key is derived so the session secret itself never
	// reaches a second consumer
	key := sha256.Sum256([]byte("oauth-state|" + cfg.JWTSecret))
	store := sessions.NewCookieStore(key[:])

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300, // 5 minutes, enough for the consent screen
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			strings.TrimRight(cfg.BaseURL, "/")+RedirectCallbackPath,
			"email", "profile",
		),
	)

	return nil
}

// converts a completed goth login into a claim, applying the same
// verified-email rule as the ID token exchange
func ClaimFromGothUser(user goth.User) (*Claim, error) {
	if user.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", ErrInvalidIdentityToken)
	}

	if !gothEmailVerified(user.RawData) {
		return nil, ErrEmailNotVerified
	}

	return &Claim{
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.AvatarURL,
	}, nil
}

// the userinfo endpoint reports verified_email, the ID token email_verified
func gothEmailVerified(raw map[string]any) bool {
	for _, key := range []string{"verified_email", "email_verified"} {
		switch v := raw[key].(type) {
		case bool:
			return v
		case string:
			return strings.EqualFold(v, "true")
		}
	}

	return false
}
