package auth

import (
	"net/http"
	"time"
)

// DefaultCookieName matches what the portal frontend has always read.
const DefaultCookieName = "token"

// sets the session cookie: HttpOnly, Secure, SameSite=Strict on the whole site
func SetSessionCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// replaces the session cookie with an empty one that expires immediately.
// A negative MaxAge is rendered as "Max-Age=0".
func ClearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// returns the raw session token from the request, or ErrNoSession
func SessionFromRequest(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSession
	}

	return cookie.Value, nil
}
