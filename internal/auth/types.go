package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret        = errors.New("session signing secret is required")
	ErrInvalidSession       = errors.New("invalid session")
	ErrNoSession            = errors.New("no session")
	ErrInvalidIdentityToken = errors.New("invalid identity token")
	ErrEmailNotVerified     = errors.New("email not verified")
)

// Claim is the identity asserted about a signed-in applicant.
type Claim struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// represents session JWT claims
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Claim() *Claim {
	return &Claim{
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
	}
}
