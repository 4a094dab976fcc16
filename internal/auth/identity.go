package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	GoogleIssuer  = "https://accounts.google.com"
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// IdentityVerifier turns a raw identity token from the browser into a
// trusted claim.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claim, error)
}

// GoogleVerifier checks Google Identity Services credentials: signature
// against Google's published keys, issuer, audience (our client id), expiry
// and the email_verified flag.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)

// creates a verifier backed by Google's remote key set. The key set is
// fetched lazily and cached by go-oidc, so ctx must outlive the server.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client id is required")
	}

	keySet := oidc.NewRemoteKeySet(ctx, GoogleJWKSURL)
	return NewGoogleVerifierWithKeySet(clientID, keySet, nil), nil
}

// creates a verifier with an explicit key set and clock
func NewGoogleVerifierWithKeySet(clientID string, keySet oidc.KeySet, now func() time.Time) *GoogleVerifier {
	cfg := &oidc.Config{
		ClientID: clientID,
		Now:      now,
	}

	return &GoogleVerifier{
		verifier: oidc.NewVerifier(GoogleIssuer, keySet, cfg),
	}
}

type googleIDClaims struct {
	Email         string   `json:"email"`
	EmailVerified flexBool `json:"email_verified"`
	Name          string   `json:"name"`
	Picture       string   `json:"picture"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*Claim, error) {
	if rawToken == "" {
		return nil, ErrInvalidIdentityToken
	}

	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIdentityToken, err)
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIdentityToken, err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("%w: token has no email", ErrInvalidIdentityToken)
	}

	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &Claim{
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// flexBool accepts true/false as JSON booleans or strings; older Google
// tokens encoded email_verified as "true".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*b = flexBool(asBool)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return errors.New("email_verified must be a boolean")
	}

	*b = flexBool(strings.EqualFold(asString, "true"))
	return nil
}
