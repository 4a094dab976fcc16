package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-123.apps.googleusercontent.com"

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return key
}

func signGoogleToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func googleClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            GoogleIssuer,
		"aud":            testClientID,
		"sub":            "1234567890",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"email":          "alice@example.com",
		"email_verified": true,
		"name":           "Alice",
		"picture":        "https://example.com/alice.png",
	}
}

func TestGoogleVerifier(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	key := newTestKey(t)
	otherKey := newTestKey(t)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := NewGoogleVerifierWithKeySet(testClientID, keySet, func() time.Time { return now })

	tests := []struct {
		name    string
		token   func() string
		wantErr error
	}{
		{
			name:  "valid token",
			token: func() string { return signGoogleToken(t, key, googleClaims(now)) },
		},
		{
			name: "string email_verified",
			token: func() string {
				claims := googleClaims(now)
				claims["email_verified"] = "true"
				return signGoogleToken(t, key, claims)
			},
		},
		{
			name: "unverified email",
			token: func() string {
				claims := googleClaims(now)
				claims["email_verified"] = false
				return signGoogleToken(t, key, claims)
			},
			wantErr: ErrEmailNotVerified,
		},
		{
			name: "wrong audience",
			token: func() string {
				claims := googleClaims(now)
				claims["aud"] = "someone-else"
				return signGoogleToken(t, key, claims)
			},
			wantErr: ErrInvalidIdentityToken,
		},
		{
			name: "wrong issuer",
			token: func() string {
				claims := googleClaims(now)
				claims["iss"] = "https://evil.example.com"
				return signGoogleToken(t, key, claims)
			},
			wantErr: ErrInvalidIdentityToken,
		},
		{
			name: "expired",
			token: func() string {
				claims := googleClaims(now.Add(-2 * time.Hour))
				return signGoogleToken(t, key, claims)
			},
			wantErr: ErrInvalidIdentityToken,
		},
		{
			name:    "signed by unknown key",
			token:   func() string { return signGoogleToken(t, otherKey, googleClaims(now)) },
			wantErr: ErrInvalidIdentityToken,
		},
		{
			name: "missing email",
			token: func() string {
				claims := googleClaims(now)
				delete(claims, "email")
				return signGoogleToken(t, key, claims)
			},
			wantErr: ErrInvalidIdentityToken,
		},
		{
			name:    "empty token",
			token:   func() string { return "" },
			wantErr: ErrInvalidIdentityToken,
		},
		{
			name:    "garbage",
			token:   func() string { return "not.a.token" },
			wantErr: ErrInvalidIdentityToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim, err := verifier.Verify(context.Background(), tt.token())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claim)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", claim.Email)
			assert.Equal(t, "Alice", claim.Name)
			assert.Equal(t, "https://example.com/alice.png", claim.Picture)
		})
	}
}

func TestNewGoogleVerifier_RequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier(context.Background(), "")

	assert.Error(t, err)
}
