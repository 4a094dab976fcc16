package session

import "codeberg.org/recruitportal/server/internal/auth"

// VerifyTokenRequest carries the Google Identity Services credential
type VerifyTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyTokenResponse is returned after a session cookie was issued
type VerifyTokenResponse struct {
	Success bool        `json:"success"`
	User    *auth.Claim `json:"user"`
}

// UserResponse wraps the signed-in applicant
type UserResponse struct {
	User *auth.Claim `json:"user"`
}

// GenerateTokenRequest names the email the token is minted for
type GenerateTokenRequest struct {
	Email string `json:"email" binding:"required"`
}

// GenerateTokenResponse carries a verification token for the form
type GenerateTokenResponse struct {
	Token string `json:"token"`
}

// SuccessResponse for endpoints with no payload
type SuccessResponse struct {
	Success bool `json:"success"`
}
