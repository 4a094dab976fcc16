package config

import "time"

type Config struct {
	Environment string
	Port        string

	GoogleClientID     string
	GoogleClientSecret string // optional, enables the redirect login flow
	BaseURL            string
	FrontendURL        string

	JWTSecret          string
	VerificationSecret string

	AllowedOrigin     string
	SessionCookieName string

	Sheets SheetsConfig
	Token  TokenConfig

	RedisURL              string
	FormFieldsFile        string
	ValidatorPollInterval time.Duration
}

// SheetsConfig locates the response spreadsheet and the columns the
// validator writes to. Column numbers are 1-based, as shown in the sheet UI.
type SheetsConfig struct {
	ServiceAccountEmail string
	PrivateKey          string
	SpreadsheetID       string
	MainSheetName       string
	LogSheetName        string
	EmailColumn         int
	VerificationColumn  int
	StatusColumn        int
}

// TokenConfig tunes the verification token acceptance window. Both the API
// and the validator must run with the same values.
type TokenConfig struct {
	WindowMinutes    int
	LookaheadMinutes int
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedirectLoginEnabled reports whether the goth based login flow can run.
func (c *Config) RedirectLoginEnabled() bool {
	return c.GoogleClientSecret != ""
}
