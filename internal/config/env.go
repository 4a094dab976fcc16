package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort              = "8080"
	defaultCookieName        = "token"
	defaultMainSheetName     = "Form Responses 1"
	defaultLogSheetName      = "Security_Log"
	defaultEmailColumn       = 2
	defaultVerificationCol   = 42
	defaultStatusColumn      = 43
	defaultTokenWindow       = 10
	defaultValidatorInterval = 30 * time.Second
)

// loads the API server configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	loadDotEnv()

	cfg, err := loadShared()
	if err != nil {
		return nil, err
	}

	if cfg.GoogleClientID, err = requireEnv("GOOGLE_CLIENT_ID"); err != nil {
		return nil, err
	}

	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	cfg.AllowedOrigin = os.Getenv("ALLOWED_ORIGIN")
	if cfg.AllowedOrigin == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("ALLOWED_ORIGIN environment variable is required in production")
		}
		cfg.AllowedOrigin = "http://localhost:5173"
	}

	if cfg.IsProduction() && cfg.AllowedOrigin == "*" {
		return nil, fmt.Errorf("ALLOWED_ORIGIN must name the deployment origin in production, not a wildcard")
	}

	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.BaseURL = getEnv("BASE_URL", "http://localhost:"+cfg.Port)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.AllowedOrigin)
	cfg.SessionCookieName = getEnv("SESSION_COOKIE_NAME", defaultCookieName)
	cfg.FormFieldsFile = os.Getenv("FORM_FIELDS_FILE")

	return cfg, nil
}

// loads the subset of configuration needed by the spreadsheet validator
func LoadValidatorConfig() (*Config, error) {
	loadDotEnv()

	cfg, err := loadShared()
	if err != nil {
		return nil, err
	}

	if cfg.ValidatorPollInterval, err = envDuration("VALIDATOR_POLL_INTERVAL", defaultValidatorInterval); err != nil {
		return nil, err
	}

	return cfg, nil
}

// a missing .env is normal outside development
func loadDotEnv() {
	_ = godotenv.Load()
}

func loadShared() (*Config, error) {
	var err error

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", defaultPort),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	if cfg.VerificationSecret, err = requireEnv("VERIFICATION_SECRET"); err != nil {
		return nil, err
	}

	if cfg.Sheets, err = loadSheets(); err != nil {
		return nil, err
	}

	if cfg.Token.WindowMinutes, err = envInt("TOKEN_WINDOW_MINUTES", defaultTokenWindow); err != nil {
		return nil, err
	}

	if cfg.Token.LookaheadMinutes, err = envInt("TOKEN_LOOKAHEAD_MINUTES", 0); err != nil {
		return nil, err
	}

	if cfg.Token.WindowMinutes < 1 || cfg.Token.LookaheadMinutes < 0 {
		return nil, fmt.Errorf("TOKEN_WINDOW_MINUTES must be >= 1 and TOKEN_LOOKAHEAD_MINUTES >= 0")
	}

	return cfg, nil
}

func loadSheets() (SheetsConfig, error) {
	var (
		sc  SheetsConfig
		err error
	)

	if sc.ServiceAccountEmail, err = requireEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL"); err != nil {
		return sc, err
	}

	if sc.PrivateKey, err = requireEnv("GOOGLE_PRIVATE_KEY"); err != nil {
		return sc, err
	}

	// hosting dashboards store the PEM on one line with escaped newlines
	sc.PrivateKey = strings.ReplaceAll(sc.PrivateKey, `\n`, "\n")

	if sc.SpreadsheetID, err = requireEnv("GOOGLE_SHEET_ID"); err != nil {
		return sc, err
	}

	sc.MainSheetName = getEnv("MAIN_SHEET_NAME", defaultMainSheetName)
	sc.LogSheetName = getEnv("LOG_SHEET_NAME", defaultLogSheetName)

	if sc.EmailColumn, err = envInt("EMAIL_COLUMN", defaultEmailColumn); err != nil {
		return sc, err
	}

	if sc.VerificationColumn, err = envInt("VERIFICATION_COLUMN", defaultVerificationCol); err != nil {
		return sc, err
	}

	if sc.StatusColumn, err = envInt("STATUS_COLUMN", defaultStatusColumn); err != nil {
		return sc, err
	}

	if sc.EmailColumn < 1 || sc.VerificationColumn < 1 || sc.StatusColumn < 1 {
		return sc, fmt.Errorf("sheet column numbers are 1-based and must be positive")
	}

	return sc, nil
}

func requireEnv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is required", name)
	}

	return value, nil
}

func getEnv(name, defaultValue string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}

	return defaultValue
}

func envInt(name string, defaultValue int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}

	return value, nil
}

func envDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 30s: %w", name, err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}

	return value, nil
}
