package validator

import (
	"context"
	"time"
)

const (
	StatusInvalid     = "INVALID"
	StatusUnderReview = "Under Review"
	StatusSelected    = "Selected"
	StatusRejected    = "Rejected"

	// background applied to rows whose token does not verify
	InvalidRowColor = "#ffcccc"

	// written where the form submission carries no client address
	unknownIP = "N/A"
)

// LogHeader is the first row of the security log sheet.
var LogHeader = []string{"Timestamp", "Email", "Status", "IP_Address", "Action"}

// Verdict is the security log outcome for a row.
type Verdict string

const (
	VerdictValid   Verdict = "VALID"
	VerdictInvalid Verdict = "INVALID"
	VerdictTest    Verdict = "TEST"
)

// Sheet is the spreadsheet surface the validator reads and flags.
// Rows and columns are 1-based.
type Sheet interface {
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
	// ReadTimestamps returns the form timestamp of each row, zero where absent.
	ReadTimestamps(ctx context.Context, sheet string) ([]time.Time, error)
	UpdateCell(ctx context.Context, sheet string, row, col int, value string) error
	SetRowBackground(ctx context.Context, sheet string, row int, hexColor string) error
	AppendRow(ctx context.Context, sheet string, values []string) error
	EnsureSheet(ctx context.Context, sheet string, header []string) error
}

// TokenChecker recomputes verification tokens.
type TokenChecker interface {
	Now(email string) string
	IsValidAt(email, candidate string, at time.Time) bool
}

// Row is one appended form response.
type Row struct {
	Number      int // 1-based sheet row
	Email       string
	Token       string
	SubmittedAt time.Time // zero when the form timestamp is unreadable
}

// ScanReport summarises one pass over the response sheet.
type ScanReport struct {
	Processed int `json:"processed" yaml:"processed"`
	Valid     int `json:"valid" yaml:"valid"`
	Invalid   int `json:"invalid" yaml:"invalid"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Counts tallies the status column.
type Counts struct {
	UnderReview int `json:"underReview" yaml:"underReview"`
	Selected    int `json:"selected" yaml:"selected"`
	Rejected    int `json:"rejected" yaml:"rejected"`
	Invalid     int `json:"invalid" yaml:"invalid"`
	Other       int `json:"other" yaml:"other"`
}

// SelfTestReport is the result of a round trip through the token codec.
type SelfTestReport struct {
	Email string `json:"email" yaml:"email"`
	Token string `json:"token" yaml:"token"`
	Valid bool   `json:"valid" yaml:"valid"`
}
