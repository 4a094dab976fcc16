package status

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/recruitportal/server/internal/ratelimit"
)

var (
	// the requested email is not the signed-in applicant's
	ErrForbidden = errors.New("can only check your own status")

	// no row carries the applicant's email
	ErrNotFound = errors.New("application not found")

	// the sheet could not be read or is not shaped as expected
	ErrUnavailable = errors.New("status is temporarily unavailable")
)

// RateLimitedError reports an exhausted lookup quota.
type RateLimitedError struct {
	RetryAfter int // seconds
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many status requests, retry after %ds", e.RetryAfter)
}

// Outcome groups free-text sheet statuses into what the applicant sees.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomePending  Outcome = "pending"
)

const (
	DefaultTeam   = "Not specified"
	DefaultStatus = "Under Review"
)

// Application is an applicant's most recent response row.
type Application struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Team          string  `json:"team"`
	Status        string  `json:"status"`
	SubmittedDate *string `json:"submittedDate"`
	Outcome       Outcome `json:"outcome"`
	Label         string  `json:"label"`
}

// Result is a lookup answer and whether it came from cache.
type Result struct {
	Application Application
	Cached      bool
}

// SheetReader reads every populated row of a named sheet.
type SheetReader interface {
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
}

// Quota counts lookups per applicant.
type Quota interface {
	Take(ctx context.Context, key string) (ratelimit.Decision, error)
}
