package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/cache"
	"codeberg.org/recruitportal/server/internal/logger"
)

// Service answers "what happened to my application" for a signed-in applicant.
type Service struct {
	reader   SheetReader
	sheet    string
	quota    Quota
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewService(reader SheetReader, sheet string, quota Quota, c cache.Cache) *Service {
	return &Service{
		reader:   reader,
		sheet:    sheet,
		quota:    quota,
		cache:    c,
		cacheTTL: cache.StatusTTL,
	}
}

// looks up the newest response row for requestedEmail on behalf of session
func (s *Service) Lookup(ctx context.Context, session auth.Claim, requestedEmail string) (*Result, error) {
	if requestedEmail == "" || requestedEmail != session.Email {
		return nil, ErrForbidden
	}

	decision, err := s.quota.Take(ctx, requestedEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if !decision.Allowed {
		return nil, &RateLimitedError{RetryAfter: decision.RetryAfter}
	}

	key := cache.StatusKey(requestedEmail)

	if app, ok := s.fromCache(ctx, key); ok {
		return &Result{Application: *app, Cached: true}, nil
	}

	app, err := s.read(ctx, session, requestedEmail)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, app)

	return &Result{Application: *app}, nil
}

func (s *Service) read(ctx context.Context, session auth.Claim, email string) (*Application, error) {
	rows, err := s.reader.ReadRows(ctx, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	cols := findColumns(rows[0])
	if cols.email < 0 {
		return nil, fmt.Errorf("%w: no email column in %q", ErrUnavailable, s.sheet)
	}

	row := findLatestRow(rows, cols, email)
	if row == nil {
		return nil, ErrNotFound
	}

	return buildApplication(row, cols, session, email), nil
}

func buildApplication(row []string, cols columns, session auth.Claim, email string) *Application {
	app := &Application{
		Name:   cell(row, cols.name),
		Email:  email,
		Team:   cell(row, cols.team),
		Status: cell(row, cols.status),
	}

	if app.Name == "" {
		app.Name = session.Name
	}

	if app.Team == "" {
		app.Team = DefaultTeam
	}

	if app.Status == "" {
		app.Status = DefaultStatus
	}

	if submitted := cell(row, timestampColumn); submitted != "" {
		app.SubmittedDate = &submitted
	}

	app.Outcome, app.Label = Classify(app.Status)

	return app
}

// cache failures degrade to a sheet read
func (s *Service) fromCache(ctx context.Context, key string) (*Application, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("status cache read failed", "error", err.Error())
		return nil, false
	}

	if !ok {
		return nil, false
	}

	var app Application
	if err := json.Unmarshal(raw, &app); err != nil {
		logger.Warn("discarding unreadable status cache entry", "error", err.Error())
		return nil, false
	}

	return &app, true
}

func (s *Service) store(ctx context.Context, key string, app *Application) {
	raw, err := json.Marshal(app)
	if err != nil {
		logger.Warn("failed to encode status for cache", "error", err.Error())
		return
	}

	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		logger.Warn("status cache write failed", "error", err.Error())
	}
}
