package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"codeberg.org/recruitportal/server/internal/config"
	"codeberg.org/recruitportal/server/internal/logger"
)

const selfTestEmail = "test@example.com"

// Validator re-derives the verification token of each submitted row and
// flags rows that did not come through a signed-in session.
type Validator struct {
	sheet   Sheet
	tokens  TokenChecker
	columns config.SheetsConfig
	now     func() time.Time
	log     *slog.Logger

	mu          sync.Mutex
	logSheetSet bool
}

func New(sheet Sheet, tokens TokenChecker, columns config.SheetsConfig) *Validator {
	return &Validator{
		sheet:   sheet,
		tokens:  tokens,
		columns: columns,
		now:     time.Now,
		log:     logger.Component("validator"),
	}
}

// WithClock replaces the time source used to validate tokens
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// validates one row and records the outcome in the sheet
func (v *Validator) ProcessRow(ctx context.Context, row Row) (Verdict, error) {
	main := v.columns.MainSheetName

	// tokens are checked against the submission instant, not the poll
	at := row.SubmittedAt
	if at.IsZero() {
		at = v.now()
	}

	if !v.tokens.IsValidAt(row.Email, row.Token, at) {
		if err := v.sheet.SetRowBackground(ctx, main, row.Number, InvalidRowColor); err != nil {
			return "", fmt.Errorf("failed to flag row %d: %w", row.Number, err)
		}

		if err := v.sheet.UpdateCell(ctx, main, row.Number, v.columns.StatusColumn, StatusInvalid); err != nil {
			return "", fmt.Errorf("failed to mark row %d invalid: %w", row.Number, err)
		}

		v.logEvent(ctx, row.Email, VerdictInvalid, "Suspicious submission - invalid token")
		v.log.Warn("invalid submission flagged", "row", row.Number, "email", logger.MaskEmail(row.Email))

		return VerdictInvalid, nil
	}

	if err := v.sheet.UpdateCell(ctx, main, row.Number, v.columns.StatusColumn, StatusUnderReview); err != nil {
		return "", fmt.Errorf("failed to mark row %d for review: %w", row.Number, err)
	}

	v.logEvent(ctx, row.Email, VerdictValid, "Verified submission")
	v.log.Info("submission verified", "row", row.Number, "email", logger.MaskEmail(row.Email))

	return VerdictValid, nil
}

// processes every data row whose status cell is still empty
func (v *Validator) Scan(ctx context.Context) (ScanReport, error) {
	var report ScanReport

	rows, err := v.sheet.ReadRows(ctx, v.columns.MainSheetName)
	if err != nil {
		return report, fmt.Errorf("failed to read responses: %w", err)
	}

	times, err := v.sheet.ReadTimestamps(ctx, v.columns.MainSheetName)
	if err != nil {
		v.log.Warn("form timestamps unavailable, validating against current time", "error", err.Error())
		times = nil
	}

	var errs []error

	for i := 1; i < len(rows); i++ {
		values := rows[i]

		if isBlank(values) || cell(values, v.columns.StatusColumn) != "" {
			continue
		}

		row := Row{
			Number: i + 1,
			Email:  cell(values, v.columns.EmailColumn),
			Token:  cell(values, v.columns.VerificationColumn),
		}
		if i < len(times) {
			row.SubmittedAt = times[i]
		}

		verdict, err := v.ProcessRow(ctx, row)
		if err != nil {
			report.Failed++
			errs = append(errs, err)
			continue
		}

		report.Processed++
		if verdict == VerdictValid {
			report.Valid++
		} else {
			report.Invalid++
		}
	}

	return report, errors.Join(errs...)
}

// scans immediately and then every interval until ctx is cancelled
func (v *Validator) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}

	v.log.Info("validator watching responses", "interval", interval.String(), "sheet", v.columns.MainSheetName)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		v.scanOnce(ctx)

		select {
		case <-ctx.Done():
			v.log.Info("validator stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (v *Validator) scanOnce(ctx context.Context) {
	report, err := v.Scan(ctx)
	if err != nil {
		v.log.Error("scan finished with errors", "error", err.Error(), "failed", report.Failed)
	}

	if report.Processed > 0 {
		v.log.Info("scan complete",
			"processed", report.Processed,
			"valid", report.Valid,
			"invalid", report.Invalid,
		)
	}
}

// returns INVALID rows to review and clears their highlight
func (v *Validator) ResetInvalid(ctx context.Context) (int, error) {
	main := v.columns.MainSheetName

	rows, err := v.sheet.ReadRows(ctx, main)
	if err != nil {
		return 0, fmt.Errorf("failed to read responses: %w", err)
	}

	count := 0
	for i := 1; i < len(rows); i++ {
		if cell(rows[i], v.columns.StatusColumn) != StatusInvalid {
			continue
		}

		number := i + 1

		if err := v.sheet.UpdateCell(ctx, main, number, v.columns.StatusColumn, StatusUnderReview); err != nil {
			return count, fmt.Errorf("failed to reset row %d: %w", number, err)
		}

		if err := v.sheet.SetRowBackground(ctx, main, number, ""); err != nil {
			return count, fmt.Errorf("failed to clear row %d: %w", number, err)
		}

		count++
	}

	v.log.Info("reset invalid entries", "count", count)

	return count, nil
}

// tallies the status column of every data row
func (v *Validator) StatusCounts(ctx context.Context) (Counts, error) {
	var counts Counts

	rows, err := v.sheet.ReadRows(ctx, v.columns.MainSheetName)
	if err != nil {
		return counts, fmt.Errorf("failed to read responses: %w", err)
	}

	for i := 1; i < len(rows); i++ {
		switch cell(rows[i], v.columns.StatusColumn) {
		case StatusUnderReview:
			counts.UnderReview++
		case StatusSelected:
			counts.Selected++
		case StatusRejected:
			counts.Rejected++
		case StatusInvalid:
			counts.Invalid++
		default:
			counts.Other++
		}
	}

	return counts, nil
}

// mints and checks a token for a fixed address and writes a TEST log row
func (v *Validator) SelfTest(ctx context.Context) (SelfTestReport, error) {
	token := v.tokens.Now(selfTestEmail)

	report := SelfTestReport{
		Email: selfTestEmail,
		Token: token,
		Valid: v.tokens.IsValidAt(selfTestEmail, token, v.now()),
	}

	if err := v.appendLog(ctx, selfTestEmail, VerdictTest, "Manual test run from validator CLI"); err != nil {
		return report, err
	}

	return report, nil
}

// security log failures never block row processing
func (v *Validator) logEvent(ctx context.Context, email string, verdict Verdict, action string) {
	if err := v.appendLog(ctx, email, verdict, action); err != nil {
		v.log.Error("failed to write security log", "error", err.Error(), "status", string(verdict))
	}
}

func (v *Validator) appendLog(ctx context.Context, email string, verdict Verdict, action string) error {
	if err := v.ensureLogSheet(ctx); err != nil {
		return err
	}

	entry := []string{
		v.now().UTC().Format(time.RFC3339),
		email,
		string(verdict),
		unknownIP,
		action,
	}

	if err := v.sheet.AppendRow(ctx, v.columns.LogSheetName, entry); err != nil {
		return fmt.Errorf("failed to append security log: %w", err)
	}

	return nil
}

func (v *Validator) ensureLogSheet(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.logSheetSet {
		return nil
	}

	if err := v.sheet.EnsureSheet(ctx, v.columns.LogSheetName, LogHeader); err != nil {
		return fmt.Errorf("failed to prepare security log: %w", err)
	}

	v.logSheetSet = true
	return nil
}

// returns the trimmed value of a 1-based column
func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}

	return strings.TrimSpace(row[col-1])
}

func isBlank(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}

	return true
}
