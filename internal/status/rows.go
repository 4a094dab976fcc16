package status

import "strings"

// columns holds 0-based header positions; -1 means absent
type columns struct {
	email  int
	name   int
	team   int
	status int
}

const timestampColumn = 0

func findColumns(header []string) columns {
	return columns{
		email:  findHeader(header, "email"),
		name:   findHeader(header, "name"),
		team:   findHeader(header, "team"),
		status: findHeader(header, "status"),
	}
}

// returns the first header containing needle, ignoring case
func findHeader(header []string, needle string) int {
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), needle) {
			return i
		}
	}

	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}

	return row[col]
}

// scans data rows newest first for the applicant's email
func findLatestRow(rows [][]string, cols columns, email string) []string {
	for i := len(rows) - 1; i >= 1; i-- {
		if strings.EqualFold(cell(rows[i], cols.email), email) {
			return rows[i]
		}
	}

	return nil
}

// maps free-text sheet status to an outcome and display label
func Classify(status string) (Outcome, string) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "selected", "accepted":
		return OutcomeSuccess, "Selected"
	case "rejected":
		return OutcomeRejected, "Not Shortlisted"
	default:
		return OutcomePending, "Under Review"
	}
}
