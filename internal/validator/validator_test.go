package validator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/recruitportal/server/internal/auth"
	"codeberg.org/recruitportal/server/internal/config"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "d8ebb2f8"

var testColumns = config.SheetsConfig{
	MainSheetName:      "Form Responses 1",
	LogSheetName:       "Security_Log",
	EmailColumn:        2,
	VerificationColumn: 4,
	StatusColumn:       5,
}

type cellWrite struct {
	Row, Col int
	Value    string
}

type fakeSheet struct {
	mu          sync.Mutex
	rows        [][]string
	times       []time.Time
	timesErr    error
	writes      []cellWrite
	backgrounds map[int]string
	logs        [][]string
	sheets      map[string]bool
	failUpdate  bool
}

func newFakeSheet(rows [][]string) *fakeSheet {
	return &fakeSheet{
		rows:        rows,
		backgrounds: make(map[int]string),
		sheets:      map[string]bool{"Form Responses 1": true},
	}
}

func (f *fakeSheet) ReadRows(_ context.Context, _ string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := make([][]string, len(f.rows))
	for i, row := range f.rows {
		copied[i] = append([]string(nil), row...)
	}

	return copied, nil
}

func (f *fakeSheet) ReadTimestamps(_ context.Context, _ string) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timesErr != nil {
		return nil, f.timesErr
	}

	return append([]time.Time(nil), f.times...), nil
}

func (f *fakeSheet) UpdateCell(_ context.Context, _ string, row, col int, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpdate {
		return errors.New("quota exceeded")
	}

	f.writes = append(f.writes, cellWrite{Row: row, Col: col, Value: value})

	r := f.rows[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	f.rows[row-1] = r

	return nil
}

func (f *fakeSheet) SetRowBackground(_ context.Context, _ string, row int, hexColor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.backgrounds[row] = hexColor
	return nil
}

func (f *fakeSheet) AppendRow(_ context.Context, sheet string, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sheet == "Security_Log" {
		f.logs = append(f.logs, values)
	}

	return nil
}

func (f *fakeSheet) EnsureSheet(_ context.Context, sheet string, header []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.sheets[sheet] {
		f.sheets[sheet] = true
		f.logs = append(f.logs, header)
	}

	return nil
}

func newTestValidator(t *testing.T, sheet Sheet, now time.Time) (*Validator, *verification.Codec) {
	t.Helper()

	clock := func() time.Time { return now }

	codec, err := verification.NewCodec(testSecret, verification.WithClock(clock))
	require.NoError(t, err)

	return New(sheet, codec, testColumns).WithClock(clock), codec
}

func TestProcessRow_Valid(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	sheet := newFakeSheet([][]string{{"Timestamp", "Email", "Name", "Token", "Status"}, {"t", "alice@example.com", "Alice", "x"}})
	v, codec := newTestValidator(t, sheet, now)

	token := codec.Generate("alice@example.com", now.Add(-5*time.Minute))

	verdict, err := v.ProcessRow(context.Background(), Row{Number: 2, Email: "alice@example.com", Token: token})

	require.NoError(t, err)
	assert.Equal(t, VerdictValid, verdict)
	assert.Equal(t, []cellWrite{{Row: 2, Col: 5, Value: StatusUnderReview}}, sheet.writes)
	assert.Empty(t, sheet.backgrounds)

	require.Len(t, sheet.logs, 2)
	assert.Equal(t, LogHeader, sheet.logs[0])
	assert.Equal(t, []string{"2026-10-15T09:30:00Z", "alice@example.com", "VALID", "N/A", "Verified submission"}, sheet.logs[1])
}

func TestProcessRow_Invalid(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	sheet := newFakeSheet([][]string{{"Timestamp"}, {"t"}})
	v, codec := newTestValidator(t, sheet, now)

	tests := []struct {
		name  string
		token string
	}{
		{"forged", "deadbeef"},
		{"missing", ""},
		{"expired", codec.Generate("alice@example.com", now.Add(-10*time.Minute))},
		{"other email", codec.Generate("bob@example.com", now)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := v.ProcessRow(context.Background(), Row{Number: 2, Email: "alice@example.com", Token: tt.token})

			require.NoError(t, err)
			assert.Equal(t, VerdictInvalid, verdict)
			assert.Equal(t, InvalidRowColor, sheet.backgrounds[2])
			assert.Equal(t, cellWrite{Row: 2, Col: 5, Value: StatusInvalid}, sheet.writes[len(sheet.writes)-1])

			entry := sheet.logs[len(sheet.logs)-1]
			assert.Equal(t, "INVALID", entry[2])
			assert.Equal(t, "Suspicious submission - invalid token", entry[4])
		})
	}
}

func TestProcessRow_WriteFailure(t *testing.T) {
	sheet := newFakeSheet([][]string{{"Timestamp"}, {"t"}})
	sheet.failUpdate = true
	v, _ := newTestValidator(t, sheet, time.Now())

	_, err := v.ProcessRow(context.Background(), Row{Number: 2, Email: "alice@example.com", Token: "deadbeef"})

	assert.Error(t, err)
	assert.Empty(t, sheet.logs, "nothing is logged when the row could not be marked")
}

func TestScan_ProcessesOnlyUnmarkedRows(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	sheet := newFakeSheet(nil)
	v, codec := newTestValidator(t, sheet, now)

	sheet.rows = [][]string{
		{"Timestamp", "Email", "Name", "Token", "Status"},
		{"t1", "alice@example.com", "Alice", codec.Generate("alice@example.com", now), ""},
		{"t2", "bob@example.com", "Bob", "deadbeef"},
		{"t3", "carol@example.com", "Carol", "whatever", "Selected"},
		{},
		{"t5", "dave@example.com", "Dave", codec.Generate("dave@example.com", now)},
	}

	report, err := v.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ScanReport{Processed: 3, Valid: 2, Invalid: 1}, report)
	assert.Equal(t, StatusUnderReview, sheet.rows[1][4])
	assert.Equal(t, StatusInvalid, sheet.rows[2][4])
	assert.Equal(t, "Selected", sheet.rows[3][4])
	assert.Equal(t, StatusUnderReview, sheet.rows[5][4])
	assert.Equal(t, InvalidRowColor, sheet.backgrounds[3])

	again, err := v.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScanReport{}, again, "each row is processed exactly once")
}

// a row left unmarked past the token window is judged at its form timestamp
func TestScan_ValidatesAtSubmissionTime(t *testing.T) {
	submitted := time.Date(2026, 10, 15, 9, 0, 5, 0, time.UTC)
	polled := submitted.Add(11 * time.Minute)

	sheet := newFakeSheet(nil)
	v, codec := newTestValidator(t, sheet, polled)

	sheet.rows = [][]string{
		{"Timestamp", "Email", "Name", "Token", "Status"},
		{"15/10/2026 09:00:05", "alice@example.com", "Alice", codec.Generate("alice@example.com", submitted)},
	}
	sheet.times = []time.Time{{}, submitted}

	report, err := v.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ScanReport{Processed: 1, Valid: 1}, report)
	assert.Equal(t, []cellWrite{{Row: 2, Col: 5, Value: StatusUnderReview}}, sheet.writes)
	assert.Empty(t, sheet.backgrounds)
}

func TestScan_FallsBackToClockWithoutTimestamp(t *testing.T) {
	submitted := time.Date(2026, 10, 15, 9, 0, 5, 0, time.UTC)
	polled := submitted.Add(11 * time.Minute)

	tests := []struct {
		name     string
		times    []time.Time
		timesErr error
	}{
		{"no timestamps", nil, nil},
		{"zero timestamp", []time.Time{{}, {}}, nil},
		{"timestamps unreadable", nil, errors.New("quota exceeded")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := newFakeSheet(nil)
			v, codec := newTestValidator(t, sheet, polled)

			sheet.rows = [][]string{
				{"Timestamp", "Email", "Name", "Token", "Status"},
				{"t", "alice@example.com", "Alice", codec.Generate("alice@example.com", submitted)},
				{"t", "bob@example.com", "Bob", codec.Generate("bob@example.com", polled)},
			}
			sheet.times = tt.times
			sheet.timesErr = tt.timesErr

			report, err := v.Scan(context.Background())

			require.NoError(t, err)
			assert.Equal(t, ScanReport{Processed: 2, Valid: 1, Invalid: 1}, report)
			assert.Equal(t, InvalidRowColor, sheet.backgrounds[2])
			assert.NotContains(t, sheet.backgrounds, 3)
		})
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	sheet := newFakeSheet([][]string{{"Timestamp", "Email", "Name", "Token", "Status"}, {"t", "bob@example.com", "Bob", "deadbeef"}})
	v, _ := newTestValidator(t, sheet, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- v.Watch(ctx, 10*time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		sheet.mu.Lock()
		defer sheet.mu.Unlock()
		return len(sheet.writes) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	assert.Error(t, v.Watch(context.Background(), 0))
}

func TestResetInvalid(t *testing.T) {
	sheet := newFakeSheet([][]string{
		{"Timestamp", "Email", "Name", "Token", "Status"},
		{"t1", "a@example.com", "A", "x", "INVALID"},
		{"t2", "b@example.com", "B", "x", "Selected"},
		{"t3", "c@example.com", "C", "x", "INVALID"},
	})
	v, _ := newTestValidator(t, sheet, time.Now())

	count, err := v.ResetInvalid(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, StatusUnderReview, sheet.rows[1][4])
	assert.Equal(t, "Selected", sheet.rows[2][4])
	assert.Equal(t, StatusUnderReview, sheet.rows[3][4])

	bg, ok := sheet.backgrounds[2]
	assert.True(t, ok)
	assert.Equal(t, "", bg)
}

func TestStatusCounts(t *testing.T) {
	sheet := newFakeSheet([][]string{
		{"Timestamp", "Email", "Name", "Token", "Status"},
		{"t", "a", "A", "x", "Under Review"},
		{"t", "b", "B", "x", "Selected"},
		{"t", "c", "C", "x", "Rejected"},
		{"t", "d", "D", "x", "INVALID"},
		{"t", "e", "E", "x", "INVALID"},
		{"t", "f", "F", "x", "On hold"},
		{"t", "g", "G", "x"},
	})
	v, _ := newTestValidator(t, sheet, time.Now())

	counts, err := v.StatusCounts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Counts{UnderReview: 1, Selected: 1, Rejected: 1, Invalid: 2, Other: 2}, counts)
}

func TestSelfTest(t *testing.T) {
	sheet := newFakeSheet(nil)
	v, _ := newTestValidator(t, sheet, time.Now())

	report, err := v.SelfTest(context.Background())

	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, "test@example.com", report.Email)
	assert.Len(t, report.Token, 64)

	require.Len(t, sheet.logs, 2)
	assert.Equal(t, "TEST", sheet.logs[1][2])
}

// a token minted for a signed-in session is accepted by the validator
// within the same minute, and a forged one is flagged
func TestEndToEnd_SessionTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 15, 0, time.UTC)
	clock := func() time.Time { return now }

	sessions, err := auth.NewSessionCodec("jwt-secret", auth.SessionTTL)
	require.NoError(t, err)
	sessions.WithClock(clock)

	sessionToken, _, err := sessions.Issue(auth.Claim{Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)

	claim, err := sessions.Verify(sessionToken)
	require.NoError(t, err)

	issuer, err := verification.NewCodec(testSecret, verification.WithClock(clock))
	require.NoError(t, err)
	minted := issuer.Now(claim.Email)

	now = now.Add(30 * time.Second)

	sheet := newFakeSheet([][]string{
		{"Timestamp", "Email", "Name", "Token", "Status"},
		{"t1", "alice@example.com", "Alice", minted},
		{"t2", "alice@example.com", "Alice", "deadbeef"},
	})
	v, _ := newTestValidator(t, sheet, now)

	report, err := v.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Valid)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, StatusUnderReview, sheet.rows[1][4])
	assert.Equal(t, StatusInvalid, sheet.rows[2][4])
	assert.Equal(t, InvalidRowColor, sheet.backgrounds[3])

	last := sheet.logs[len(sheet.logs)-1]
	assert.Equal(t, "INVALID", last[2])
}
