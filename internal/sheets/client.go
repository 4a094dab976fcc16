package sheets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"codeberg.org/recruitportal/server/internal/config"
	"golang.org/x/oauth2/google"
	oauthjwt "golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const requestTimeout = 15 * time.Second

var ErrSheetNotFound = errors.New("sheet not found")

// Client reads and writes one spreadsheet with a service account.
type Client struct {
	service       *gsheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
	location *time.Location
}

// creates a client authenticated as the configured service account
func NewClient(ctx context.Context, cfg config.SheetsConfig) (*Client, error) {
	if cfg.ServiceAccountEmail == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("service account credentials are required")
	}

	jwtConfig := &oauthjwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	httpClient := jwtConfig.Client(ctx)
	httpClient.Timeout = requestTimeout

	service, err := gsheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewClientWithService(service, cfg.SpreadsheetID), nil
}

// wraps an existing service, used with a test endpoint
func NewClientWithService(service *gsheets.Service, spreadsheetID string) *Client {
	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}
}

// returns every populated row of a sheet as formatted strings
func (c *Client) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, QuoteSheet(sheet)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}

	return rows, nil
}

// returns the Google Forms timestamp in column A of every row, aligned with
// ReadRows. Rows whose cell holds no date get the zero time.
func (c *Client) ReadTimestamps(ctx context.Context, sheet string) ([]time.Time, error) {
	loc, err := c.timeZone(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, QuoteSheet(sheet)+"!A:A").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read timestamps of %s: %w", sheet, err)
	}

	times := make([]time.Time, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}

		if serial, ok := row[0].(float64); ok && serial > 0 {
			times[i] = SerialTime(serial, loc)
		}
	}

	return times, nil
}

// the spreadsheet's own time zone, which serial dates are written in
func (c *Client) timeZone(ctx context.Context) (*time.Location, error) {
	c.mu.Lock()
	loc := c.location
	c.mu.Unlock()

	if loc != nil {
		return loc, nil
	}

	spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).
		Fields("properties.timeZone").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to load spreadsheet time zone: %w", err)
	}

	loc = time.UTC
	if spreadsheet.Properties != nil && spreadsheet.Properties.TimeZone != "" {
		loc, err = time.LoadLocation(spreadsheet.Properties.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("unknown spreadsheet time zone %q: %w", spreadsheet.Properties.TimeZone, err)
		}
	}

	c.mu.Lock()
	c.location = loc
	c.mu.Unlock()

	return loc, nil
}

// writes one cell; row and col are 1-based
func (c *Client) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	cell := CellRef(sheet, row, col)

	_, err := c.service.Spreadsheets.Values.Update(c.spreadsheetID, cell, &gsheets.ValueRange{
		Values: [][]any{{value}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", cell, err)
	}

	return nil
}

// appends a row after the last populated row of a sheet
func (c *Client) AppendRow(ctx context.Context, sheet string, values []string) error {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}

	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, QuoteSheet(sheet), &gsheets.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", sheet, err)
	}

	return nil
}

// sets the background of a whole row; an empty colour restores the default
func (c *Client) SetRowBackground(ctx context.Context, sheet string, row int, hexColor string) error {
	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	cell := &gsheets.CellData{}
	if hexColor != "" {
		color, err := ParseHexColor(hexColor)
		if err != nil {
			return err
		}
		cell.UserEnteredFormat = &gsheets.CellFormat{BackgroundColor: color}
	}

	request := &gsheets.Request{
		RepeatCell: &gsheets.RepeatCellRequest{
			Range: &gsheets.GridRange{
				SheetId:         sheetID,
				StartRowIndex:   int64(row - 1),
				EndRowIndex:     int64(row),
				ForceSendFields: []string{"SheetId", "StartRowIndex"},
			},
			Cell:   cell,
			Fields: "userEnteredFormat.backgroundColor",
		},
	}

	return c.batchUpdate(ctx, request)
}

// creates the sheet with a header row unless it already exists
func (c *Client) EnsureSheet(ctx context.Context, sheet string, header []string) error {
	_, err := c.sheetID(ctx, sheet)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrSheetNotFound) {
		return err
	}

	request := &gsheets.Request{
		AddSheet: &gsheets.AddSheetRequest{
			Properties: &gsheets.SheetProperties{Title: sheet},
		},
	}

	if err := c.batchUpdate(ctx, request); err != nil {
		return err
	}

	c.forgetSheetIDs()

	if len(header) == 0 {
		return nil
	}

	return c.AppendRow(ctx, sheet, header)
}

func (c *Client) batchUpdate(ctx context.Context, requests ...*gsheets.Request) error {
	_, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update spreadsheet: %w", err)
	}

	return nil
}

// resolves a sheet title to its numeric id, loading all titles once
func (c *Client) sheetID(ctx context.Context, sheet string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[sheet]
	loaded := len(c.sheetIDs) > 0
	c.mu.Unlock()

	if ok {
		return id, nil
	}

	if !loaded {
		if err := c.loadSheetIDs(ctx); err != nil {
			return 0, err
		}

		c.mu.Lock()
		id, ok = c.sheetIDs[sheet]
		c.mu.Unlock()

		if ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
}

func (c *Client) loadSheetIDs(ctx context.Context) error {
	spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to load spreadsheet metadata: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}

	return nil
}

func (c *Client) forgetSheetIDs() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sheetIDs = make(map[string]int64)
}
