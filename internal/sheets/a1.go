package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	gsheets "google.golang.org/api/sheets/v4"
)

// converts a 1-based column number to its letters: 1 → A, 27 → AA, 43 → AQ
func ColumnLetter(col int) string {
	if col < 1 {
		return ""
	}

	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}

	return string(letters)
}

// quotes a sheet name for use in A1 notation
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// returns the A1 reference of a single cell; row and col are 1-based
func CellRef(sheet string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", QuoteSheet(sheet), ColumnLetter(col), row)
}

// parses "#rrggbb" into a Sheets colour
func ParseHexColor(hex string) (*gsheets.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("colour %q must have six hex digits", hex)
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("colour %q is not hex: %w", hex, err)
	}

	return &gsheets.Color{
		Red:   float64((value>>16)&0xff) / 255,
		Green: float64((value>>8)&0xff) / 255,
		Blue:  float64(value&0xff) / 255,
	}, nil
}

// day zero of spreadsheet serial dates
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// SerialTime converts a spreadsheet serial date (days since 1899-12-30, as
// wall time in loc) to an instant, rounded to the millisecond.
func SerialTime(serial float64, loc *time.Location) time.Time {
	wall := serialEpoch.Add(time.Duration(math.Round(serial*86400000)) * time.Millisecond)

	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
}
