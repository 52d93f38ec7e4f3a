package sheetsync

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// placeholder is written below every data row and marks the next free slot.
var placeholder = []interface{}{"[Dato]", "[Starttidspunkt]", "[Sluttidspunkt]", "0.00", ""}

// AppendLogs writes one data row and one placeholder row per log entry,
// starting at the first free data row. If the new rows would reach the
// footer, rows are inserted ahead of it first.
func AppendLogs(ctx context.Context, api Spreadsheet, spreadsheetID string, logs []LogEntry) (*Result, error) {
	layout, err := Inspect(ctx, api, spreadsheetID)
	if err != nil {
		return nil, err
	}

	startRow := layout.NextDataRow
	if len(logs) == 0 {
		return &Result{RowsAdded: 0, StartRow: startRow, EndRow: startRow - 1}, nil
	}

	rows, err := BuildRows(logs)
	if err != nil {
		return nil, err
	}

	endRow := startRow + len(rows) - 1

	if start, count, ok := InsertionFor(endRow); ok {
		if err := api.InsertRows(ctx, spreadsheetID, layout.SheetID, start, count); err != nil {
			return nil, err
		}
	}

	data := []ValueRange{
		{
			Range:  A1(layout.SheetTitle, fmt.Sprintf("A%d:E%d", startRow, endRow)),
			Values: rows,
		},
	}

	if err := api.BatchUpdateValues(ctx, spreadsheetID, data); err != nil {
		return nil, err
	}

	return &Result{
		RowsAdded: len(rows),
		StartRow:  startRow,
		EndRow:    endRow,
	}, nil
}

// InsertionFor returns the zero-based start index and number of rows to
// insert ahead of the footer so that a block ending at endRow fits.
func InsertionFor(endRow int) (startIndex, count int64, ok bool) {
	if endRow < FooterStartRow {
		return 0, 0, false
	}

	return FooterStartRow - 1, int64(endRow - FooterStartRow + 1), true
}

// BuildRows renders the data/placeholder row pairs for logs, in order.
func BuildRows(logs []LogEntry) ([][]interface{}, error) {
	rows := make([][]interface{}, 0, len(logs)*RowPitch)
	for i, entry := range logs {
		hours, err := Hours(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, entry.Date, err)
		}

		rows = append(rows,
			[]interface{}{
				FormatDate(entry.Date),
				FormatTime(entry.StartTime),
				FormatTime(entry.EndTime),
				FormatHours(hours),
				Description(entry),
			},
			append([]interface{}(nil), placeholder...))
	}

	return rows, nil
}

// FormatDate converts YYYY-MM-DD to DD.MM.YY. Anything else is returned unchanged.
func FormatDate(date string) string {
	d := strings.TrimSpace(date)
	if len(d) >= 10 {
		if t, err := time.Parse("2006-01-02", d[:10]); err == nil {
			return t.Format("02.01.06")
		}
	}

	return date
}

// FormatTime truncates HH:MM:SS to HH:MM.
func FormatTime(clock string) string {
	if t, err := parseClock(clock); err == nil {
		return t.Format("15:04")
	}

	return clock
}

// Hours returns the worked hours for entry, less its break. The result is
// negative if the break exceeds the interval or the end precedes the start.
func Hours(entry LogEntry) (float64, error) {
	start, err := minutes(entry.StartTime)
	if err != nil {
		return 0, err
	}

	end, err := minutes(entry.EndTime)
	if err != nil {
		return 0, err
	}

	return float64(end-start)/60 - entry.BreakHours, nil
}

// FormatHours renders hours with exactly two decimals.
func FormatHours(hours float64) string {
	if math.Abs(hours) < 0.005 {
		return "0.00"
	}

	return fmt.Sprintf("%.2f", hours)
}

// Description returns the first non-empty of title, notes and activity.
func Description(entry LogEntry) string {
	for _, v := range []string{entry.Title, entry.Notes, entry.Activity} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}

	return ""
}

func minutes(clock string) (int, error) {
	t, err := parseClock(clock)
	if err != nil {
		return 0, err
	}

	return t.Hour()*60 + t.Minute(), nil
}

func parseClock(clock string) (time.Time, error) {
	s := strings.TrimSpace(clock)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: time %q is not HH:MM or HH:MM:SS", ErrInvalidLogEntry, clock)
}
