package sheetsync

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// fakeSheet is an in-memory worksheet that records the calls made against it.
type fakeSheet struct {
	sheetID  int64
	title    string
	rowCount int64
	grid     [][]interface{}
	calls    []string
	inserts  [][2]int64
	errs     map[string]error
}

func newFakeSheet(rows int64) *fakeSheet {
	return &fakeSheet{
		sheetID:  7,
		rowCount: rows,
		grid:     make([][]interface{}, rows),
		errs:     map[string]error{},
	}
}

func (f *fakeSheet) set(row, col int, v interface{}) {
	for len(f.grid) < row {
		f.grid = append(f.grid, nil)
	}
	r := f.grid[row-1]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = v
	f.grid[row-1] = r
}

func (f *fakeSheet) get(row, col int) string {
	return cellValue(f.grid, cellRef{row - 1, col})
}

// withEntries fills n data/placeholder pairs from FirstDataRow.
func (f *fakeSheet) withEntries(n int) *fakeSheet {
	for i := 0; i < n; i++ {
		row := FirstDataRow + i*RowPitch
		for col, v := range []interface{}{"01.11.25", "08:00", "16:00", "8.00", fmt.Sprintf("entry %d", i)} {
			f.set(row, col, v)
		}
		for col, v := range placeholder {
			f.set(row+1, col, v)
		}
	}
	return f
}

func (f *fakeSheet) Properties(ctx context.Context, spreadsheetID string) (*SheetProperties, error) {
	f.calls = append(f.calls, "properties")
	if err := f.errs["properties"]; err != nil {
		return nil, err
	}
	return &SheetProperties{SheetID: f.sheetID, Title: f.title, RowCount: f.rowCount}, nil
}

func (f *fakeSheet) Values(ctx context.Context, spreadsheetID, area string) ([][]interface{}, error) {
	f.calls = append(f.calls, "values "+area)
	if err := f.errs["values"]; err != nil {
		return nil, err
	}

	_, _, _, last := parseA1(area)
	values := [][]interface{}{}
	for i := 0; i < last && i < len(f.grid); i++ {
		values = append(values, append([]interface{}(nil), f.grid[i]...))
	}
	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}
	return values, nil
}

func (f *fakeSheet) BatchUpdateValues(ctx context.Context, spreadsheetID string, data []ValueRange) error {
	areas := ""
	for i, d := range data {
		if i > 0 {
			areas += ","
		}
		areas += d.Range
	}
	f.calls = append(f.calls, "update "+areas)
	if err := f.errs["update"]; err != nil {
		return err
	}

	for _, d := range data {
		col, row, _, _ := parseA1(d.Range)
		for i, values := range d.Values {
			for j, v := range values {
				f.set(row+i, col+j, v)
			}
		}
	}
	return nil
}

func (f *fakeSheet) InsertRows(ctx context.Context, spreadsheetID string, sheetID, startIndex, count int64) error {
	f.calls = append(f.calls, fmt.Sprintf("insert %d+%d", startIndex, count))
	if err := f.errs["insert"]; err != nil {
		return err
	}

	f.inserts = append(f.inserts, [2]int64{startIndex, count})
	for len(f.grid) < int(startIndex) {
		f.grid = append(f.grid, nil)
	}
	blank := make([][]interface{}, count)
	f.grid = append(f.grid[:startIndex], append(blank, f.grid[startIndex:]...)...)
	f.rowCount += count
	return nil
}

var a1 = regexp.MustCompile(`^(?:'(?:[^']|'')+'!)?([A-Z])([0-9]+)(?::([A-Z])([0-9]+))?$`)

// parseA1 returns the zero-based start column, 1-based start row, zero-based
// end column and 1-based end row of a single-letter A1 range, optionally
// qualified with a quoted worksheet title.
func parseA1(area string) (int, int, int, int) {
	m := a1.FindStringSubmatch(area)
	if m == nil {
		panic("bad range " + area)
	}
	col := int(m[1][0] - 'A')
	row, _ := strconv.Atoi(m[2])
	if m[3] == "" {
		return col, row, col, row
	}
	last, _ := strconv.Atoi(m[4])
	return col, row, int(m[3][0] - 'A'), last
}

type fakeConnector struct {
	sheet *fakeSheet
	err   error
	creds []Credentials
}

func (c *fakeConnector) Connect(ctx context.Context, creds Credentials) (Spreadsheet, error) {
	c.creds = append(c.creds, creds)
	if c.err != nil {
		return nil, c.err
	}
	return c.sheet, nil
}
