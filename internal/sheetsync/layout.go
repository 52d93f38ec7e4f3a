package sheetsync

import (
	"context"
	"fmt"
	"strings"
)

const (
	// FirstDataRow is the 1-based row of the first data row.
	FirstDataRow = 11

	// FooterStartRow is the 1-based row where the footer block starts on a
	// freshly authored sheet.
	FooterStartRow = 57

	// DefaultRowCount is assumed when the API does not report a grid size.
	DefaultRowCount = 100

	// RowPitch is the number of sheet rows used by one log entry.
	RowPitch = 2
)

// Header cell addresses.
const (
	KonsulentCell     = "B4"
	OppdragsgiverCell = "D4"
	TiltakCell        = "B5"
	PeriodeCell       = "B6"
	KlientIDCell      = "D6"
)

type cellRef struct {
	row int // zero-based
	col int // zero-based
}

var (
	konsulentRef     = cellRef{3, 1}
	oppdragsgiverRef = cellRef{3, 3}
	tiltakRef        = cellRef{4, 1}
	periodeRef       = cellRef{5, 1}
	klientIDRef      = cellRef{5, 3}
)

// Inspect reads the current geometry and header of the first worksheet.
// Nothing is cached: every call reflects the sheet as it is now.
func Inspect(ctx context.Context, api Spreadsheet, spreadsheetID string) (*Layout, error) {
	props, err := api.Properties(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	total := int(props.RowCount)
	if total <= 0 {
		total = DefaultRowCount
	}

	values, err := api.Values(ctx, spreadsheetID, A1(props.Title, fmt.Sprintf("A1:E%d", total)))
	if err != nil {
		return nil, err
	}

	count := countDataRows(values)

	return &Layout{
		Header: ProjectInfo{
			Konsulent:     cellValue(values, konsulentRef),
			Oppdragsgiver: cellValue(values, oppdragsgiverRef),
			Tiltak:        cellValue(values, tiltakRef),
			Periode:       cellValue(values, periodeRef),
			KlientID:      cellValue(values, klientIDRef),
		},
		DataRowCount:  count,
		NextDataRow:   NextDataRow(count),
		TotalRowCount: total,
		SheetID:       props.SheetID,
		SheetTitle:    props.Title,
	}, nil
}

// A1 qualifies area with the worksheet title. Unqualified ranges resolve to
// the first visible worksheet, which is not the first worksheet when that
// one is hidden.
func A1(sheet, area string) string {
	if sheet == "" {
		return area
	}

	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + area
}

// NextDataRow returns the 1-based row following count data/placeholder pairs.
func NextDataRow(count int) int {
	return FirstDataRow + count*RowPitch
}

// countDataRows scans the data rows from FirstDataRow and stops at the
// first row that is empty or holds placeholder text. Real entries after a
// gap are not counted.
func countDataRows(values [][]interface{}) int {
	count := 0
	for ix := FirstDataRow - 1; ix < len(values); ix += RowPitch {
		first := strings.TrimSpace(cellValue(values, cellRef{ix, 0}))
		if first == "" || strings.HasPrefix(first, "[") {
			break
		}
		count++
	}

	return count
}

func cellValue(values [][]interface{}, ref cellRef) string {
	if ref.row >= len(values) {
		return ""
	}

	row := values[ref.row]
	if ref.col >= len(row) || row[ref.col] == nil {
		return ""
	}

	if s, ok := row[ref.col].(string); ok {
		return s
	}

	return fmt.Sprintf("%v", row[ref.col])
}
