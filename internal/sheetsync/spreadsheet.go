package sheetsync

import "context"

// SheetProperties describes the first worksheet of a spreadsheet.
type SheetProperties struct {
	SheetID  int64
	Title    string
	RowCount int64
}

// ValueRange is a block of cell values addressed in A1 notation.
type ValueRange struct {
	Range  string
	Values [][]interface{}
}

// Spreadsheet is the subset of the spreadsheet service used by the sync engine.
type Spreadsheet interface {
	// Properties returns the id, title and grid size of the first worksheet.
	Properties(ctx context.Context, spreadsheetID string) (*SheetProperties, error)

	// Values returns the cell values in the given A1 range.
	Values(ctx context.Context, spreadsheetID, area string) ([][]interface{}, error)

	// BatchUpdateValues writes all ranges in one call with user-entered semantics.
	BatchUpdateValues(ctx context.Context, spreadsheetID string, data []ValueRange) error

	// InsertRows inserts count rows at the zero-based startIndex, inheriting
	// formatting from the row above.
	InsertRows(ctx context.Context, spreadsheetID string, sheetID, startIndex, count int64) error
}

// Connector produces a Spreadsheet authenticated with the given credentials.
// Each call returns a fresh handle.
type Connector interface {
	Connect(ctx context.Context, creds Credentials) (Spreadsheet, error)
}
