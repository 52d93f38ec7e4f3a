package sheetsync

import "time"

// LogEntry is one time-log record as stored by the caller. Date is
// YYYY-MM-DD, times are HH:MM or HH:MM:SS on the same day.
type LogEntry struct {
	Date       string
	StartTime  string
	EndTime    string
	BreakHours float64
	Title      string
	Notes      string
	Activity   string
}

// ProjectInfo is the metadata written to the sheet's header block.
// Empty fields are written as empty cells.
type ProjectInfo struct {
	Konsulent     string
	Oppdragsgiver string
	Tiltak        string
	Periode       string
	KlientID      string
}

// Layout is a snapshot of the remote sheet taken at inspection time.
type Layout struct {
	Header        ProjectInfo
	DataRowCount  int
	NextDataRow   int
	TotalRowCount int
	SheetID       int64
	SheetTitle    string
}

// Result reports which rows an append touched.
type Result struct {
	RowsAdded int
	StartRow  int
	EndRow    int
}

// Credentials is the token pair supplied by the caller for a single sync.
// A zero Expiry means the access token's lifetime is unknown.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}
