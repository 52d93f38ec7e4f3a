package sheetsync

import "context"

// WriteHeader writes the project metadata to the five header cells of the
// named worksheet in a single batched call.
func WriteHeader(ctx context.Context, api Spreadsheet, spreadsheetID, sheet string, info ProjectInfo) error {
	return api.BatchUpdateValues(ctx, spreadsheetID, headerRanges(sheet, info))
}

func headerRanges(sheet string, info ProjectInfo) []ValueRange {
	cell := func(area, v string) ValueRange {
		return ValueRange{
			Range:  A1(sheet, area),
			Values: [][]interface{}{{v}},
		}
	}

	return []ValueRange{
		cell(KonsulentCell, info.Konsulent),
		cell(OppdragsgiverCell, info.Oppdragsgiver),
		cell(TiltakCell, info.Tiltak),
		cell(PeriodeCell, info.Periode),
		cell(KlientIDCell, info.KlientID),
	}
}
