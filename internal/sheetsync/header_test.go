package sheetsync

import (
	"context"
	"reflect"
	"testing"
)

func TestWriteHeader(t *testing.T) {
	sheet := newFakeSheet(100)
	info := ProjectInfo{
		Konsulent:     "Kari Nordmann",
		Oppdragsgiver: "NAV Oslo",
		Tiltak:        "Arbeidstrening",
		Periode:       "November 2025",
		KlientID:      "4711",
	}

	if err := WriteHeader(context.Background(), sheet, "sheet", "", info); err != nil {
		t.Fatalf("WriteHeader returned error: %v", err)
	}

	if want := []string{"update B4,D4,B5,B6,D6"}; !reflect.DeepEqual(sheet.calls, want) {
		t.Errorf("calls = %v, want %v", sheet.calls, want)
	}

	layout, err := Inspect(context.Background(), sheet, "sheet")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if layout.Header != info {
		t.Errorf("header = %+v, want %+v", layout.Header, info)
	}
}

func TestWriteHeaderMissingFields(t *testing.T) {
	sheet := newFakeSheet(100)
	sheet.set(5, 1, "stale")

	if err := WriteHeader(context.Background(), sheet, "sheet", "", ProjectInfo{Konsulent: "Ola"}); err != nil {
		t.Fatalf("WriteHeader returned error: %v", err)
	}

	for _, c := range []struct {
		row, col int
		want     string
	}{
		{4, 1, "Ola"},
		{4, 3, ""},
		{5, 1, ""},
		{6, 1, ""},
		{6, 3, ""},
	} {
		if got := sheet.grid[c.row-1][c.col]; got != c.want {
			t.Errorf("cell (%d,%d) = %#v, want %q", c.row, c.col, got, c.want)
		}
	}
}

func TestWriteHeaderIdempotent(t *testing.T) {
	sheet := newFakeSheet(100)
	info := ProjectInfo{Konsulent: "Kari", Periode: "Q4"}

	if err := WriteHeader(context.Background(), sheet, "sheet", "", info); err != nil {
		t.Fatalf("WriteHeader returned error: %v", err)
	}
	first := copyRows(sheet.grid[:6])

	if err := WriteHeader(context.Background(), sheet, "sheet", "", info); err != nil {
		t.Fatalf("WriteHeader returned error: %v", err)
	}
	if !reflect.DeepEqual(sheet.grid[:6], first) {
		t.Errorf("header changed on second write\n   first:  %v\n   second: %v", first, sheet.grid[:6])
	}
}

func copyRows(rows [][]interface{}) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = append([]interface{}(nil), row...)
	}
	return out
}
