package transform

import (
	"reflect"
	"strings"
	"testing"
)

func sampleRecord() RawRecord {
	return RawRecord{
		"id":   "7345001",
		"text": "morning routine",
		"authorMeta": map[string]any{
			"id":         "user-9",
			"name":       "alice",
			"profileUrl": "https://tiktok.com/@alice",
			"fans":       float64(52000),
			"verified":   true,
		},
		"videoMeta": map[string]any{
			"coverUrl": "https://cdn.example/cover.jpg",
			"duration": float64(31),
		},
		"hashtags": []any{
			map[string]any{"name": "fyp"},
			map[string]any{"name": "tech"},
		},
		"createTime": float64(1700000000),
		"isAd":       false,
	}
}

func TestNormalizeFlattensAndRenames(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ds := e.Normalize([]RawRecord{sampleRecord()})

	if len(ds.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(ds.Rows))
	}
	row := ds.Rows[0]

	if row["post_id"] != "7345001" {
		t.Errorf("post_id = %v", row["post_id"])
	}
	if row["user_name"] != "alice" {
		t.Errorf("user_name = %v", row["user_name"])
	}
	if row["user_fans"] != float64(52000) {
		t.Errorf("user_fans = %v", row["user_fans"])
	}
	if row["coverUrl"] != "https://cdn.example/cover.jpg" {
		t.Errorf("coverUrl = %v", row["coverUrl"])
	}
	if row["hashtags_post"] != "fyp, tech" {
		t.Errorf("hashtags_post = %v", row["hashtags_post"])
	}
	for _, dropped := range []string{"createTime", "isAd", "authorMeta", "videoMeta", "hashtags", "id"} {
		if _, ok := row[dropped]; ok {
			t.Errorf("column %q should not survive normalization", dropped)
		}
	}
}

func TestNormalizeColumnOrderDeterministic(t *testing.T) {
	e := NewEngine(DefaultConfig())

	first := e.Normalize([]RawRecord{sampleRecord()})
	second := e.Normalize([]RawRecord{sampleRecord()})

	if !reflect.DeepEqual(first.Columns, second.Columns) {
		t.Fatalf("columns differ between runs: %v vs %v", first.Columns, second.Columns)
	}
	if first.Columns[0] != "post_id" {
		t.Errorf("first column = %q, want post_id", first.Columns[0])
	}
	rest := first.Columns[1:]
	for i := 1; i < len(rest); i++ {
		if rest[i-1] > rest[i] {
			t.Fatalf("columns not sorted after id: %v", first.Columns)
		}
	}
}

func TestNormalizeSquaresOffMissingCells(t *testing.T) {
	e := NewEngine(DefaultConfig())

	full := sampleRecord()
	sparse := RawRecord{"id": "7345002", "text": "no metadata at all"}

	ds := e.Normalize([]RawRecord{full, sparse})

	for i, row := range ds.Rows {
		for _, col := range ds.Columns {
			v, ok := row[col]
			if !ok {
				t.Fatalf("row %d missing column %q", i, col)
			}
			if v == nil {
				t.Fatalf("row %d column %q is nil, want empty string", i, col)
			}
		}
	}
	if ds.Rows[1]["user_name"] != "" {
		t.Errorf("sparse row user_name = %v, want \"\"", ds.Rows[1]["user_name"])
	}
}

func TestNormalizeMalformedNestedShapes(t *testing.T) {
	e := NewEngine(DefaultConfig())

	rec := RawRecord{
		"id":         float64(42), // numeric ids appear in older scrapes
		"authorMeta": "not a map",
		"videoMeta":  nil,
		"hashtags":   "also not a list",
	}

	ds := e.Normalize([]RawRecord{rec})
	row := ds.Rows[0]

	if row["post_id"] != float64(42) {
		t.Errorf("post_id = %v", row["post_id"])
	}
	if row["user_name"] != "" {
		t.Errorf("user_name from malformed author = %v, want \"\"", row["user_name"])
	}
	if row["hashtags_post"] != "" {
		t.Errorf("hashtags_post from malformed list = %v, want \"\"", row["hashtags_post"])
	}
}

func TestNormalizeStructuredCellBecomesJSON(t *testing.T) {
	e := NewEngine(DefaultConfig())

	rec := RawRecord{
		"id":        "1",
		"textExtra": []any{map[string]any{"hashtagName": "x"}},
	}
	ds := e.Normalize([]RawRecord{rec})

	got, ok := ds.Rows[0]["textExtra"].(string)
	if !ok {
		t.Fatalf("textExtra cell is %T, want string", ds.Rows[0]["textExtra"])
	}
	if !strings.Contains(got, `"hashtagName":"x"`) {
		t.Errorf("textExtra = %q, want compact JSON", got)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	e := NewEngine(DefaultConfig())

	first := e.Normalize([]RawRecord{
		sampleRecord(),
		{"id": "7345002", "text": "no metadata at all"},
	})
	second := e.Normalize(first.Rows)

	if !reflect.DeepEqual(first.Columns, second.Columns) {
		t.Fatalf("columns changed on re-normalization: %v vs %v", first.Columns, second.Columns)
	}
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Fatalf("rows changed on re-normalization:\n%v\nvs\n%v", first.Rows, second.Rows)
	}
}

func TestNormalizeEmptyBatch(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ds := e.Normalize(nil)

	if len(ds.Columns) != 0 || len(ds.Rows) != 0 {
		t.Errorf("empty batch produced columns=%v rows=%v", ds.Columns, ds.Rows)
	}
}

func TestDatasetCSV(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"post_id", "user_fans", "user_name", "user_verified"},
		Rows: []map[string]any{
			{"post_id": "1", "user_name": "alice, the first", "user_fans": float64(52000), "user_verified": true},
			{"post_id": "2", "user_name": "", "user_fans": float64(0), "user_verified": false},
		},
	}

	out, err := ds.CSV()
	if err != nil {
		t.Fatalf("CSV() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header + 2 rows", len(lines))
	}
	if lines[0] != "post_id,user_fans,user_name,user_verified" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `1,52000,"alice, the first",true` {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "2,0,,false" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"plain", "plain"},
		{true, "true"},
		{float64(52000), "52000"},
		{float64(3.5), "3.5"},
		{int(7), "7"},
		{int64(9000000000), "9000000000"},
	}
	for _, tt := range tests {
		if got := CellString(tt.in); got != tt.want {
			t.Errorf("CellString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
