package transform

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RawRecord is one scraped post as returned by the actor dataset, with
// nested author/video metadata and a hashtag list.
type RawRecord = map[string]any

// FieldRename maps a nested source key to its flattened top-level name.
type FieldRename struct {
	Source string
	Target string
}

// Config drives the normalization. The drop list and rename tables are
// configuration rather than constants because observed scrapes differ in
// which columns they carry.
type Config struct {
	IDField  string // primary identifier on the raw record
	IDRename string // stable name it gets in the dataset

	DropFields []string // noise fields removed when present

	AuthorField   string // nested author metadata key
	AuthorRenames []FieldRename

	VideoField       string // nested video metadata key
	VideoCoverField  string // the only field extracted from it
	VideoCoverRename string

	HashtagField  string // list of {name: ...} entries
	HashtagRename string // comma-joined flattened name
}

// DefaultConfig carries the superset of fields observed across scrape runs.
func DefaultConfig() Config {
	return Config{
		IDField:  "id",
		IDRename: "post_id",
		DropFields: []string{
			"createTime", "createTimeISO", "isAd", "isMuted", "musicMeta",
			"isSlideshow", "isPinned", "mediaUrls", "mentions", "effectStickers",
		},
		AuthorField: "authorMeta",
		AuthorRenames: []FieldRename{
			{Source: "id", Target: "user_id"},
			{Source: "name", Target: "user_name"},
			{Source: "profileUrl", Target: "user_profileurl"},
			{Source: "signature", Target: "user_signature"},
			{Source: "bioLink", Target: "user_biolink"},
			{Source: "fans", Target: "user_fans"},
			{Source: "heart", Target: "user_heart"},
			{Source: "video", Target: "user_video"},
			{Source: "digg", Target: "user_digg"},
			{Source: "verified", Target: "user_verified"},
		},
		VideoField:       "videoMeta",
		VideoCoverField:  "coverUrl",
		VideoCoverRename: "coverUrl",
		HashtagField:     "hashtags",
		HashtagRename:    "hashtags_post",
	}
}

// Dataset is the terminal artifact of the pipeline: every row carries the
// same column set and no cell is null (missing values become "").
type Dataset struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Engine normalizes heterogeneous raw creator records into a uniform
// tabular dataset. Normalization is total: a malformed record never aborts
// the batch, it just yields empty cells.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Normalize flattens every record, then squares the batch off to a uniform
// column set. Row order follows input order. Given identical input the
// output is identical: columns are the id column first, the rest sorted.
func (e *Engine) Normalize(records []RawRecord) *Dataset {
	rows := make([]map[string]any, 0, len(records))
	colSet := make(map[string]struct{})

	for _, rec := range records {
		row := e.flatten(rec)
		for k := range row {
			colSet[k] = struct{}{}
		}
		rows = append(rows, row)
	}

	columns := e.orderColumns(colSet)

	// Square off: every row gets every column, missing cells become "".
	for _, row := range rows {
		for _, col := range columns {
			if v, ok := row[col]; !ok || v == nil {
				row[col] = ""
			}
		}
	}

	return &Dataset{Columns: columns, Rows: rows}
}

func (e *Engine) flatten(rec RawRecord) map[string]any {
	row := make(map[string]any, len(rec))

	dropped := make(map[string]struct{}, len(e.cfg.DropFields))
	for _, f := range e.cfg.DropFields {
		dropped[f] = struct{}{}
	}

	for key, val := range rec {
		if _, skip := dropped[key]; skip {
			continue
		}
		switch key {
		case e.cfg.IDField:
			row[e.cfg.IDRename] = scalarize(val)
		case e.cfg.AuthorField:
			author, _ := val.(map[string]any)
			for _, rn := range e.cfg.AuthorRenames {
				row[rn.Target] = scalarize(author[rn.Source]) // nil map lookups default to ""
			}
		case e.cfg.VideoField:
			video, _ := val.(map[string]any)
			row[e.cfg.VideoCoverRename] = scalarize(video[e.cfg.VideoCoverField])
		case e.cfg.HashtagField:
			row[e.cfg.HashtagRename] = joinHashtags(val)
		default:
			row[key] = scalarize(val)
		}
	}

	return row
}

func (e *Engine) orderColumns(colSet map[string]struct{}) []string {
	columns := make([]string, 0, len(colSet))
	hasID := false
	for c := range colSet {
		if c == e.cfg.IDRename {
			hasID = true
			continue
		}
		columns = append(columns, c)
	}
	sort.Strings(columns)
	if hasID {
		columns = append([]string{e.cfg.IDRename}, columns...)
	}
	return columns
}

// joinHashtags renders a hashtag list as "name1, name2". Absent or
// unexpected shapes yield "", never an error.
func joinHashtags(val any) string {
	list, ok := val.([]any)
	if !ok {
		return ""
	}
	var names []string
	for _, item := range list {
		tag, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := tag["name"].(string); ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// scalarize maps a raw value onto the scalar cell domain. Nil becomes "",
// scalars pass through, anything still structured is rendered as compact
// JSON (stable key order) so the cell stays a string.
func scalarize(val any) any {
	switch v := val.(type) {
	case nil:
		return ""
	case string, bool, float64, float32, int, int32, int64, uint, uint64, json.Number:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
