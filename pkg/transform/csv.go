package transform

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSV renders the dataset with a header row, in column order.
func (d *Dataset) CSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(d.Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for i, col := range d.Columns {
			record[i] = CellString(row[col])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}

// CellString renders a scalar cell for text output.
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case bool:
		return strconv.FormatBool(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	default:
		return fmt.Sprintf("%v", c)
	}
}
