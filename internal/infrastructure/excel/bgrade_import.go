package excel

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// UD report headers, lowercased, mapped to B-grade record fields.
var bgradeColumns = map[string]string{
	"posting date":   "posting_date",
	"creation time":  "creation_time",
	"order no.":      "order_no",
	"material desc.": "material_desc",
	"serial number":  "serial_number",
	"created by":     "created_by",
	"grade.":         "grade",
	"grade":          "grade",
	"reason":         "reason",
}

// Only module production orders are graded.
var bgradeOrderPrefixes = []string{"00000007", "00000009"}

// ReadBGradeWorkbook parses the first sheet of a UD report into B-grade
// records ordered by posting date. Rows without a posting date or with a
// non-module order number are dropped.
func ReadBGradeWorkbook(r io.Reader) ([]ports.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[int]string)
	found := make(map[string]bool)
	for i, h := range rows[0] {
		if field, ok := bgradeColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[i] = field
			found[field] = true
		}
	}
	if !found["posting_date"] || !found["order_no"] {
		return nil, fmt.Errorf("sheet %q: Posting Date and Order No. columns are required", sheets[0])
	}

	var out []ports.Document
	for _, row := range rows[1:] {
		doc := ports.Document{"data_source": "excel_import"}
		for i, field := range cols {
			raw := cell(row, i)
			switch {
			case raw == "":
				doc[field] = nil
			case field == "posting_date":
				if t, ok := cellTime(raw); ok {
					doc[field] = t
				} else {
					doc[field] = nil
				}
			case field == "creation_time":
				doc[field] = clockLabel(raw)
			default:
				doc[field] = raw
			}
		}
		order, _ := doc["order_no"].(string)
		if _, ok := doc["posting_date"].(time.Time); !ok || !moduleOrder(order) {
			continue
		}
		out = append(out, doc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i]["posting_date"].(time.Time).Before(out[j]["posting_date"].(time.Time))
	})
	return out, nil
}

func moduleOrder(order string) bool {
	for _, p := range bgradeOrderPrefixes {
		if strings.HasPrefix(order, p) {
			return true
		}
	}
	return false
}

// cellTime reads an Excel serial date or a known text layout as UTC.
func cellTime(raw string) (time.Time, bool) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		return t.UTC(), err == nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// clockLabel renders an Excel time-of-day fraction as HH:MM:SS.
func clockLabel(raw string) string {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format("15:04:05")
}
