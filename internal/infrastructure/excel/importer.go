package excel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// Rejection workbook layout: one "Line - N" sheet per line, dates across
// row 3 from column C, and one block of metric rows per inspection stage.
// Column B holds the stage banner or the metric name.
const (
	lineSheetPrefix = "Line - "
	dateRowIndex    = 2
	labelColIndex   = 1
	firstValueIndex = 2
	monthTotalLabel = "Month total"
)

var sectionBanners = []struct{ banner, typ string }{
	{"pre-el inspection", "Pre-EL"},
	{"visual inspection", "Visual"},
	{"lam-qc inspection", "Lam-QC"},
	{"fqc inspection", "FQC"},
}

var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	"02-Jan-2006",
	"02-Jan-06",
}

// ReadRejectionWorkbook parses every "Line - N" sheet of a rejection
// workbook into one dataset per line and inspection stage.
func ReadRejectionWorkbook(r io.Reader) ([]ports.ImportedDataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var out []ports.ImportedDataset
	for _, name := range f.GetSheetList() {
		line, ok := lineFromSheet(name)
		if !ok {
			continue
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		out = append(out, parseLineSheet(rows, line)...)
	}
	return out, nil
}

func lineFromSheet(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, lineSheetPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || domain.ValidateLine(n) != nil {
		return 0, false
	}
	return n, true
}

type section struct {
	typ        string
	start, end int
}

func parseLineSheet(rows [][]string, line int) []ports.ImportedDataset {
	if len(rows) <= dateRowIndex {
		return nil
	}
	// Column index -> date label for every non-empty date header.
	dates := map[int]string{}
	var order []int
	for c := firstValueIndex; c < len(rows[dateRowIndex]); c++ {
		if d := dateLabel(rows[dateRowIndex][c]); d != "" && d != monthTotalLabel {
			dates[c] = d
			order = append(order, c)
		}
	}

	var sections []section
	for i := 1; i < len(rows); i++ {
		label := strings.ToLower(cell(rows[i], labelColIndex))
		for _, b := range sectionBanners {
			if strings.Contains(label, b.banner) {
				if n := len(sections); n > 0 {
					sections[n-1].end = i
				}
				sections = append(sections, section{typ: b.typ, start: i, end: len(rows)})
				break
			}
		}
	}

	var out []ports.ImportedDataset
	for _, sec := range sections {
		type metric struct {
			name string
			row  []string
		}
		var metrics []metric
		for i := sec.start + 1; i < sec.end; i++ {
			name := cell(rows[i], labelColIndex)
			if name == "" || name == domain.FieldDate || strings.Contains(name, "Inspection report") {
				continue
			}
			metrics = append(metrics, metric{name: name, row: rows[i]})
		}
		if len(metrics) == 0 {
			continue
		}

		docs := make([]ports.Document, 0, len(order))
		for _, c := range order {
			doc := ports.Document{domain.FieldDate: dates[c]}
			for _, m := range metrics {
				doc[m.name] = numeric(cell(m.row, c))
			}
			doc[domain.FieldLine] = line
			docs = append(docs, doc)
		}
		out = append(out, ports.ImportedDataset{Line: line, InspectionType: sec.typ, Rows: docs})
	}
	return out
}

// CombineLines appends one dataset per inspection stage holding the rows of
// every line. Rows are copied so the line datasets stay independent.
func CombineLines(lines []ports.ImportedDataset) []ports.ImportedDataset {
	out := append([]ports.ImportedDataset(nil), lines...)
	for _, typ := range domain.InspectionTypes {
		var rows []ports.Document
		for _, ds := range lines {
			if ds.Line == 0 || ds.InspectionType != typ {
				continue
			}
			for _, row := range ds.Rows {
				cp := make(ports.Document, len(row))
				for k, v := range row {
					cp[k] = v
				}
				rows = append(rows, cp)
			}
		}
		if len(rows) > 0 {
			out = append(out, ports.ImportedDataset{InspectionType: typ, Rows: rows})
		}
	}
	return out
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// dateLabel renders a header cell as YYYY-MM-DD when it is an Excel serial
// date or a known date layout, and returns other text unchanged.
func dateLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(domain.DateLayout)
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(domain.DateLayout)
		}
	}
	return raw
}

// numeric coerces a cell to a number, 0 when it does not parse. Whole values
// become ints.
func numeric(raw string) any {
	f, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}
