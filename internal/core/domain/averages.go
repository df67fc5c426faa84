package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CellStat is the average of one row of measurement cells.
type CellStat struct {
	Value      float64
	Count      int
	HasPercent bool
}

// Display renders the average the way the checksheet shows it: two decimals,
// with a percent sign when any cell in the row carried one.
func (s CellStat) Display() string {
	out := fmt.Sprintf("%.2f", s.Value)
	if s.HasPercent && s.Count > 0 {
		out += "%"
	}
	return out
}

// ParseCell extracts a numeric value from a cell. ok is false for blank or
// non-numeric text.
func ParseCell(raw string) (value float64, percent bool, ok bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, false, false
	}
	if strings.Contains(v, "%") {
		percent = true
		v = strings.TrimSpace(strings.ReplaceAll(v, "%", ""))
	}
	f, err := strconv.ParseFloat(leadingNumber(v), 64)
	if err != nil {
		return 0, percent, false
	}
	return f, percent, true
}

// leadingNumber mimics parseFloat: it keeps the longest numeric prefix.
func leadingNumber(s string) string {
	end := 0
	seenDigit, seenDot := false, false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			if seenDigit {
				return s[:end]
			}
			return s
		}
	}
	if !seenDigit {
		return s
	}
	return s[:end]
}

// RowAverage averages the numeric cells of a row. A percent sign on any cell,
// even an unparsable one, marks the row as a percentage.
func RowAverage(cells []string) CellStat {
	var st CellStat
	var sum float64
	for _, c := range cells {
		v, pct, ok := ParseCell(c)
		if pct {
			st.HasPercent = true
		}
		if !ok {
			continue
		}
		sum += v
		st.Count++
	}
	if st.Count > 0 {
		st.Value = sum / float64(st.Count)
	}
	return st
}

// Mean averages the row averages that had at least one value. It returns "0"
// when no row had data.
func Mean(rows []CellStat) string {
	var sum float64
	n := 0
	pct := false
	for _, r := range rows {
		if r.Count == 0 {
			continue
		}
		sum += r.Value
		n++
		if r.HasPercent {
			pct = true
		}
	}
	if n == 0 {
		return "0"
	}
	out := fmt.Sprintf("%.2f", sum/float64(n))
	if pct {
		out += "%"
	}
	return out
}

// ColumnAverage averages a set of plain numeric cells, returning "0" when
// none parse. Used for the adhesion min/max columns.
func ColumnAverage(cells []string) string {
	st := RowAverage(cells)
	if st.Count == 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", st.Value)
}

// GelMeasurementRows lists, per sample position A..G, the form keys of the
// five gel-content measurements.
var GelMeasurementRows = [][]string{
	{"editable_31", "editable_32", "editable_33", "editable_34", "editable_35"},
	{"editable_36", "editable_37", "editable_38", "editable_39", "editable_40"},
	{"editable_42", "editable_43", "editable_44", "editable_45", "editable_46"},
	{"editable_47", "editable_48", "editable_49", "editable_50", "editable_51"},
	{"editable_52", "editable_53", "editable_54", "editable_55", "editable_56"},
	{"editable_58", "editable_59", "editable_60", "editable_61", "editable_62"},
	{"editable_63", "editable_64", "editable_65", "editable_66", "editable_67"},
}

// ComputeGelAverages derives average_0..6 and mean from the gel form data.
func ComputeGelAverages(form map[string]any) map[string]string {
	out := make(map[string]string, len(GelMeasurementRows)+1)
	stats := make([]CellStat, 0, len(GelMeasurementRows))
	for i, keys := range GelMeasurementRows {
		cells := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := form[k].(string); ok {
				cells = append(cells, s)
			}
		}
		st := RowAverage(cells)
		stats = append(stats, st)
		out[fmt.Sprintf("average_%d", i)] = st.Display()
	}
	out["mean"] = Mean(stats)
	return out
}
