package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownInspection = errors.New("unknown inspection type")
	ErrInvalidLine       = errors.New("line number must be between 1 and 4")
	ErrDatasetNotFound   = errors.New("dataset not found")
)

// InspectionTypes are the four stations of the rejection workbook, in order.
var InspectionTypes = []string{"Pre-EL", "Visual", "Lam-QC", "FQC"}

// Lines are the lamination lines covered by the workbook.
var Lines = []int{1, 2, 3, 4}

// MetadataFields are row columns that are not defect counts.
var MetadataFields = map[string]struct{}{
	"_id": {}, "Date": {}, "Total Production": {}, "Total rejection": {},
	"Rejection %": {}, "Line": {}, "import_timestamp": {}, "data_source": {},
	"inspection_type": {}, "line_number": {},
}

const (
	FieldDate            = "Date"
	FieldLine            = "Line"
	FieldTotalProduction = "Total Production"
	FieldTotalRejection  = "Total rejection"
	FieldRejectionRate   = "Rejection %"
)

// NormalizeInspectionType maps user input such as "pre-el" or "LAM_QC" onto
// the canonical name.
func NormalizeInspectionType(s string) (string, error) {
	key := InspectionKey(s)
	for _, t := range InspectionTypes {
		if InspectionKey(t) == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInspection, s)
}

// InspectionKey is the collection-name form of an inspection type.
func InspectionKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

func ValidateLine(n int) error {
	if n < 1 || n > 4 {
		return ErrInvalidLine
	}
	return nil
}

func LineDataCollection(line int, typ string) string {
	return fmt.Sprintf("line_%d_%s_data", line, InspectionKey(typ))
}

func LineSummaryCollection(line int, typ string) string {
	return fmt.Sprintf("line_%d_%s_summary", line, InspectionKey(typ))
}

func CombinedDataCollection(typ string) string {
	return fmt.Sprintf("combined_%s_data", InspectionKey(typ))
}

func CombinedSummaryCollection(typ string) string {
	return fmt.Sprintf("combined_%s_summary", InspectionKey(typ))
}

// DefectCount is one defect column total.
type DefectCount struct {
	Name  string  `json:"defect_name"`
	Count float64 `json:"total_count"`
}

// AsNumber converts loosely typed document values to float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(n, "%")), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// DefectTotals sums every numeric non-metadata column across rows.
func DefectTotals(rows []map[string]any) map[string]float64 {
	totals := make(map[string]float64)
	for _, row := range rows {
		for k, v := range row {
			if _, meta := MetadataFields[k]; meta {
				continue
			}
			if _, isStr := v.(string); isStr {
				continue
			}
			if n, ok := AsNumber(v); ok {
				totals[k] += n
			}
		}
	}
	return totals
}

// TopDefects orders totals by count, descending, and keeps the first n.
// Ties are broken by name so the result is stable.
func TopDefects(totals map[string]float64, n int) []DefectCount {
	out := make([]DefectCount, 0, len(totals))
	for k, v := range totals {
		out = append(out, DefectCount{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ProductionStats summarise a dataset.
type ProductionStats struct {
	TotalProduction      float64 `json:"total_production" bson:"total_production"`
	TotalRejection       float64 `json:"total_rejection" bson:"total_rejection"`
	AverageRejectionRate float64 `json:"average_rejection_rate" bson:"average_rejection_rate"`
}

// SummaryDateRange is the covered span of a dataset.
type SummaryDateRange struct {
	StartDate   string `json:"start_date" bson:"start_date"`
	EndDate     string `json:"end_date" bson:"end_date"`
	DaysCovered int    `json:"days_covered" bson:"days_covered"`
}

// InspectionSummary is the per-dataset rollup written by the importer.
type InspectionSummary struct {
	Line           string             `json:"line" bson:"line"`
	InspectionType string             `json:"inspection_type" bson:"inspection_type"`
	DataType       string             `json:"data_type" bson:"data_type"`
	TotalRecords   int                `json:"total_records" bson:"total_records"`
	DateRange      SummaryDateRange   `json:"date_range" bson:"date_range"`
	Production     ProductionStats    `json:"production_stats" bson:"production_stats"`
	DefectColumns  []string           `json:"defect_columns" bson:"defect_columns"`
	DefectCounts   map[string]float64 `json:"defect_counts" bson:"defect_counts"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	DataSource     string             `json:"data_source" bson:"data_source"`
}

// Summarize builds the rollup for rows of one dataset. line is "1".."4" or
// "combined".
func Summarize(rows []map[string]any, line, typ, source string, now time.Time) InspectionSummary {
	s := InspectionSummary{
		Line:           line,
		InspectionType: typ,
		DataType:       "daily_records",
		TotalRecords:   len(rows),
		DefectCounts:   DefectTotals(rows),
		CreatedAt:      now,
		DataSource:     source,
	}
	var rateSum float64
	rateN := 0
	var first, last string
	for _, row := range rows {
		if v, ok := AsNumber(row[FieldTotalProduction]); ok {
			s.Production.TotalProduction += v
		}
		if v, ok := AsNumber(row[FieldTotalRejection]); ok {
			s.Production.TotalRejection += v
		}
		if v, ok := AsNumber(row[FieldRejectionRate]); ok {
			rateSum += v
			rateN++
		}
		if d, _ := row[FieldDate].(string); d != "" {
			if first == "" || d < first {
				first = d
			}
			if d > last {
				last = d
			}
		}
	}
	if rateN > 0 {
		s.Production.AverageRejectionRate = Round2(rateSum / float64(rateN))
	}
	for k := range s.DefectCounts {
		s.DefectColumns = append(s.DefectColumns, k)
	}
	sort.Strings(s.DefectColumns)
	s.DateRange = SummaryDateRange{StartDate: first, EndDate: last}
	if first != "" {
		a, errA := time.Parse(DateLayout, first)
		b, errB := time.Parse(DateLayout, last)
		if errA == nil && errB == nil {
			s.DateRange.DaysCovered = int(b.Sub(a).Hours()/24) + 1
		}
	}
	return s
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
