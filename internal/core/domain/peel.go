package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrInvalidShift    = errors.New("shift must be A, B, or C")
	ErrInvalidUnit     = errors.New("unit must be A or B")
	ErrInvalidStringer = errors.New("stringer must be between 1 and 12")
	ErrInvalidFace     = errors.New("cell face must be 'front', 'back', or 'both'")
	ErrInvalidMonth    = errors.New("invalid month, use three-letter abbreviation (jan, feb, etc.)")
)

const (
	FaceFront = "front"
	FaceBack  = "back"
	FaceBoth  = "both"
)

// PeelKey identifies one peel measurement record within its monthly
// collection.
var PeelKey = []string{"Date", "Shift", "Stringer", "Unit"}

// PeelQuery filters raw peel measurements. Zero fields are unset.
type PeelQuery struct {
	Date     string
	Shift    string
	Stringer int
	Unit     string
}

// Normalize uppercases shift and unit and validates every set field.
func (q *PeelQuery) Normalize() error {
	if q.Date == "" {
		return fmt.Errorf("%w: date parameter is required", ErrInvalidDate)
	}
	if _, err := ParseDateRange(q.Date, ""); err != nil {
		return err
	}
	if q.Shift != "" {
		q.Shift = strings.ToUpper(q.Shift)
		if err := ValidateShift(q.Shift); err != nil {
			return err
		}
	}
	if q.Unit != "" {
		q.Unit = strings.ToUpper(q.Unit)
		if q.Unit != "A" && q.Unit != "B" {
			return ErrInvalidUnit
		}
	}
	if q.Stringer != 0 {
		if err := ValidateStringer(q.Stringer); err != nil {
			return err
		}
	}
	return nil
}

// Filter is the document filter of q keyed by peel record field names. Only
// set fields appear.
func (q PeelQuery) Filter() map[string]any {
	f := map[string]any{"Date": q.Date}
	if q.Shift != "" {
		f["Shift"] = strings.ToUpper(q.Shift)
	}
	if q.Stringer != 0 {
		f["Stringer"] = q.Stringer
	}
	if q.Unit != "" {
		f["Unit"] = strings.ToUpper(q.Unit)
	}
	return f
}

func ValidateShift(s string) error {
	switch s {
	case "A", "B", "C":
		return nil
	}
	return ErrInvalidShift
}

func ValidateStringer(n int) error {
	if n < 1 || n > 12 {
		return ErrInvalidStringer
	}
	return nil
}

// GraphQuery selects one stringer's month of peel data.
type GraphQuery struct {
	Month    string
	Year     int
	Stringer int
	Face     string
}

func (q *GraphQuery) Normalize() error {
	q.Month = strings.ToLower(q.Month)
	if !IsMonthAbbr(q.Month) {
		return ErrInvalidMonth
	}
	if err := ValidateStringer(q.Stringer); err != nil {
		return err
	}
	q.Face = strings.ToLower(q.Face)
	switch q.Face {
	case FaceFront, FaceBack, FaceBoth:
	default:
		return ErrInvalidFace
	}
	return nil
}

// Collection is the monthly collection the query reads.
func (q GraphQuery) Collection() string {
	return fmt.Sprintf("%s_%d", q.Month, q.Year)
}

// GraphPoint is one day on the peel strength graph. Nil values mean the day
// had no readings for the selected face.
type GraphPoint struct {
	Date         string   `json:"date"`
	AverageValue *float64 `json:"average_value"`
	MaxValue     *float64 `json:"max_value"`
	MinValue     *float64 `json:"min_value"`
	RecordCount  int      `json:"record_count"`
	UnitCount    int      `json:"unit_count"`
	Message      string   `json:"message,omitempty"`
}

// PeelGraph computes the per-day graph series for records of one stringer.
func PeelGraph(records []map[string]any, face string) []GraphPoint {
	byDate := make(map[string][]map[string]any)
	for _, r := range records {
		d, _ := r["Date"].(string)
		byDate[d] = append(byDate[d], r)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]GraphPoint, 0, len(dates))
	for _, d := range dates {
		recs := byDate[d]
		p := GraphPoint{Date: d, RecordCount: len(recs), UnitCount: distinctUnits(recs)}

		var avgs, maxes, mins []float64
		for _, r := range recs {
			var front, back []float64
			if face == FaceFront || face == FaceBoth {
				front = positionAverages(r, "front")
			}
			if face == FaceBack || face == FaceBoth {
				back = positionAverages(r, "back")
			}
			all := append(append([]float64{}, front...), back...)
			if len(all) == 0 {
				continue
			}
			avgs = append(avgs, mean(all))
			switch {
			case face == FaceBoth && len(front) > 0 && len(back) > 0:
				maxes = append(maxes, (maxOf(front)+maxOf(back))/2)
				mins = append(mins, (minOf(front)+minOf(back))/2)
			case face == FaceFront && len(front) > 0:
				maxes = append(maxes, maxOf(front))
				mins = append(mins, minOf(front))
			case face == FaceBack && len(back) > 0:
				maxes = append(maxes, maxOf(back))
				mins = append(mins, minOf(back))
			}
		}
		if len(avgs) == 0 {
			p.Message = "No valid data for selected cell face"
			out = append(out, p)
			continue
		}
		p.AverageValue = ptr(Round2(mean(avgs)))
		if len(maxes) > 0 {
			p.MaxValue = ptr(Round2(maxOf(maxes)))
			p.MinValue = ptr(Round2(minOf(mins)))
		}
		out = append(out, p)
	}
	return out
}

// positionAverages groups "<Face>_<pos>_<ribbon>" values by position and
// averages each group. When no key carries a parsable position, the flat
// average of the face's values is returned instead.
func positionAverages(r map[string]any, face string) []float64 {
	groups := make(map[int][]float64)
	var loose []float64
	for k, v := range r {
		if !strings.HasPrefix(strings.ToLower(k), face+"_") {
			continue
		}
		n, ok := numeric(v)
		if !ok {
			continue
		}
		parts := strings.Split(k, "_")
		if len(parts) < 3 {
			continue
		}
		pos, err := strconv.Atoi(parts[1])
		if err != nil {
			loose = append(loose, n)
			continue
		}
		groups[pos] = append(groups[pos], n)
	}
	if len(groups) == 0 {
		if len(loose) == 0 {
			return nil
		}
		return []float64{mean(loose)}
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]float64, 0, len(keys))
	for _, k := range keys {
		out = append(out, mean(groups[k]))
	}
	return out
}

// numeric accepts only real numbers, not numeric strings.
func numeric(v any) (float64, bool) {
	if _, isStr := v.(string); isStr {
		return 0, false
	}
	return AsNumber(v)
}

func distinctUnits(recs []map[string]any) int {
	seen := make(map[string]struct{})
	for _, r := range recs {
		u, _ := r["Unit"].(string)
		seen[u] = struct{}{}
	}
	return len(seen)
}

func mean(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func ptr(f float64) *float64 { return &f }
