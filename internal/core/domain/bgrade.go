package domain

import (
	"errors"
	"sort"
	"time"
)

// Module grades. B is the defective grade.
const (
	GradeO = "O"
	GradeE = "E"
	GradeD = "D"
	GradeB = "B"
)

var Grades = []string{GradeO, GradeE, GradeD, GradeB}

var ErrInvalidCollection = errors.New("invalid collection name")

// GradeAnalysis is the B-grade rollup over a date range.
type GradeAnalysis struct {
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	GradeCounts     map[string]int `json:"grade_counts"`
	TotalProduction int            `json:"total_production"`
	TotalDefects    int            `json:"total_defects"`
	DefectRate      float64        `json:"defect_rate"`
}

// NewGradeAnalysis fills the totals from merged grade counts. Records with a
// missing or unknown grade count toward production only.
func NewGradeAnalysis(r DateRange, counts map[string]int) GradeAnalysis {
	ga := GradeAnalysis{
		StartDate:   r.FromString(),
		EndDate:     r.ToString(),
		GradeCounts: map[string]int{GradeO: 0, GradeE: 0, GradeD: 0, GradeB: 0},
	}
	for g, n := range counts {
		if _, ok := ga.GradeCounts[g]; ok {
			ga.GradeCounts[g] += n
		}
		ga.TotalProduction += n
	}
	ga.TotalDefects = ga.GradeCounts[GradeB]
	if ga.TotalProduction > 0 {
		ga.DefectRate = Round2(float64(ga.TotalDefects) / float64(ga.TotalProduction) * 100)
	}
	return ga
}

// ReasonCount is a B-grade reason and how often it occurred.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// ReasonAnalysis lists the leading B-grade reasons.
type ReasonAnalysis struct {
	StartDate       string        `json:"start_date"`
	EndDate         string        `json:"end_date"`
	DefectReasons   []ReasonCount `json:"defect_reasons"`
	TotalBGrade     int           `json:"total_b_grade"`
	TotalProduction int           `json:"total_production"`
}

// TopReasons merges counts and returns the n most frequent reasons.
func TopReasons(counts map[string]int, n int) []ReasonCount {
	out := make([]ReasonCount, 0, len(counts))
	for r, c := range counts {
		if r == "" {
			continue
		}
		out = append(out, ReasonCount{Reason: r, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TrendPoint is one (date, key) bucket of the daily trend.
type TrendPoint struct {
	Date  string `json:"date"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

const (
	TrendByGrade  = "b-grade"
	TrendByReason = "defect"
)

// SortTrend orders points by date then key.
func SortTrend(points []TrendPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Date != points[j].Date {
			return points[i].Date < points[j].Date
		}
		return points[i].Key < points[j].Key
	})
}

// MonthsBetween returns the monthly collection names overlapping r, oldest
// first.
func MonthsBetween(r DateRange) []string {
	if r.From.IsZero() || r.To.IsZero() || r.To.Before(r.From) {
		return nil
	}
	var out []string
	cur := time.Date(r.From.Year(), r.From.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(r.To.Year(), r.To.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		out = append(out, MonthCollection(cur))
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// IsMonthlyCollection reports whether name looks like "jan_2025".
func IsMonthlyCollection(name string) bool {
	if len(name) != 8 || name[3] != '_' {
		return false
	}
	if !IsMonthAbbr(name[:3]) {
		return false
	}
	for _, c := range name[4:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// BGradeKey identifies one B-grade record within its monthly collection.
var BGradeKey = []string{"posting_date", "order_no", "serial_number"}
