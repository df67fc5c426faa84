package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectionCollections(t *testing.T) {
	typ, err := NormalizeInspectionType("lam_qc")
	require.NoError(t, err)
	assert.Equal(t, "Lam-QC", typ)
	assert.Equal(t, "line_2_pre_el_data", LineDataCollection(2, "Pre-EL"))
	assert.Equal(t, "combined_fqc_summary", CombinedSummaryCollection("FQC"))
	_, err = NormalizeInspectionType("xray")
	assert.ErrorIs(t, err, ErrUnknownInspection)
}

func TestDefectTotalsAndTop(t *testing.T) {
	rows := []map[string]any{
		{"Date": "2025-01-01", "Total Production": 100.0, "Crack": 3.0, "Bubble": int32(1), "Note": "x"},
		{"Date": "2025-01-02", "Total Production": 120.0, "Crack": 2.0, "Bubble": int64(4), "Shift": 7},
	}
	totals := DefectTotals(rows)
	assert.Equal(t, map[string]float64{"Crack": 5, "Bubble": 5, "Shift": 7}, totals)

	top := TopDefects(totals, 2)
	require.Len(t, top, 2)
	assert.Equal(t, DefectCount{Name: "Shift", Count: 7}, top[0])
	assert.Equal(t, "Bubble", top[1].Name)
}

func TestSummarize(t *testing.T) {
	rows := []map[string]any{
		{"Date": "2025-01-03", "Total Production": 100.0, "Total rejection": 2.0, "Rejection %": 2.0, "Crack": 2.0},
		{"Date": "2025-01-01", "Total Production": 50.0, "Total rejection": 1.0, "Rejection %": 2.5, "Crack": 1.0},
	}
	s := Summarize(rows, "1", "FQC", "upload.xlsx", time.Unix(0, 0))
	assert.Equal(t, 2, s.TotalRecords)
	assert.Equal(t, 150.0, s.Production.TotalProduction)
	assert.Equal(t, 2.25, s.Production.AverageRejectionRate)
	assert.Equal(t, SummaryDateRange{StartDate: "2025-01-01", EndDate: "2025-01-03", DaysCovered: 3}, s.DateRange)
	assert.Equal(t, []string{"Crack"}, s.DefectColumns)
}

func TestNewGradeAnalysis(t *testing.T) {
	r, _ := ParseDateRange("2025-01-01", "2025-01-31")
	ga := NewGradeAnalysis(r, map[string]int{"O": 90, "B": 7, "E": 3})
	assert.Equal(t, 100, ga.TotalProduction)
	assert.Equal(t, 7, ga.TotalDefects)
	assert.Equal(t, 7.0, ga.DefectRate)
	assert.Equal(t, 0, ga.GradeCounts[GradeD])

	empty := NewGradeAnalysis(r, nil)
	assert.Equal(t, 0.0, empty.DefectRate)

	mixed := NewGradeAnalysis(r, map[string]int{"B": 1, "O": 3, "": 2, "X": 1})
	assert.Equal(t, map[string]int{"O": 3, "E": 0, "D": 0, "B": 1}, mixed.GradeCounts)
	assert.Equal(t, 7, mixed.TotalProduction)
	assert.Equal(t, 14.29, mixed.DefectRate)
}

func TestTopReasons(t *testing.T) {
	got := TopReasons(map[string]int{"Crack": 4, "Bubble": 9, "": 3, "Chip": 4}, 2)
	assert.Equal(t, []ReasonCount{{"Bubble", 9}, {"Chip", 4}}, got)
}

func TestMonthsBetween(t *testing.T) {
	r, _ := ParseDateRange("2024-11-15", "2025-02-01")
	assert.Equal(t, []string{"nov_2024", "dec_2024", "jan_2025", "feb_2025"}, MonthsBetween(r))
	assert.True(t, IsMonthlyCollection("sep_2025"))
	assert.False(t, IsMonthlyCollection("users"))
	assert.False(t, IsMonthlyCollection("abc_2025"))
}

func TestPeelGraph(t *testing.T) {
	records := []map[string]any{
		{"Date": "2025-09-02", "Unit": "A", "Front_1_1": 2.0, "Front_1_2": 4.0, "Front_2_1": 6.0, "Back_1_1": 1.0, "Back_2_1": 3.0},
		{"Date": "2025-09-02", "Unit": "B", "Front_1_1": 5.0, "Back_1_1": "n/a"},
		{"Date": "2025-09-01", "Unit": "A", "Back_1_1": 2.0},
	}

	front := PeelGraph(records, FaceFront)
	require.Len(t, front, 2)
	assert.Equal(t, "2025-09-01", front[0].Date)
	assert.Nil(t, front[0].AverageValue)
	assert.NotEmpty(t, front[0].Message)

	day := front[1]
	assert.Equal(t, 2, day.RecordCount)
	assert.Equal(t, 2, day.UnitCount)
	// record A: positions 3 and 6 -> 4.5; record B: 5
	assert.Equal(t, 4.75, *day.AverageValue)
	assert.Equal(t, 6.0, *day.MaxValue)
	assert.Equal(t, 3.0, *day.MinValue)

	both := PeelGraph(records, FaceBoth)
	// record A: max (6+3)/2, min (3+1)/2; record B has no back values
	assert.Equal(t, 4.5, *both[1].MaxValue)
	assert.Equal(t, 2.0, *both[1].MinValue)
}

func TestPeelQueryNormalize(t *testing.T) {
	q := PeelQuery{Date: "2025-09-01", Shift: "b", Unit: "a"}
	require.NoError(t, q.Normalize())
	assert.Equal(t, "B", q.Shift)

	assert.ErrorIs(t, (&PeelQuery{}).Normalize(), ErrInvalidDate)
	assert.ErrorIs(t, (&PeelQuery{Date: "2025-09-01", Shift: "D"}).Normalize(), ErrInvalidShift)
	assert.ErrorIs(t, (&PeelQuery{Date: "2025-09-01", Unit: "C"}).Normalize(), ErrInvalidUnit)

	g := GraphQuery{Month: "SEP", Year: 2025, Stringer: 3, Face: "Both"}
	require.NoError(t, g.Normalize())
	assert.Equal(t, "sep_2025", g.Collection())
	assert.ErrorIs(t, (&GraphQuery{Month: "sept", Stringer: 1, Face: "front"}).Normalize(), ErrInvalidMonth)
	assert.ErrorIs(t, (&GraphQuery{Month: "jan", Stringer: 13, Face: "front"}).Normalize(), ErrInvalidStringer)
}
