package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

func TestGradePie(t *testing.T) {
	var buf bytes.Buffer
	ga := &domain.GradeAnalysis{
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-30",
		GradeCounts: map[string]int{"O": 90, "B": 10},
		DefectRate:  10,
	}
	require.NoError(t, GradePie(&buf, ga))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "B-grade rate 10.00%")
	assert.Contains(t, html, "2025-09-01 to 2025-09-30")
}

func TestReasonBar(t *testing.T) {
	var buf bytes.Buffer
	ra := &domain.ReasonAnalysis{
		DefectReasons: []domain.ReasonCount{{Reason: "Cell crack", Count: 7}},
		TotalBGrade:   7,
	}
	require.NoError(t, ReasonBar(&buf, ra))
	assert.Contains(t, buf.String(), "Cell crack")
}

func TestDefectBar(t *testing.T) {
	var buf bytes.Buffer
	line := 3
	da := &ports.DefectAnalysis{
		InspectionType: "FQC",
		LineNumber:     &line,
		TotalDefects:   12,
		Defects:        []domain.DefectCount{{Name: "Bubble", Count: 12}},
	}
	require.NoError(t, DefectBar(&buf, da))
	assert.Contains(t, buf.String(), "FQC defects, line 3")
	assert.Contains(t, buf.String(), "Bubble")
}

func TestPeelLine(t *testing.T) {
	var buf bytes.Buffer
	v := 1.25
	pts := []domain.GraphPoint{
		{Date: "2025-09-01", AverageValue: &v, MaxValue: &v, MinValue: &v},
		{Date: "2025-09-02"},
	}
	require.NoError(t, PeelLine(&buf, "Stringer 4", pts))
	html := buf.String()
	assert.Contains(t, html, "Stringer 4")
	assert.Contains(t, html, "2025-09-02")
	assert.Contains(t, html, "1.25")
}
