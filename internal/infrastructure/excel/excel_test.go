package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

func openExport(t *testing.T, data []byte) (*excelize.File, string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f, f.GetSheetName(f.GetActiveSheetIndex())
}

func value(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Gel_Test_Line_2_A-shift_2025-09-14.xlsx", Filename("Gel_Test", "Line 2 A-shift!", "2025-09-14T08:30:00Z"))
	assert.Equal(t, "Peel_Test_Report.xlsx", Filename("Peel_Test", "***", ""))
}

func TestExport_Gel(t *testing.T) {
	r := &domain.Report{
		Kind:      domain.KindGel,
		Name:      "Gel Sep",
		Timestamp: "2025-09-14T08:00:00Z",
		FormData: map[string]any{
			"editable_0":          "INV-7",
			"editable_31":         "81.2",
			"checkbox_0":          true,
			"preparedBySignature": map[string]any{"name": "Asha", "signedAt": "2025-09-14T09:00:00Z"},
		},
		Averages: map[string]string{"average_0": "81.20", "mean": "81.20"},
	}
	out, err := NewExporter("", zerolog.Nop()).Export(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Gel_Test_Gel_Sep_2025-09-14.xlsx", out.Name)
	assert.Equal(t, ContentType, out.ContentType)

	f, sh := openExport(t, out.Data)
	assert.Equal(t, "INV-7", value(t, f, sh, "I5"))
	assert.Equal(t, "81.2", value(t, f, sh, "E19"))
	assert.Equal(t, "81.20", value(t, f, sh, "J19"))
	assert.Equal(t, "81.20", value(t, f, sh, "K19"))
	assert.Contains(t, value(t, f, sh, "B5"), "EVA & EPE ✓")
	assert.Contains(t, value(t, f, sh, "I10"), "EVA ✕")
	assert.Equal(t, "Asha (2025-09-14T09:00:00Z)", value(t, f, sh, "C27"))
}

func TestExport_PeelHighlightsLowValues(t *testing.T) {
	r := &domain.Report{
		Kind: domain.KindPeel,
		Name: "Peel",
		FormData: map[string]any{
			"row_0_cell_0":   "2025-09-14",
			"row_0_cell_6":   "0.8",
			"row_0_cell_7":   "1.4",
			"row_0_cell_118": "1.1",
			"front_avg_0_1":  "1.10",
		},
	}
	out, err := NewExporter("", zerolog.Nop()).Export(context.Background(), r)
	require.NoError(t, err)

	f, sh := openExport(t, out.Data)
	assert.Equal(t, "2025-09-14", value(t, f, sh, "B7"))
	assert.Equal(t, "0.8", value(t, f, sh, "I8"))
	assert.Equal(t, "1.4", value(t, f, sh, "J8"))
	assert.Equal(t, "1.1", value(t, f, sh, "I25"))
	assert.Equal(t, "1.10", value(t, f, sh, "P8"))

	low, err := f.GetCellStyle(sh, "I8")
	require.NoError(t, err)
	normal, err := f.GetCellStyle(sh, "J8")
	require.NoError(t, err)
	assert.NotEqual(t, low, normal)
}

func TestPeelCells(t *testing.T) {
	cells := peelCells()
	assert.Equal(t, "G7", cells["row_0_cell_5"])
	assert.Equal(t, "O8", cells["row_0_cell_12"])
	assert.Equal(t, "B41", cells["row_1_cell_0"])
	assert.Equal(t, "P40", cells["back_avg_0_16"])
}

func TestExport_GridKinds(t *testing.T) {
	r := &domain.Report{
		Kind:      domain.KindWetLeakage,
		Name:      "WL-1",
		Timestamp: "2025-10-01",
		FormData: map[string]any{
			"moduleSerial":        "VSL123",
			"passed":              true,
			"approvedBySignature": map[string]any{"name": "Mgr"},
		},
		RowData: []any{map[string]any{"resistance": "420", "sample": "1"}},
	}
	out, err := NewExporter("", zerolog.Nop()).Export(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Wet_Leakage_Test_WL-1_2025-10-01.xlsx", out.Name)

	f, sh := openExport(t, out.Data)
	assert.Equal(t, "Wet Leakage Test Report: WL-1", value(t, f, sh, "A1"))
	assert.Equal(t, "2025-10-01", value(t, f, sh, "B2"))
	assert.Equal(t, "moduleSerial", value(t, f, sh, "A4"))
	assert.Equal(t, "VSL123", value(t, f, sh, "B4"))
	assert.Equal(t, "passed", value(t, f, sh, "A5"))
	assert.Equal(t, "✓", value(t, f, sh, "B5"))
	// blank row, then the row table header and one row
	assert.Equal(t, "resistance", value(t, f, sh, "A7"))
	assert.Equal(t, "420", value(t, f, sh, "A8"))

	rows, err := f.GetRows(sh)
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, []string{"Approved By", "Mgr"}, last)
}

func TestExport_UnknownKind(t *testing.T) {
	_, err := NewExporter("", zerolog.Nop()).Export(context.Background(), &domain.Report{Kind: "ipqc"})
	assert.ErrorIs(t, err, domain.ErrUnknownReportKind)
}

func TestDecodeDataURL(t *testing.T) {
	ext, raw, ok := decodeDataURL("data:image/png;base64,iVBORw0KGgo=")
	require.True(t, ok)
	assert.Equal(t, ".png", ext)
	assert.NotEmpty(t, raw)

	_, _, ok = decodeDataURL("not-an-image")
	assert.False(t, ok)
}

func rejectionWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sh := "Line - 2"
	_, err := f.NewSheet(sh)
	require.NoError(t, err)
	_, err = f.NewSheet("Summary")
	require.NoError(t, err)

	set := func(cell string, v any) { require.NoError(t, f.SetCellValue(sh, cell, v)) }
	set("B1", "Rejection Report")
	set("B2", "Fab-II")
	set("B3", "Date")
	set("C3", "2025-09-01")
	set("D3", "2025-09-02")
	set("E3", "Month total")
	set("B4", "Pre-El Inspection")
	set("B5", "Total Production")
	set("C5", 1000)
	set("D5", 1200)
	set("B6", "Crack")
	set("C6", 3)
	set("D6", "n/a")
	set("B7", "Visual Inspection")
	set("B8", "Inspection report by QA")
	set("B9", "Total Production")
	set("C9", 990)
	set("D9", 1180)
	set("B10", "Rejection %")
	set("C10", 0.25)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadRejectionWorkbook(t *testing.T) {
	sets, err := ReadRejectionWorkbook(bytes.NewReader(rejectionWorkbook(t)))
	require.NoError(t, err)
	require.Len(t, sets, 2)

	pre := sets[0]
	assert.Equal(t, 2, pre.Line)
	assert.Equal(t, "Pre-EL", pre.InspectionType)
	require.Len(t, pre.Rows, 2)
	assert.Equal(t, "2025-09-01", pre.Rows[0][domain.FieldDate])
	assert.Equal(t, 1000, pre.Rows[0][domain.FieldTotalProduction])
	assert.Equal(t, 3, pre.Rows[0]["Crack"])
	assert.Equal(t, 0, pre.Rows[1]["Crack"])
	assert.Equal(t, 2, pre.Rows[1][domain.FieldLine])

	vis := sets[1]
	assert.Equal(t, "Visual", vis.InspectionType)
	assert.NotContains(t, vis.Rows[0], "Inspection report by QA")
	assert.Equal(t, 0.25, vis.Rows[0][domain.FieldRejectionRate])
}

func TestCombineLines(t *testing.T) {
	sets, err := ReadRejectionWorkbook(bytes.NewReader(rejectionWorkbook(t)))
	require.NoError(t, err)

	all := CombineLines(sets)
	require.Len(t, all, 4)
	combined := all[2]
	assert.Equal(t, 0, combined.Line)
	assert.Equal(t, "Pre-EL", combined.InspectionType)
	require.Len(t, combined.Rows, 2)

	combined.Rows[0]["line_number"] = 9
	assert.NotContains(t, sets[0].Rows[0], "line_number")
}

func TestDateLabel(t *testing.T) {
	assert.Equal(t, "2025-09-01", dateLabel("45901"))
	assert.Equal(t, "2025-09-01", dateLabel("01-09-2025"))
	assert.Equal(t, "Month total", dateLabel(" Month total "))
	assert.Equal(t, "", dateLabel(""))
}

func udReport(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sh := "Sheet1"
	rows := [][]any{
		{"Posting Date", "Creation Time", "Order No.", "Material Desc.", "Serial Number", "Created By", "Grade.", "Reason"},
		{time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), 0.5, "0000000711", "Module 550W", "SN-1", "qa1", "B", "Crack"},
		{"2025-09-01", nil, "0000000912", "Module 550W", "SN-2", "qa2", "O", nil},
		{"2025-09-01", nil, "0000000511", "Cell lot", "SN-3", "qa2", "B", "Chip"},
		{nil, nil, "0000000713", "Module 550W", "SN-4", "qa1", "E", nil},
	}
	for i, row := range rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			require.NoError(t, f.SetCellValue(sh, cellName(j+1, i+1), v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadBGradeWorkbook(t *testing.T) {
	recs, err := ReadBGradeWorkbook(bytes.NewReader(udReport(t)))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first, second := recs[0], recs[1]
	assert.Equal(t, "0000000912", first["order_no"])
	assert.Equal(t, "2025-09-01", first["posting_date"].(time.Time).Format(domain.DateLayout))
	assert.Nil(t, first["reason"])
	assert.Nil(t, first["creation_time"])

	assert.Equal(t, "2025-09-02", second["posting_date"].(time.Time).Format(domain.DateLayout))
	assert.Equal(t, "12:00:00", second["creation_time"])
	assert.Equal(t, "B", second["grade"])
	assert.Equal(t, "Crack", second["reason"])
	assert.Equal(t, "SN-1", second["serial_number"])
	assert.Equal(t, "excel_import", second["data_source"])
}

func TestReadBGradeWorkbook_MissingColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Serial Number"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ReadBGradeWorkbook(bytes.NewReader(buf.Bytes()))
	assert.ErrorContains(t, err, "Posting Date")
}

func writePeelExport(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Auto Peel Tester"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "No."))
	for i, row := range rows {
		for j, v := range row {
			if v != nil {
				require.NoError(t, f.SetCellValue("Sheet1", cellName(j+1, i+4), v))
			}
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadPeelTree(t *testing.T) {
	root := t.TempDir()
	unit := filepath.Join(root, "SEP-2025", "01.09.2025", "SHIFT - A", "Stringer-4 Unit-B")
	lone := filepath.Join(root, "SEP-2025", "01.09.2025", "SHIFT-B", "STRINGER-12 UNIT-A")
	other := filepath.Join(root, "notes", "a", "b", "c")
	for _, dir := range []string{unit, lone, other} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	writePeelExport(t, filepath.Join(unit, "FRONT.xlsx"), [][]any{
		{"S1_1", 1.1, 1.2, 1.3, 1.4, 1.5, 1.6},
		{"S1_2", 2.0, nil, "n/a"},
		{"Gragh_1", 9.0},
	})
	writePeelExport(t, filepath.Join(unit, "back side.xlsx"), [][]any{
		{"S1_1", 0.9},
	})
	writePeelExport(t, filepath.Join(lone, "FRONT.xlsx"), [][]any{{"S1_1", 1.0}})
	writePeelExport(t, filepath.Join(other, "FRONT.xlsx"), [][]any{{"S1_1", 1.0}})

	recs, skipped, err := ReadPeelTree(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("SEP-2025", "01.09.2025", "SHIFT-B", "STRINGER-12 UNIT-A")}, skipped)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "2025-09-01", rec["Date"])
	assert.Equal(t, "A", rec["Shift"])
	assert.Equal(t, 4, rec["Stringer"])
	assert.Equal(t, "B", rec["Unit"])
	assert.Equal(t, 1.6, rec["Front_1_6"])
	assert.Equal(t, 2.0, rec["Front_2_1"])
	assert.Equal(t, 0.9, rec["Back_1_1"])
	assert.NotContains(t, rec, "Front_2_3")
	assert.Len(t, rec, 4+6+1+1)
}

func TestBusPadPosition(t *testing.T) {
	n, ok := busPadPosition("S12_3")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	for _, id := range []string{"", "Gragh_1", "Average", "S1_x"} {
		_, ok := busPadPosition(id)
		assert.False(t, ok, id)
	}
}

func TestExportAudit(t *testing.T) {
	a := &domain.IPQCAudit{
		Name: "Line II A",
		Data: map[string]any{
			"lineNumber":            "II",
			"date":                  "2025-09-14",
			"shift":                 "A",
			"productionOrderNo":     "PO-77",
			"customerSpecAvailable": true,
			"signatures":            map[string]any{"auditBy": "Asha"},
			"stages": []any{
				map[string]any{"name": "Stringer", "parameters": []any{
					map[string]any{"id": "3-6", "parameter": "Peel strength", "observations": []any{
						map[string]any{"timeSlot": "4 hrs", "value": map[string]any{"front": 1.2, "back": "1.4"}},
						map[string]any{"timeSlot": "8 hrs", "value": 1.5},
					}},
				}},
			},
		},
	}
	out, err := NewExporter("", zerolog.Nop()).ExportAudit(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "Quality_Audit_LineII_20250914_ShiftA.xlsx", out.Name)

	f, sh := openExport(t, out.Data)
	assert.Equal(t, "IPQC Audit - Line II A", value(t, f, sh, "A1"))
	assert.Equal(t, "2025-09-14", value(t, f, sh, "B3"))
	assert.Equal(t, "PO-77", value(t, f, sh, "D4"))
	assert.Equal(t, "Yes", value(t, f, sh, "D5"))
	assert.Equal(t, "No", value(t, f, sh, "B6"))
	assert.Equal(t, "Asha", value(t, f, sh, "B7"))
	assert.Equal(t, "Observation", value(t, f, sh, "D9"))
	assert.Equal(t, "Peel strength", value(t, f, sh, "B10"))
	assert.Equal(t, "back: 1.4; front: 1.2", value(t, f, sh, "D10"))
	assert.Equal(t, "8 hrs", value(t, f, sh, "C11"))
	assert.Equal(t, "1.5", value(t, f, sh, "D11"))
}
