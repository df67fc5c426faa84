package excel

import (
	"context"
	"fmt"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// Audit workbook layout: header fields in A3:D7, observations from row 10.
const (
	auditTitleCell     = "A1"
	auditObsHeaderRow  = 9
	auditFirstObsRow   = 10
	auditFontSize      = 11
	auditValueColWidth = 40
)

var auditHeaderCells = []struct {
	label, labelCell, valueCell string
	value                       func(*domain.IPQCAudit) string
}{
	{"Date", "A3", "B3", func(a *domain.IPQCAudit) string { return a.DataString("date") }},
	{"Shift", "C3", "D3", func(a *domain.IPQCAudit) string { return a.DataString("shift") }},
	{"Line", "A4", "B4", func(a *domain.IPQCAudit) string { return a.DataString("lineNumber") }},
	{"Production Order No.", "C4", "D4", func(a *domain.IPQCAudit) string { return a.DataString("productionOrderNo") }},
	{"Module Type", "A5", "B5", func(a *domain.IPQCAudit) string { return a.DataString("moduleType") }},
	{"Customer Spec Available", "C5", "D5", func(a *domain.IPQCAudit) string { return yesNo(a.Data["customerSpecAvailable"]) }},
	{"Specification Signed Off", "A6", "B6", func(a *domain.IPQCAudit) string { return yesNo(a.Data["specificationSignedOff"]) }},
	{"Audit By", "A7", "B7", func(a *domain.IPQCAudit) string { return a.Signer("auditBy") }},
	{"Reviewed By", "C7", "D7", func(a *domain.IPQCAudit) string { return a.Signer("reviewedBy") }},
}

func yesNo(v any) string {
	if b, _ := v.(bool); b {
		return "Yes"
	}
	return "No"
}

// ExportAudit renders an IPQC audit as a header block followed by one row
// per observation.
func (e *Exporter) ExportAudit(_ context.Context, a *domain.IPQCAudit) (*ports.ExportFile, error) {
	s, err := openWorkbook("", "", auditFontSize)
	if err != nil {
		return nil, err
	}
	if err := e.fillAudit(s, a); err != nil {
		_ = s.f.Close()
		return nil, fmt.Errorf("export audit: %w", err)
	}
	data, err := s.bytes()
	if err != nil {
		return nil, err
	}
	return &ports.ExportFile{Name: a.ExportName(), ContentType: ContentType, Data: data}, nil
}

func (e *Exporter) fillAudit(s *sheet, a *domain.IPQCAudit) error {
	title := "IPQC Audit"
	if a.Name != "" {
		title += " - " + a.Name
	}
	if err := s.set(auditTitleCell, title, styleBold); err != nil {
		return err
	}
	for _, h := range auditHeaderCells {
		if err := s.set(h.labelCell, h.label, styleHeader); err != nil {
			return err
		}
		if err := s.set(h.valueCell, h.value(a), styleData); err != nil {
			return err
		}
	}

	for i, head := range []string{"Stage", "Parameter", "Time Slot", "Observation"} {
		if err := s.set(cellName(i+1, auditObsHeaderRow), head, styleHeader); err != nil {
			return err
		}
	}
	for i, ob := range a.Observations() {
		row := auditFirstObsRow + i
		for col, v := range []string{ob.Stage, ob.Parameter, ob.TimeSlot, ob.Value} {
			if err := s.set(cellName(col+1, row), v, styleText); err != nil {
				return err
			}
		}
	}
	return s.f.SetColWidth(s.name, "A", "D", auditValueColWidth)
}
