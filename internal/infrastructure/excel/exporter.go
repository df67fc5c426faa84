package excel

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// Template file names looked up in the template directory.
const (
	GelTemplate        = "Blank Gel Content Test Report.xlsx"
	PeelTemplate       = "Blank Peel Strength Test Report.xlsx"
	AdhesionTemplate   = "Blank Adhesion Test Report.xlsx"
	WetLeakageTemplate = "Blank Wet Leakage Test Report.xlsx"
)

// Exporter renders reports, filling the plant templates when available.
type Exporter struct {
	templateDir string
	log         zerolog.Logger
}

func NewExporter(templateDir string, log zerolog.Logger) *Exporter {
	return &Exporter{templateDir: templateDir, log: log}
}

func (e *Exporter) Export(_ context.Context, r *domain.Report) (*ports.ExportFile, error) {
	var (
		data []byte
		err  error
	)
	switch r.Kind {
	case domain.KindGel:
		data, err = e.gel(r)
	case domain.KindPeel:
		data, err = e.peel(r)
	case domain.KindAdhesion:
		data, err = e.grid(r, AdhesionTemplate)
	case domain.KindWetLeakage:
		data, err = e.grid(r, WetLeakageTemplate)
	default:
		return nil, domain.ErrUnknownReportKind
	}
	if err != nil {
		return nil, fmt.Errorf("export %s report: %w", r.Kind, err)
	}
	prefix := strings.ReplaceAll(r.Kind.Title(), " ", "_")
	return &ports.ExportFile{
		Name:        Filename(prefix, r.Name, r.Timestamp),
		ContentType: ContentType,
		Data:        data,
	}, nil
}

// signature writes the signer text and, when the stored signature carries a
// base64 image, anchors the image on the same cell.
func (e *Exporter) signature(s *sheet, cell string, v any) error {
	text := domain.SignatureText(v)
	if text == "" {
		return nil
	}
	if err := s.set(cell, text, styleData); err != nil {
		return err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	img, _ := m["image"].(string)
	ext, raw, ok := decodeDataURL(img)
	if !ok {
		return nil
	}
	pic := &excelize.Picture{
		Extension: ext,
		File:      raw,
		Format:    &excelize.GraphicOptions{AutoFit: true, OffsetY: 2},
	}
	if err := s.f.AddPictureFromBytes(s.name, cell, pic); err != nil {
		e.log.Warn().Err(err).Str("cell", cell).Msg("signature image skipped")
	}
	return nil
}

// decodeDataURL parses "data:image/png;base64,...".
func decodeDataURL(s string) (string, []byte, bool) {
	head, body, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(head, "data:image/") || !strings.HasSuffix(head, ";base64") {
		return "", nil, false
	}
	ext := "." + strings.TrimSuffix(strings.TrimPrefix(head, "data:image/"), ";base64")
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil || len(raw) == 0 {
		return "", nil, false
	}
	return ext, raw, true
}

// ── Gel ───────────────────────────────────────────────────────────────────────

var gelInfoCells = map[string]string{
	"editable_0": "I5", "editable_1": "J6", "editable_2": "J7", "editable_3": "I8",
	"editable_4": "C10", "editable_5": "D10", "editable_6": "E10",
	"editable_7": "C11", "editable_8": "D11", "editable_9": "E11",
	"editable_10": "C12", "editable_11": "D12", "editable_12": "E12",
	"editable_14": "C13", "editable_15": "D13", "editable_16": "E13",
	"editable_18": "C14", "editable_19": "D14", "editable_20": "E14",
	"editable_22": "C15", "editable_23": "D15", "editable_24": "E15",
	"editable_26": "C16", "editable_27": "D16", "editable_28": "E16",
	"editable_13": "I12", "editable_17": "I13", "editable_21": "I14",
	"editable_25": "I15", "editable_29": "I16",
	"editable_30": "B19", "editable_41": "B21", "editable_57": "B23",
}

var gelSignatureCells = map[string]string{
	"preparedBySignature": "C27",
	"acceptedBySignature": "E27",
	"verifiedBySignature": "J27",
}

const (
	gelFirstMeasureRow = 19
	gelFirstMeasureCol = 5 // E
	gelAverageCol      = "J"
	gelMeanRange       = "K19:K25"
)

func tick(on bool) string {
	if on {
		return "✓"
	}
	return "✕"
}

func (e *Exporter) gel(r *domain.Report) ([]byte, error) {
	s, err := openWorkbook(e.templateDir, GelTemplate, 11)
	if err != nil {
		return nil, err
	}

	for field, cell := range gelInfoCells {
		if v := r.FormString(field); v != "" {
			if err := s.set(cell, v, styleData); err != nil {
				return nil, err
			}
		}
	}
	for field, cell := range gelSignatureCells {
		if err := e.signature(s, cell, r.FormData[field]); err != nil {
			return nil, err
		}
	}

	limit := fmt.Sprintf("Allowable Limit:     1. Gel Content should be: 75 to 95%% for EVA & EPE %s\n"+
		"                                2. Gel Content should be: ≥ 60%% for POE %s",
		tick(r.FormBool("checkbox_0")), tick(r.FormBool("checkbox_1")))
	if err := s.set("B5", limit, styleText); err != nil {
		return nil, err
	}
	encap := fmt.Sprintf("EVA %s           EPE %s           POE %s",
		tick(r.FormBool("checkbox_2")), tick(r.FormBool("checkbox_3")), tick(r.FormBool("checkbox_4")))
	if err := s.set("I10", encap, styleData); err != nil {
		return nil, err
	}

	for i, keys := range domain.GelMeasurementRows {
		row := gelFirstMeasureRow + i
		for j, key := range keys {
			if v := r.FormString(key); v != "" {
				if err := s.set(cellName(gelFirstMeasureCol+j, row), v, styleData); err != nil {
					return nil, err
				}
			}
		}
		if v := r.Averages[fmt.Sprintf("average_%d", i)]; v != "" {
			if err := s.set(fmt.Sprintf("%s%d", gelAverageCol, row), v, styleBold); err != nil {
				return nil, err
			}
		}
	}
	if mean := r.Averages["mean"]; mean != "" {
		first, last, _ := strings.Cut(gelMeanRange, ":")
		if err := s.f.MergeCell(s.name, first, last); err != nil {
			return nil, err
		}
		if err := s.set(first, mean, styleBold); err != nil {
			return nil, err
		}
	}

	_ = s.f.SetRowHeight(s.name, 5, 40)
	_ = s.f.SetRowHeight(s.name, 10, 25)
	return s.bytes()
}

// ── Peel ──────────────────────────────────────────────────────────────────────

// The peel sheet repeats one block per stringer run. Each block holds six
// header cells, then 16 front and 16 back positions of 7 ribbons each.
const (
	peelBlocks     = 12
	peelBlockRows  = 34
	peelFirstRow   = 7
	peelPositions  = 16
	peelRibbons    = 7
	peelBackOffset = 17
	peelHeaderCols = 6
	peelFirstCol   = 9 // I
	peelLowValue   = 1.0
)

var peelSignatureCells = map[string]string{
	"preparedBy": "E415",
	"verifiedBy": "N415",
}

// peelCells maps every peel form field to its cell.
func peelCells() map[string]string {
	cells := make(map[string]string, peelBlocks*(peelHeaderCols+4*peelPositions*peelRibbons))
	for b := 0; b < peelBlocks; b++ {
		base := peelFirstRow + b*peelBlockRows
		for c := 0; c < peelHeaderCols; c++ {
			cells[fmt.Sprintf("row_%d_cell_%d", b, c)] = cellName(2+c, base)
		}
		for pos := 1; pos <= peelPositions; pos++ {
			for rib := 1; rib <= peelRibbons; rib++ {
				idx := (pos-1)*peelRibbons + (rib - 1)
				col := peelFirstCol + rib - 1
				cells[fmt.Sprintf("row_%d_cell_%d", b, peelHeaderCols+idx)] = cellName(col, base+pos)
				cells[fmt.Sprintf("row_%d_cell_%d", b, peelHeaderCols+peelPositions*peelRibbons+idx)] = cellName(col, base+peelBackOffset+pos)
			}
			cells[fmt.Sprintf("front_avg_%d_%d", b, pos)] = fmt.Sprintf("P%d", base+pos)
			cells[fmt.Sprintf("back_avg_%d_%d", b, pos)] = fmt.Sprintf("P%d", base+peelBackOffset+pos)
		}
	}
	return cells
}

func (e *Exporter) peel(r *domain.Report) ([]byte, error) {
	s, err := openWorkbook(e.templateDir, PeelTemplate, 9)
	if err != nil {
		return nil, err
	}
	for field, cell := range peelSignatureCells {
		if err := e.signature(s, cell, r.FormData[field]); err != nil {
			return nil, err
		}
	}
	for field, cell := range peelCells() {
		v := r.FormString(field)
		if v == "" {
			continue
		}
		style := styleData
		if f, err := strconv.ParseFloat(v, 64); err == nil && f < peelLowValue {
			style = styleLow
		}
		if err := s.set(cell, v, style); err != nil {
			return nil, err
		}
	}
	return s.bytes()
}

// ── Adhesion and wet leakage ──────────────────────────────────────────────────

// grid lists the form fields under a title and, when present, the row table
// below them. Signature sections are rendered last.
func (e *Exporter) grid(r *domain.Report, template string) ([]byte, error) {
	s, err := openWorkbook(e.templateDir, template, 10)
	if err != nil {
		return nil, err
	}
	if err := s.f.MergeCell(s.name, "A1", "D1"); err != nil {
		return nil, err
	}
	if err := s.set("A1", r.Kind.Title()+" Report: "+r.Name, styleHeader); err != nil {
		return nil, err
	}
	if err := s.set("A2", "Date", styleHeader); err != nil {
		return nil, err
	}
	if err := s.set("B2", r.Date(), styleData); err != nil {
		return nil, err
	}

	signed := make(map[string]struct{})
	for _, sec := range r.Kind.Sections() {
		signed[sec.Field] = struct{}{}
	}
	keys := make([]string, 0, len(r.FormData))
	for k := range r.FormData {
		if _, ok := signed[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	row := 4
	for _, k := range keys {
		if err := s.set(cellName(1, row), k, styleHeader); err != nil {
			return nil, err
		}
		if err := s.set(cellName(2, row), formText(r.FormData[k]), styleData); err != nil {
			return nil, err
		}
		row++
	}

	if len(r.RowData) > 0 {
		row++
		if row, err = writeRows(s, row, r.RowData); err != nil {
			return nil, err
		}
	}

	row++
	for _, sec := range r.Kind.Sections() {
		if err := s.set(cellName(1, row), sec.Label, styleHeader); err != nil {
			return nil, err
		}
		if err := e.signature(s, cellName(2, row), r.FormData[sec.Field]); err != nil {
			return nil, err
		}
		row++
	}
	_ = s.f.SetColWidth(s.name, "A", "A", 28)
	_ = s.f.SetColWidth(s.name, "B", "H", 16)
	return s.bytes()
}

// writeRows renders row objects as a table with the union of their keys as
// header, returning the next free row.
func writeRows(s *sheet, row int, rows []any) (int, error) {
	var cols []string
	seen := map[string]struct{}{}
	for _, item := range rows {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for k := range m {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	for i, c := range cols {
		if err := s.set(cellName(i+1, row), c, styleHeader); err != nil {
			return row, err
		}
	}
	row++
	for _, item := range rows {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for i, c := range cols {
			if err := s.set(cellName(i+1, row), formText(m[c]), styleData); err != nil {
				return row, err
			}
		}
		row++
	}
	return row, nil
}

func formText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return tick(t)
	case map[string]any:
		return domain.SignatureText(t)
	}
	return fmt.Sprint(v)
}
