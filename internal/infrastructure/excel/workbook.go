// Package excel renders checksheet reports into .xlsx workbooks and reads the
// monthly rejection workbooks into inspection datasets.
package excel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

type styleKey int

const (
	styleData styleKey = iota
	styleBold
	styleHeader
	styleLow
	styleText
)

// sheet wraps the active worksheet of a workbook with the report cell styles.
type sheet struct {
	f      *excelize.File
	name   string
	styles map[styleKey]int
}

// openWorkbook loads the named template from dir, or starts an empty workbook
// when dir is empty or the template is missing.
func openWorkbook(dir, template string, fontSize float64) (*sheet, error) {
	var f *excelize.File
	if dir != "" {
		path := filepath.Join(dir, template)
		opened, err := excelize.OpenFile(path)
		switch {
		case err == nil:
			f = opened
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("open template %s: %w", template, err)
		}
	}
	if f == nil {
		f = excelize.NewFile()
	}

	s := &sheet{f: f, name: f.GetSheetName(f.GetActiveSheetIndex()), styles: map[styleKey]int{}}
	defs := map[styleKey]*excelize.Style{
		styleData:   cellStyle(fontSize, false, "000000", ""),
		styleBold:   cellStyle(fontSize, true, "000000", ""),
		styleHeader: cellStyle(fontSize, true, "000000", "D9D9D9"),
		styleLow:    cellStyle(fontSize, false, "FF0000", "FFCCCC"),
		styleText: {
			Font:      &excelize.Font{Family: "Arial", Size: fontSize},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		},
	}
	for k, st := range defs {
		id, err := f.NewStyle(st)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create style: %w", err)
		}
		s.styles[k] = id
	}
	return s, nil
}

func cellStyle(size float64, bold bool, color, fill string) *excelize.Style {
	st := &excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: size, Bold: bold, Color: color},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder,
	}
	if fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1}
	}
	return st
}

func (s *sheet) set(cell string, v any, style styleKey) error {
	if err := s.f.SetCellValue(s.name, cell, v); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return s.f.SetCellStyle(s.name, cell, cell, s.styles[style])
}

func (s *sheet) bytes() ([]byte, error) {
	defer s.f.Close()
	buf, err := s.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds "<Prefix>_<name>_<date>.xlsx" keeping only letters,
// digits, spaces, dashes and underscores of the report name.
func Filename(prefix, reportName, timestamp string) string {
	var b strings.Builder
	for _, r := range reportName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	clean := strings.ReplaceAll(strings.TrimRight(b.String(), " "), " ", "_")
	if clean == "" {
		clean = "Report"
	}
	date, _, _ := strings.Cut(timestamp, "T")
	if date == "" {
		return fmt.Sprintf("%s_%s.xlsx", prefix, clean)
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", prefix, clean, date)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
