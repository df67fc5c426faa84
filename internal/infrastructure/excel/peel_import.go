package excel

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// Peel tester exports list one sample per row after the "No." header row.
// A sample id ending in _<n> names the bus pad position and the next six
// columns hold the ribbon readings.
const (
	peelHeaderLabel   = "No."
	peelImportRibbons = 6
)

// Result folders are laid out as MON-YYYY/DD.MM.YYYY/SHIFT-A/STRINGER-N UNIT-A
// with one FRONT and one BACK export in the leaf.
var (
	peelMonthDir    = regexp.MustCompile(`^[A-Z]{3}-\d{4}$`)
	peelDateDir     = regexp.MustCompile(`^(\d{2})[.-](\d{2})[.-](\d{4})$`)
	peelShiftDir    = regexp.MustCompile(`(?i)^SHIFT\s*-\s*([ABC])$`)
	peelStringerDir = regexp.MustCompile(`(?i)^STRINGER\s*-\s*(\d+)\s+UNIT\s*-\s*([AB])$`)
)

// ReadPeelSheet reads one face export into "<Face>_<position>_<ribbon>"
// readings. Blank and non-numeric cells are left out.
func ReadPeelSheet(r io.Reader, face string) (map[string]float64, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := "Sheet1"
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	out := make(map[string]float64)
	started := false
	for _, row := range rows {
		id := cell(row, 0)
		if !started {
			started = id == peelHeaderLabel
			continue
		}
		pos, ok := busPadPosition(id)
		if !ok {
			continue
		}
		for ribbon := 1; ribbon <= peelImportRibbons; ribbon++ {
			v, err := strconv.ParseFloat(cell(row, ribbon), 64)
			if err != nil {
				continue
			}
			out[fmt.Sprintf("%s_%d_%d", face, pos, ribbon)] = v
		}
	}
	return out, nil
}

// busPadPosition extracts n from sample ids like "S1_3". Graph captions
// share the id column and are skipped.
func busPadPosition(id string) (int, bool) {
	if id == "" || strings.Contains(strings.ToLower(id), "gragh") || !strings.Contains(id, "_") {
		return 0, false
	}
	n, err := strconv.Atoi(id[strings.LastIndex(id, "_")+1:])
	return n, err == nil
}

// ReadPeelTree walks a peel result folder tree and returns one record per
// stringer unit folder holding both face exports. Unit folders missing an
// export or any readings are returned as skipped.
func ReadPeelTree(root string) (records []ports.Document, skipped []string, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) != 4 {
			return nil
		}
		base, ok := peelFolderRecord(parts)
		if !ok {
			return nil
		}
		rec, err := readPeelUnit(path, base)
		if err != nil {
			return err
		}
		if rec == nil {
			skipped = append(skipped, rel)
			return nil
		}
		records = append(records, rec)
		return filepath.SkipDir
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		for _, k := range []string{"Date", "Shift"} {
			if a[k] != b[k] {
				return a[k].(string) < b[k].(string)
			}
		}
		if a["Stringer"] != b["Stringer"] {
			return a["Stringer"].(int) < b["Stringer"].(int)
		}
		return a["Unit"].(string) < b["Unit"].(string)
	})
	return records, skipped, nil
}

// peelFolderRecord reads date, shift, stringer and unit from the four
// folder levels above a pair of exports.
func peelFolderRecord(parts []string) (ports.Document, bool) {
	if !peelMonthDir.MatchString(parts[0]) {
		return nil, false
	}
	dm := peelDateDir.FindStringSubmatch(parts[1])
	sm := peelShiftDir.FindStringSubmatch(parts[2])
	um := peelStringerDir.FindStringSubmatch(parts[3])
	if dm == nil || sm == nil || um == nil {
		return nil, false
	}
	date, err := time.Parse("02-01-2006", dm[1]+"-"+dm[2]+"-"+dm[3])
	if err != nil {
		return nil, false
	}
	stringer, _ := strconv.Atoi(um[1])
	return ports.Document{
		"Date":     date.Format("2006-01-02"),
		"Shift":    strings.ToUpper(sm[1]),
		"Stringer": stringer,
		"Unit":     strings.ToUpper(um[2]),
	}, true
}

// readPeelUnit merges the FRONT and BACK exports of one unit folder into
// base. It returns nil when either export is missing or empty.
func readPeelUnit(dir string, base ports.Document) (ports.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := map[string]string{}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() || strings.HasPrefix(name, "~$") || filepath.Ext(name) != ".xlsx" {
			continue
		}
		for _, face := range []string{"front", "back"} {
			if _, seen := files[face]; !seen && strings.Contains(name, face) {
				files[face] = filepath.Join(dir, e.Name())
			}
		}
	}

	for _, face := range []string{"Front", "Back"} {
		path, ok := files[strings.ToLower(face)]
		if !ok {
			return nil, nil
		}
		values, err := readPeelFile(path, face)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, nil
		}
		for k, v := range values {
			base[k] = v
		}
	}
	return base, nil
}

func readPeelFile(path, face string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values, err := ReadPeelSheet(f, face)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}
