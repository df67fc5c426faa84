package domain

import (
	"errors"
	"strings"
	"time"
)

// ReportKind identifies one of the plant's checksheet types.
type ReportKind string

const (
	KindGel        ReportKind = "gel"
	KindPeel       ReportKind = "peel"
	KindAdhesion   ReportKind = "adhesion"
	KindWetLeakage ReportKind = "wetleakage"
)

// ReportKinds lists every supported kind in routing order.
var ReportKinds = []ReportKind{KindGel, KindPeel, KindAdhesion, KindWetLeakage}

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrReportNameTaken   = errors.New("a report with this name already exists")
	ErrInvalidID         = errors.New("invalid id")
	ErrUnknownReportKind = errors.New("unknown report kind")
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidDate       = errors.New("invalid date format, use YYYY-MM-DD")
)

// ParseReportKind accepts "gel", "gel-test" or "Gel".
func ParseReportKind(s string) (ReportKind, error) {
	k := ReportKind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "-test"))
	for _, known := range ReportKinds {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnknownReportKind
}

// Collection is the MongoDB collection holding reports of this kind.
func (k ReportKind) Collection() string {
	return string(k) + "_test_reports"
}

// RoutePrefix is the REST resource path, e.g. "/gel-test-reports".
func (k ReportKind) RoutePrefix() string {
	return "/" + string(k) + "-test-reports"
}

// Title is the human-readable sheet name.
func (k ReportKind) Title() string {
	switch k {
	case KindGel:
		return "Gel Test"
	case KindPeel:
		return "Peel Test"
	case KindAdhesion:
		return "Adhesion Test"
	case KindWetLeakage:
		return "Wet Leakage Test"
	}
	return string(k)
}

// Report is a persisted checksheet. FormData values are either strings
// (cell contents) or booleans (checkboxes).
type Report struct {
	ID        string            `json:"_id"`
	Kind      ReportKind        `json:"kind"`
	Name      string            `json:"name"`
	Timestamp string            `json:"timestamp"`
	FormData  map[string]any    `json:"formData"`
	RowData   []any             `json:"rowData,omitempty"`
	Averages  map[string]string `json:"averages,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// FormString returns the trimmed string value of a form field, or "" when the
// field is absent or not a string.
func (r *Report) FormString(key string) string {
	v, ok := r.FormData[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// FormBool reports whether a checkbox field is ticked. Strings "true"/"1"
// count as ticked.
func (r *Report) FormBool(key string) bool {
	switch v := r.FormData[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	}
	return false
}

// Date returns the YYYY-MM-DD prefix of the report timestamp.
func (r *Report) Date() string {
	if len(r.Timestamp) >= 10 {
		return r.Timestamp[:10]
	}
	return r.Timestamp
}
