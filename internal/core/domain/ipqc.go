package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrIPQCAuditNotFound  = errors.New("audit not found")
	ErrIPQCAuditNameTaken = errors.New("an audit with this name already exists")
)

// IPQCAudit is an in-process quality audit checklist. Data is the audit form
// as the client sends it: lineNumber, date, shift and header fields plus the
// observed stages.
type IPQCAudit struct {
	ID        string         `json:"_id"`
	Name      string         `json:"name"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// IPQCFilter matches audits on form fields. Empty fields match everything.
type IPQCFilter struct {
	LineNumber string
	Date       string
	Shift      string
}

// DataString returns the trimmed text of a top-level form field.
func (a *IPQCAudit) DataString(key string) string {
	return strings.TrimSpace(auditText(a.Data[key]))
}

// Signer returns the name recorded under data.signatures.<role>.
func (a *IPQCAudit) Signer(role string) string {
	sigs, _ := a.Data["signatures"].(map[string]any)
	return strings.TrimSpace(auditText(sigs[role]))
}

// ExportName is Quality_Audit_Line<line>_<yyyymmdd>_Shift<shift>.xlsx with
// "Unknown" standing in for missing fields.
func (a *IPQCAudit) ExportName() string {
	or := func(s string) string {
		if s == "" {
			return "Unknown"
		}
		return s
	}
	date := strings.ReplaceAll(a.DataString("date"), "-", "")
	return fmt.Sprintf("Quality_Audit_Line%s_%s_Shift%s.xlsx",
		or(a.DataString("lineNumber")), or(date), or(a.DataString("shift")))
}

// IPQCObservation is one reading of one audit parameter.
type IPQCObservation struct {
	Stage     string
	Parameter string
	TimeSlot  string
	Value     string
}

// Observations flattens data.stages[].parameters[].observations[] in form
// order. Structured values are rendered as sorted "key: value" pairs.
func (a *IPQCAudit) Observations() []IPQCObservation {
	stages, _ := a.Data["stages"].([]any)
	var out []IPQCObservation
	for _, st := range stages {
		stage, _ := st.(map[string]any)
		params, _ := stage["parameters"].([]any)
		for _, p := range params {
			param, _ := p.(map[string]any)
			obs, _ := param["observations"].([]any)
			for _, o := range obs {
				ob, _ := o.(map[string]any)
				out = append(out, IPQCObservation{
					Stage:     auditLabel(stage, "name", "title", "stage", "id"),
					Parameter: auditLabel(param, "parameter", "name", "title", "id"),
					TimeSlot:  auditText(ob["timeSlot"]),
					Value:     auditText(ob["value"]),
				})
			}
		}
	}
	return out
}

func auditLabel(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(auditText(m[k])); s != "" {
			return s
		}
	}
	return ""
}

func auditText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+auditText(t[k]))
		}
		return strings.Join(parts, "; ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, x := range t {
			parts = append(parts, auditText(x))
		}
		return strings.Join(parts, ", ")
	}
	if n, ok := AsNumber(v); ok {
		return fmt.Sprint(n)
	}
	return fmt.Sprint(v)
}
