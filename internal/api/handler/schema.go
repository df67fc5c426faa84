package handler

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type changePasswordRequest struct {
	EmployeeID  string `json:"employeeId"  validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// --- Users ---

type createUserRequest struct {
	Name       string `json:"name"       validate:"required"`
	EmployeeID string `json:"employeeId" validate:"required"`
	Phone      string `json:"phone"      validate:"required,numeric,min=4"`
	Role       string `json:"role"       validate:"omitempty,oneof=Admin Manager Supervisor Operator"`
	Password   string `json:"password"`
}

type createUserResponse struct {
	User            any    `json:"user"`
	InitialPassword string `json:"initialPassword,omitempty"`
}

type signatureRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Signature  string `json:"signature"  validate:"required,startswith=data:image/"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// --- Reports ---

type reportRequest struct {
	Name      string            `json:"name"`
	Timestamp string            `json:"timestamp"`
	FormData  map[string]any    `json:"formData"`
	RowData   []any             `json:"rowData,omitempty"`
	Averages  map[string]string `json:"averages,omitempty"`
}

type ipqcAuditRequest struct {
	Name      string         `json:"name"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

// --- Inspection data ---

type lineDataResponse struct {
	LineNumber     int              `json:"line_number"`
	InspectionType string           `json:"inspection_type"`
	TotalRecords   int              `json:"total_records"`
	Data           []ports.Document `json:"data"`
}

type combinedDataResponse struct {
	InspectionType string           `json:"inspection_type"`
	LineFilter     *int             `json:"line_filter"`
	TotalRecords   int              `json:"total_records"`
	Data           []ports.Document `json:"data"`
}

// nonNilDocs keeps empty results encoding as [] rather than null.
func nonNilDocs(docs []ports.Document) []ports.Document {
	if docs == nil {
		return []ports.Document{}
	}
	return docs
}

// --- B-grade ---

type gradeAnalysisResponse struct {
	Success bool `json:"success"`
	domain.GradeAnalysis
}

type reasonAnalysisResponse struct {
	Success         bool         `json:"success"`
	StartDate       string       `json:"start_date"`
	EndDate         string       `json:"end_date"`
	DefectReasons   rankedCounts `json:"defect_reasons"`
	TotalBGrade     int          `json:"total_b_grade"`
	TotalProduction int          `json:"total_production"`
}

// rankedCounts encodes as a reason -> count object whose keys keep rank order.
type rankedCounts []domain.ReasonCount

func (r rankedCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rc := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rc.Reason)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(rc.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type trendEntry struct {
	ID    map[string]string `json:"_id"`
	Count int               `json:"count"`
}

type trendResponse struct {
	Success      bool         `json:"success"`
	AnalysisType string       `json:"analysis_type"`
	DailyData    []trendEntry `json:"daily_data"`
}

// newTrendResponse keys each bucket by "grade" or "reason" depending on the
// analysis type.
func newTrendResponse(analysisType string, points []domain.TrendPoint) trendResponse {
	field := "grade"
	if analysisType == domain.TrendByReason {
		field = "reason"
	}
	out := trendResponse{Success: true, AnalysisType: analysisType, DailyData: make([]trendEntry, len(points))}
	for i, p := range points {
		out.DailyData[i] = trendEntry{ID: map[string]string{"date": p.Date, field: p.Key}, Count: p.Count}
	}
	return out
}

type bgradeCollectionsResponse struct {
	Success     bool     `json:"success"`
	Collections []string `json:"collections"`
	Count       int      `json:"count"`
}

type recordPageResponse struct {
	Success    bool             `json:"success"`
	Collection string           `json:"collection"`
	Data       []ports.Document `json:"data"`
	Count      int              `json:"count"`
	Limit      int64            `json:"limit"`
	Skip       int64            `json:"skip"`
}

// --- Peel ---

const statusSuccess = "success"

type peelDataResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message,omitempty"`
	Filters map[string]any   `json:"filters,omitempty"`
	Date    string           `json:"date,omitempty"`
	Shift   string           `json:"shift,omitempty"`
	Count   int              `json:"count"`
	Data    []ports.Document `json:"data"`
}

type peelGraphResponse struct {
	Status    string              `json:"status"`
	Message   string              `json:"message,omitempty"`
	Month     string              `json:"month"`
	Year      int                 `json:"year"`
	Stringer  int                 `json:"stringer"`
	CellFace  string              `json:"cell_face"`
	TotalDays int                 `json:"total_days"`
	Data      []domain.GraphPoint `json:"data"`
}

type peelCollection struct {
	Name  string `json:"collection_name"`
	Count int64  `json:"document_count"`
}

type peelCollectionsResponse struct {
	Status      string           `json:"status"`
	Total       int              `json:"total_collections"`
	Collections []peelCollection `json:"collections"`
}

func newPeelCollectionsResponse(counts map[string]int64) peelCollectionsResponse {
	out := peelCollectionsResponse{Status: statusSuccess, Total: len(counts), Collections: make([]peelCollection, 0, len(counts))}
	for name, n := range counts {
		out.Collections = append(out.Collections, peelCollection{Name: name, Count: n})
	}
	sort.Slice(out.Collections, func(i, j int) bool { return out.Collections[i].Name < out.Collections[j].Name })
	return out
}
