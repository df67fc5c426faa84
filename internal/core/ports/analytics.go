package ports

import (
	"context"
	"time"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

// Document is a schemaless MongoDB row rendered as plain Go values.
type Document = map[string]any

// InspectionQuery filters rows of an inspection dataset.
type InspectionQuery struct {
	Range domain.DateRange
	Line  int   // combined datasets only; 0 = all lines
	Limit int64 // 0 = unlimited
}

// InspectionRepository reads and writes the quality_analysis datasets.
// Missing collections yield domain.ErrDatasetNotFound.
type InspectionRepository interface {
	Rows(ctx context.Context, collection string, q InspectionQuery) ([]Document, error)
	Summary(ctx context.Context, collection string) (Document, error)
	Collections(ctx context.Context) ([]string, error)
	// ReplaceDataset replaces a data collection, then its summary collection.
	ReplaceDataset(ctx context.Context, dataCollection string, rows []Document, summaryCollection string, summary domain.InspectionSummary) error
}

// DefectAnalysis is the top-N defect rollup of one dataset.
type DefectAnalysis struct {
	InspectionType string               `json:"inspection_type"`
	LineNumber     *int                 `json:"line_number"`
	TotalDefects   float64              `json:"total_defects"`
	Defects        []domain.DefectCount `json:"defects"`
}

// LineProduction is one line's entry in the production overview.
type LineProduction struct {
	TotalProduction float64 `json:"total_production"`
	TotalRejection  float64 `json:"total_rejection"`
	RejectionRate   float64 `json:"rejection_rate"`
}

// MetricSeries is one line's metric over a date range.
type MetricSeries struct {
	Dates   []string  `json:"dates"`
	Metrics []float64 `json:"metrics"`
	Total   float64   `json:"total"`
}

// CollectionGroups lists the available datasets by kind.
type CollectionGroups struct {
	LineData          []string `json:"line_data"`
	LineSummaries     []string `json:"line_summaries"`
	CombinedData      []string `json:"combined_data"`
	CombinedSummaries []string `json:"combined_summaries"`
	Total             int      `json:"total_collections"`
}

// ImportedDataset is one parsed section of the rejection workbook.
type ImportedDataset struct {
	Line           int // 0 = combined
	InspectionType string
	Rows           []Document
}

// ImportResult reports what an import wrote.
type ImportResult struct {
	Datasets int `json:"datasets"`
	Rows     int `json:"rows"`
}

type InspectionService interface {
	LineData(ctx context.Context, line int, inspectionType string, q InspectionQuery) ([]Document, error)
	CombinedData(ctx context.Context, inspectionType string, q InspectionQuery) ([]Document, error)
	LineSummary(ctx context.Context, line int, inspectionType string) (Document, error)
	CombinedSummary(ctx context.Context, inspectionType string) (Document, error)
	DefectAnalysis(ctx context.Context, inspectionType string, line int, topN int) (*DefectAnalysis, error)
	Production(ctx context.Context, inspectionType string, line int) (map[string]map[string]LineProduction, error)
	DateRangeSeries(ctx context.Context, r domain.DateRange, inspectionType, metric string) (map[string]MetricSeries, error)
	Collections(ctx context.Context) (*CollectionGroups, error)
	Import(ctx context.Context, source string, datasets []ImportedDataset) (*ImportResult, error)
}

// BGradeRepository reads the monthly B-grade collections.
type BGradeRepository interface {
	Collections(ctx context.Context) ([]string, error)
	GradeCounts(ctx context.Context, collection string, r domain.DateRange) (map[string]int, error)
	ReasonCounts(ctx context.Context, collection string, r domain.DateRange) (map[string]int, error)
	Count(ctx context.Context, collection string, r domain.DateRange, grade string) (int, error)
	DailyTrend(ctx context.Context, collection string, r domain.DateRange, byReason bool) ([]domain.TrendPoint, error)
	Page(ctx context.Context, collection string, limit, skip int64) ([]Document, error)
	// Upsert writes records keyed by domain.BGradeKey.
	Upsert(ctx context.Context, collection string, rows []Document) (UpsertResult, error)
}

// UpsertResult counts what an idempotent import did to one collection.
type UpsertResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// RecordImport totals an import spread over monthly collections. Skipped
// rows had no usable date.
type RecordImport struct {
	UpsertResult
	Skipped     int      `json:"skipped"`
	Collections []string `json:"collections"`
}

// Cache stores JSON-encodable analytics results.
type Cache interface {
	// Get decodes a cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RecordPage is one page of a monthly B-grade collection with the limits
// actually applied.
type RecordPage struct {
	Collection string
	Data       []Document
	Limit      int64
	Skip       int64
}

type BGradeService interface {
	GradeAnalysis(ctx context.Context, r domain.DateRange) (*domain.GradeAnalysis, error)
	DefectAnalysis(ctx context.Context, r domain.DateRange, topN int) (*domain.ReasonAnalysis, error)
	DailyTrend(ctx context.Context, r domain.DateRange, analysisType string) ([]domain.TrendPoint, error)
	Collections(ctx context.Context) ([]string, error)
	CollectionData(ctx context.Context, collection string, limit, skip int64) (*RecordPage, error)
	Import(ctx context.Context, rows []Document) (*RecordImport, error)
}

// PeelRepository reads the monthly peel measurement collections.
type PeelRepository interface {
	Collections(ctx context.Context) (map[string]int64, error)
	// Find returns no rows and no error when the collection does not exist.
	Find(ctx context.Context, collection string, filter domain.PeelQuery) ([]Document, error)
	ByStringer(ctx context.Context, collection string, stringer int) ([]Document, error)
	// Upsert writes records keyed by domain.PeelKey.
	Upsert(ctx context.Context, collection string, rows []Document) (UpsertResult, error)
}

type PeelService interface {
	Data(ctx context.Context, q domain.PeelQuery) ([]Document, error)
	Graph(ctx context.Context, q domain.GraphQuery) ([]domain.GraphPoint, error)
	Collections(ctx context.Context) (map[string]int64, error)
	Import(ctx context.Context, rows []Document) (*RecordImport, error)
}
