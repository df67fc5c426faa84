package ports

import (
	"context"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

// ReportFilter narrows a report listing. Zero values disable a filter.
type ReportFilter struct {
	Range  domain.DateRange
	Search string // case-insensitive substring match on name
}

// ReportRepository persists checksheet reports, one collection per kind.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	FindByID(ctx context.Context, kind domain.ReportKind, id string) (*domain.Report, error)
	// List returns reports newest timestamp first.
	List(ctx context.Context, kind domain.ReportKind, filter ReportFilter) ([]*domain.Report, error)
	Update(ctx context.Context, r *domain.Report) error
	Delete(ctx context.Context, kind domain.ReportKind, id string) error
	// NameExists reports whether another report of kind already uses name.
	// A non-empty excludeID ignores that report (used when renaming).
	NameExists(ctx context.Context, kind domain.ReportKind, name, excludeID string) (bool, error)
}

// ReportInput is the client payload for create and update.
type ReportInput struct {
	Name      string
	Timestamp string
	FormData  map[string]any
	RowData   []any
	Averages  map[string]string
}

// Actor identifies the authenticated caller of a use case.
type Actor struct {
	UserID     string
	EmployeeID string
	Name       string
	Role       string
}

// ExportFile is a generated spreadsheet ready to download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReportExporter renders a report into a workbook.
type ReportExporter interface {
	Export(ctx context.Context, r *domain.Report) (*ExportFile, error)
}

// ReportService is the report use case boundary.
type ReportService interface {
	Create(ctx context.Context, kind domain.ReportKind, in ReportInput, actor Actor) (*domain.Report, error)
	Get(ctx context.Context, kind domain.ReportKind, id string) (*domain.Report, error)
	List(ctx context.Context, kind domain.ReportKind, filter ReportFilter) ([]*domain.Report, error)
	Update(ctx context.Context, kind domain.ReportKind, id string, in ReportInput, actor Actor) (*domain.Report, error)
	Delete(ctx context.Context, kind domain.ReportKind, id string, actor Actor) error
	NameExists(ctx context.Context, kind domain.ReportKind, name, excludeID string) (bool, error)
	Sign(ctx context.Context, kind domain.ReportKind, id, section string, actor Actor) (*domain.Report, error)
	Unsign(ctx context.Context, kind domain.ReportKind, id, section string, actor Actor) (*domain.Report, error)
	History(ctx context.Context, kind domain.ReportKind, id string) ([]*domain.AuditEntry, error)
	// Generate renders an unsaved payload; ExportStored renders a saved report.
	Generate(ctx context.Context, kind domain.ReportKind, in ReportInput) (*ExportFile, error)
	ExportStored(ctx context.Context, kind domain.ReportKind, id string, actor Actor) (*ExportFile, error)
}
