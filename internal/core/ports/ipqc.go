package ports

import (
	"context"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

// IPQCRepository persists IPQC audits.
type IPQCRepository interface {
	Create(ctx context.Context, a *domain.IPQCAudit) error
	FindByID(ctx context.Context, id string) (*domain.IPQCAudit, error)
	// List returns audits newest timestamp first. Form data is loaded only
	// when withData is set.
	List(ctx context.Context, f domain.IPQCFilter, withData bool) ([]*domain.IPQCAudit, error)
	Update(ctx context.Context, a *domain.IPQCAudit) error
	Delete(ctx context.Context, id string) error
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
}

// IPQCAuditInput is the client payload for create, update and generate.
type IPQCAuditInput struct {
	Name      string
	Timestamp string
	Data      map[string]any
}

// IPQCExporter renders an audit into a workbook.
type IPQCExporter interface {
	ExportAudit(ctx context.Context, a *domain.IPQCAudit) (*ExportFile, error)
}

type IPQCService interface {
	List(ctx context.Context, includeData bool) ([]*domain.IPQCAudit, error)
	Search(ctx context.Context, f domain.IPQCFilter) ([]*domain.IPQCAudit, error)
	Get(ctx context.Context, id string) (*domain.IPQCAudit, error)
	Create(ctx context.Context, in IPQCAuditInput, actor Actor) (*domain.IPQCAudit, error)
	Update(ctx context.Context, id string, in IPQCAuditInput, actor Actor) (*domain.IPQCAudit, error)
	Delete(ctx context.Context, id string, actor Actor) error
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	// Generate renders an unsaved audit; Export renders a saved one.
	Generate(ctx context.Context, in IPQCAuditInput) (*ExportFile, error)
	Export(ctx context.Context, id string) (*ExportFile, error)
}
