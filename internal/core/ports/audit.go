package ports

import (
	"context"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

// AuditRepository stores the report audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEntry) error
	ListByReport(ctx context.Context, kind domain.ReportKind, reportID string) ([]*domain.AuditEntry, error)
}

// AuditRecorder accepts audit entries for asynchronous persistence.
type AuditRecorder interface {
	Record(e *domain.AuditEntry)
}
