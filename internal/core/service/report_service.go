package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// ReportService implements checksheet persistence, sign-off and export.
type ReportService struct {
	repo     ports.ReportRepository
	users    ports.UserRepository
	exporter ports.ReportExporter
	audit    ports.AuditRecorder
	history  ports.AuditRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewReportService(
	repo ports.ReportRepository,
	users ports.UserRepository,
	exporter ports.ReportExporter,
	audit ports.AuditRecorder,
	history ports.AuditRepository,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		repo:     repo,
		users:    users,
		exporter: exporter,
		audit:    audit,
		history:  history,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReportService) Create(ctx context.Context, kind domain.ReportKind, in ports.ReportInput, actor ports.Actor) (*domain.Report, error) {
	r, err := s.build(kind, in)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.NameExists(ctx, kind, r.Name, "")
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	if taken {
		return nil, domain.ErrReportNameTaken
	}

	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.record(r, domain.AuditCreated, actor, "")
	s.log.Info().Str("kind", string(kind)).Str("id", r.ID).Str("name", r.Name).Msg("report created")
	return r, nil
}

func (s *ReportService) Get(ctx context.Context, kind domain.ReportKind, id string) (*domain.Report, error) {
	return s.repo.FindByID(ctx, kind, id)
}

func (s *ReportService) List(ctx context.Context, kind domain.ReportKind, filter ports.ReportFilter) ([]*domain.Report, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, kind, filter)
}

func (s *ReportService) Update(ctx context.Context, kind domain.ReportKind, id string, in ports.ReportInput, actor ports.Actor) (*domain.Report, error) {
	existing, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	r, err := s.build(kind, in)
	if err != nil {
		return nil, err
	}

	if r.Name != existing.Name {
		taken, err := s.repo.NameExists(ctx, kind, r.Name, id)
		if err != nil {
			return nil, fmt.Errorf("update report: %w", err)
		}
		if taken {
			return nil, domain.ErrReportNameTaken
		}
	}

	r.ID = existing.ID
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}

	s.record(r, domain.AuditUpdated, actor, "")
	return r, nil
}

func (s *ReportService) Delete(ctx context.Context, kind domain.ReportKind, id string, actor ports.Actor) error {
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.record(&domain.Report{ID: id, Kind: kind}, domain.AuditDeleted, actor, "")
	s.log.Info().Str("kind", string(kind)).Str("id", id).Str("actor", actor.EmployeeID).Msg("report deleted")
	return nil
}

func (s *ReportService) NameExists(ctx context.Context, kind domain.ReportKind, name, excludeID string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: name", domain.ErrMissingField)
	}
	return s.repo.NameExists(ctx, kind, name, excludeID)
}

// Sign stamps the caller's stored signature into a section of the report.
func (s *ReportService) Sign(ctx context.Context, kind domain.ReportKind, id, section string, actor ports.Actor) (*domain.Report, error) {
	sec, err := kind.Section(section)
	if err != nil {
		return nil, err
	}
	r, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckAdd(sec, r.FormData[sec.Field], actor.Role); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmployeeID(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	if user.Signature == "" {
		return nil, domain.ErrNoSignature
	}

	if r.FormData == nil {
		r.FormData = map[string]any{}
	}
	r.FormData[sec.Field] = map[string]any{
		"name":       user.Name,
		"employeeId": user.EmployeeID,
		"image":      user.Signature,
		"signedAt":   s.now().Format(time.RFC3339),
	}
	r.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("sign report: %w", err)
	}

	s.record(r, domain.AuditSigned, actor, sec.Field)
	return r, nil
}

// Unsign clears a section the caller signed.
func (s *ReportService) Unsign(ctx context.Context, kind domain.ReportKind, id, section string, actor ports.Actor) (*domain.Report, error) {
	sec, err := kind.Section(section)
	if err != nil {
		return nil, err
	}
	r, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckRemove(r.FormData[sec.Field], actor.Name); err != nil {
		return nil, err
	}

	r.FormData[sec.Field] = ""
	r.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("unsign report: %w", err)
	}

	s.record(r, domain.AuditUnsigned, actor, sec.Field)
	return r, nil
}

func (s *ReportService) History(ctx context.Context, kind domain.ReportKind, id string) ([]*domain.AuditEntry, error) {
	return s.history.ListByReport(ctx, kind, id)
}

func (s *ReportService) Generate(ctx context.Context, kind domain.ReportKind, in ports.ReportInput) (*ports.ExportFile, error) {
	r, err := s.build(kind, in)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(ctx, r)
}

func (s *ReportService) ExportStored(ctx context.Context, kind domain.ReportKind, id string, actor ports.Actor) (*ports.ExportFile, error) {
	r, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	f, err := s.exporter.Export(ctx, r)
	if err != nil {
		return nil, err
	}
	s.record(r, domain.AuditExported, actor, f.Name)
	return f, nil
}

// build validates a payload and turns it into a report of kind.
func (s *ReportService) build(kind domain.ReportKind, in ports.ReportInput) (*domain.Report, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name", domain.ErrMissingField)
	case in.Timestamp == "":
		return nil, fmt.Errorf("%w: timestamp", domain.ErrMissingField)
	case in.FormData == nil:
		return nil, fmt.Errorf("%w: formData", domain.ErrMissingField)
	}

	r := &domain.Report{
		Kind:      kind,
		Name:      name,
		Timestamp: in.Timestamp,
		FormData:  in.FormData,
		Averages:  in.Averages,
	}
	if kind == domain.KindPeel {
		r.RowData = in.RowData
	}
	if kind == domain.KindGel && len(r.Averages) == 0 {
		r.Averages = domain.ComputeGelAverages(r.FormData)
	}
	return r, nil
}

func (s *ReportService) record(r *domain.Report, action domain.AuditAction, actor ports.Actor, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(&domain.AuditEntry{
		ID:       uuid.NewString(),
		ReportID: r.ID,
		Kind:     r.Kind,
		Action:   action,
		Actor:    actor.EmployeeID,
		Detail:   detail,
		At:       s.now(),
	})
}
