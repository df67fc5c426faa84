package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// IPQCService stores IPQC audits and renders them as workbooks.
type IPQCService struct {
	repo     ports.IPQCRepository
	exporter ports.IPQCExporter
	log      zerolog.Logger
	now      func() time.Time
}

func NewIPQCService(repo ports.IPQCRepository, exporter ports.IPQCExporter, log zerolog.Logger) *IPQCService {
	return &IPQCService{
		repo:     repo,
		exporter: exporter,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *IPQCService) List(ctx context.Context, includeData bool) ([]*domain.IPQCAudit, error) {
	return s.repo.List(ctx, domain.IPQCFilter{}, includeData)
}

func (s *IPQCService) Search(ctx context.Context, f domain.IPQCFilter) ([]*domain.IPQCAudit, error) {
	f.LineNumber = strings.TrimSpace(f.LineNumber)
	f.Date = strings.TrimSpace(f.Date)
	f.Shift = strings.TrimSpace(f.Shift)
	return s.repo.List(ctx, f, true)
}

func (s *IPQCService) Get(ctx context.Context, id string) (*domain.IPQCAudit, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *IPQCService) Create(ctx context.Context, in ports.IPQCAuditInput, actor ports.Actor) (*domain.IPQCAudit, error) {
	a, err := buildAudit(in)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.NameExists(ctx, a.Name, "")
	if err != nil {
		return nil, fmt.Errorf("create audit: %w", err)
	}
	if taken {
		return nil, domain.ErrIPQCAuditNameTaken
	}

	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create audit: %w", err)
	}
	s.log.Info().Str("id", a.ID).Str("name", a.Name).Str("actor", actor.EmployeeID).Msg("ipqc audit created")
	return a, nil
}

func (s *IPQCService) Update(ctx context.Context, id string, in ports.IPQCAuditInput, actor ports.Actor) (*domain.IPQCAudit, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a, err := buildAudit(in)
	if err != nil {
		return nil, err
	}
	if a.Name != existing.Name {
		taken, err := s.repo.NameExists(ctx, a.Name, id)
		if err != nil {
			return nil, fmt.Errorf("update audit: %w", err)
		}
		if taken {
			return nil, domain.ErrIPQCAuditNameTaken
		}
	}

	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update audit: %w", err)
	}
	s.log.Info().Str("id", a.ID).Str("actor", actor.EmployeeID).Msg("ipqc audit updated")
	return a, nil
}

func (s *IPQCService) Delete(ctx context.Context, id string, actor ports.Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Str("actor", actor.EmployeeID).Msg("ipqc audit deleted")
	return nil
}

func (s *IPQCService) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: name", domain.ErrMissingField)
	}
	return s.repo.NameExists(ctx, name, excludeID)
}

func (s *IPQCService) Generate(ctx context.Context, in ports.IPQCAuditInput) (*ports.ExportFile, error) {
	if in.Data == nil {
		return nil, fmt.Errorf("%w: data", domain.ErrMissingField)
	}
	return s.exporter.ExportAudit(ctx, &domain.IPQCAudit{Name: strings.TrimSpace(in.Name), Timestamp: in.Timestamp, Data: in.Data})
}

func (s *IPQCService) Export(ctx context.Context, id string) (*ports.ExportFile, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.exporter.ExportAudit(ctx, a)
}

func buildAudit(in ports.IPQCAuditInput) (*domain.IPQCAudit, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name", domain.ErrMissingField)
	case in.Timestamp == "":
		return nil, fmt.Errorf("%w: timestamp", domain.ErrMissingField)
	case in.Data == nil:
		return nil, fmt.Errorf("%w: data", domain.ErrMissingField)
	}
	return &domain.IPQCAudit{Name: name, Timestamp: in.Timestamp, Data: in.Data}, nil
}
