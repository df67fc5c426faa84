package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// PeelService serves raw peel strength measurements and graph series.
type PeelService struct {
	repo ports.PeelRepository
	log  zerolog.Logger
}

func NewPeelService(repo ports.PeelRepository, log zerolog.Logger) *PeelService {
	return &PeelService{repo: repo, log: log}
}

func (s *PeelService) Data(ctx context.Context, q domain.PeelQuery) ([]ports.Document, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	d, _ := time.Parse(domain.DateLayout, q.Date)
	return s.repo.Find(ctx, domain.MonthCollection(d), q)
}

func (s *PeelService) Graph(ctx context.Context, q domain.GraphQuery) ([]domain.GraphPoint, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	recs, err := s.repo.ByStringer(ctx, q.Collection(), q.Stringer)
	if err != nil {
		return nil, err
	}
	return domain.PeelGraph(recs, q.Face), nil
}

func (s *PeelService) Collections(ctx context.Context) (map[string]int64, error) {
	return s.repo.Collections(ctx)
}

// Import upserts peel records into the collection of their test month.
// Records with an unparsable date, shift or stringer are skipped.
func (s *PeelService) Import(ctx context.Context, rows []ports.Document) (*ports.RecordImport, error) {
	batches := make(map[string][]ports.Document)
	skipped := 0
	for _, row := range rows {
		date, _ := row["Date"].(string)
		d, err := time.Parse(domain.DateLayout, date)
		shift, _ := row["Shift"].(string)
		stringer, _ := domain.AsNumber(row["Stringer"])
		if err != nil || domain.ValidateShift(shift) != nil || domain.ValidateStringer(int(stringer)) != nil {
			skipped++
			continue
		}
		name := domain.MonthCollection(d)
		batches[name] = append(batches[name], row)
	}
	return upsertMonths(ctx, batches, skipped, s.repo.Upsert, s.log)
}
