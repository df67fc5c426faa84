package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// BGradeService aggregates the monthly B-grade collections. Aggregates are
// cached because every request scans each month in range.
type BGradeService struct {
	repo  ports.BGradeRepository
	cache ports.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewBGradeService(repo ports.BGradeRepository, cache ports.Cache, ttl time.Duration, log zerolog.Logger) *BGradeService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BGradeService{repo: repo, cache: cache, ttl: ttl, log: log}
}

func (s *BGradeService) GradeAnalysis(ctx context.Context, r domain.DateRange) (*domain.GradeAnalysis, error) {
	key := cacheKey("grade-analysis", r)
	var out domain.GradeAnalysis
	if s.cached(ctx, key, &out) {
		return &out, nil
	}

	colls, err := s.monthly(ctx, r)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]int)
	for _, c := range colls {
		counts, err := s.repo.GradeCounts(ctx, c, r)
		if err != nil {
			return nil, fmt.Errorf("grade analysis %s: %w", c, err)
		}
		for g, n := range counts {
			merged[g] += n
		}
	}
	out = domain.NewGradeAnalysis(r, merged)
	s.store(ctx, key, out)
	return &out, nil
}

func (s *BGradeService) DefectAnalysis(ctx context.Context, r domain.DateRange, topN int) (*domain.ReasonAnalysis, error) {
	if topN <= 0 {
		topN = defaultTopN
	}
	key := cacheKey(fmt.Sprintf("defect-analysis:%d", topN), r)
	var out domain.ReasonAnalysis
	if s.cached(ctx, key, &out) {
		return &out, nil
	}

	colls, err := s.monthly(ctx, r)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]int)
	out = domain.ReasonAnalysis{StartDate: r.FromString(), EndDate: r.ToString()}
	for _, c := range colls {
		reasons, err := s.repo.ReasonCounts(ctx, c, r)
		if err != nil {
			return nil, fmt.Errorf("defect analysis %s: %w", c, err)
		}
		for reason, n := range reasons {
			merged[reason] += n
			out.TotalBGrade += n
		}
		total, err := s.repo.Count(ctx, c, r, "")
		if err != nil {
			return nil, fmt.Errorf("defect analysis %s: %w", c, err)
		}
		out.TotalProduction += total
	}
	out.DefectReasons = domain.TopReasons(merged, topN)
	s.store(ctx, key, out)
	return &out, nil
}

// DailyTrend counts records per day and grade, or per day and reason for
// B-grade records when analysisType is "defect".
func (s *BGradeService) DailyTrend(ctx context.Context, r domain.DateRange, analysisType string) ([]domain.TrendPoint, error) {
	if analysisType == "" {
		analysisType = domain.TrendByGrade
	}
	byReason := analysisType == domain.TrendByReason
	key := cacheKey("daily-trend:"+analysisType, r)
	var out []domain.TrendPoint
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	colls, err := s.monthly(ctx, r)
	if err != nil {
		return nil, err
	}
	out = []domain.TrendPoint{}
	for _, c := range colls {
		pts, err := s.repo.DailyTrend(ctx, c, r, byReason)
		if err != nil {
			return nil, fmt.Errorf("daily trend %s: %w", c, err)
		}
		out = append(out, pts...)
	}
	domain.SortTrend(out)
	s.store(ctx, key, out)
	return out, nil
}

func (s *BGradeService) Collections(ctx context.Context) ([]string, error) {
	return s.repo.Collections(ctx)
}

// CollectionData pages through one monthly collection. A non-positive limit
// falls back to 100 and limits above 1000 are capped.
func (s *BGradeService) CollectionData(ctx context.Context, collection string, limit, skip int64) (*ports.RecordPage, error) {
	if !domain.IsMonthlyCollection(collection) {
		return nil, domain.ErrInvalidCollection
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := s.repo.Page(ctx, collection, limit, skip)
	if err != nil {
		return nil, err
	}
	return &ports.RecordPage{Collection: collection, Data: rows, Limit: limit, Skip: skip}, nil
}

// monthly lists the existing collections whose month overlaps r.
func (s *BGradeService) monthly(ctx context.Context, r domain.DateRange) ([]string, error) {
	all, err := s.repo.Collections(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]struct{}, len(all))
	for _, c := range all {
		existing[c] = struct{}{}
	}
	var out []string
	for _, c := range domain.MonthsBetween(r) {
		if _, ok := existing[c]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *BGradeService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return ok
}

func (s *BGradeService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func cacheKey(endpoint string, r domain.DateRange) string {
	return fmt.Sprintf("bgrade:%s:%s:%s", endpoint, r.FromString(), r.ToString())
}

// Import upserts workbook records into the collection of their posting
// month. Records without a posting date are skipped.
func (s *BGradeService) Import(ctx context.Context, rows []ports.Document) (*ports.RecordImport, error) {
	batches := make(map[string][]ports.Document)
	skipped := 0
	for _, row := range rows {
		posted, ok := row["posting_date"].(time.Time)
		if !ok || posted.IsZero() {
			skipped++
			continue
		}
		name := domain.MonthCollection(posted)
		batches[name] = append(batches[name], row)
	}
	return upsertMonths(ctx, batches, skipped, s.repo.Upsert, s.log)
}
