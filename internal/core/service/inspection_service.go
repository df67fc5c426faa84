package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

const defaultTopN = 10

// InspectionService serves the rejection workbook datasets.
type InspectionService struct {
	repo ports.InspectionRepository
	log  zerolog.Logger
}

func NewInspectionService(repo ports.InspectionRepository, log zerolog.Logger) *InspectionService {
	return &InspectionService{repo: repo, log: log}
}

func (s *InspectionService) LineData(ctx context.Context, line int, typ string, q ports.InspectionQuery) ([]ports.Document, error) {
	if err := domain.ValidateLine(line); err != nil {
		return nil, err
	}
	q.Line = 0
	return s.repo.Rows(ctx, domain.LineDataCollection(line, typ), q)
}

func (s *InspectionService) CombinedData(ctx context.Context, typ string, q ports.InspectionQuery) ([]ports.Document, error) {
	if q.Line != 0 {
		if err := domain.ValidateLine(q.Line); err != nil {
			return nil, err
		}
	}
	return s.repo.Rows(ctx, domain.CombinedDataCollection(typ), q)
}

func (s *InspectionService) LineSummary(ctx context.Context, line int, typ string) (ports.Document, error) {
	if err := domain.ValidateLine(line); err != nil {
		return nil, err
	}
	return s.repo.Summary(ctx, domain.LineSummaryCollection(line, typ))
}

func (s *InspectionService) CombinedSummary(ctx context.Context, typ string) (ports.Document, error) {
	return s.repo.Summary(ctx, domain.CombinedSummaryCollection(typ))
}

// DefectAnalysis totals every defect column of a line dataset, or of the
// combined dataset when line is 0.
func (s *InspectionService) DefectAnalysis(ctx context.Context, typ string, line int, topN int) (*ports.DefectAnalysis, error) {
	if topN <= 0 {
		topN = defaultTopN
	}
	out := &ports.DefectAnalysis{InspectionType: typ, Defects: []domain.DefectCount{}}
	collection := domain.CombinedDataCollection(typ)
	if line != 0 {
		if err := domain.ValidateLine(line); err != nil {
			return nil, err
		}
		collection = domain.LineDataCollection(line, typ)
		out.LineNumber = &line
	}

	rows, err := s.repo.Rows(ctx, collection, ports.InspectionQuery{})
	if err != nil {
		return nil, err
	}
	totals := domain.DefectTotals(rows)
	for _, v := range totals {
		out.TotalDefects += v
	}
	out.Defects = domain.TopDefects(totals, topN)
	return out, nil
}

// Production reads production stats from the per-line summaries. Empty
// arguments select every inspection type or line.
func (s *InspectionService) Production(ctx context.Context, typ string, line int) (map[string]map[string]ports.LineProduction, error) {
	types := domain.InspectionTypes
	if typ != "" {
		types = []string{typ}
	}
	lines := domain.Lines
	if line != 0 {
		lines = []int{line}
	}

	stats := make(map[string]map[string]ports.LineProduction, len(types))
	for _, t := range types {
		stats[t] = map[string]ports.LineProduction{}
		for _, l := range lines {
			doc, err := s.repo.Summary(ctx, domain.LineSummaryCollection(l, t))
			if errors.Is(err, domain.ErrDatasetNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("production stats: %w", err)
			}
			ps, _ := doc["production_stats"].(map[string]any)
			stats[t][fmt.Sprintf("line_%d", l)] = ports.LineProduction{
				TotalProduction: number(ps["total_production"]),
				TotalRejection:  number(ps["total_rejection"]),
				RejectionRate:   number(ps["average_rejection_rate"]),
			}
		}
	}
	return stats, nil
}

// DateRangeSeries returns, per line, the values of metric for each day of r.
func (s *InspectionService) DateRangeSeries(ctx context.Context, r domain.DateRange, typ, metric string) (map[string]ports.MetricSeries, error) {
	if metric == "" {
		metric = domain.FieldTotalRejection
	}
	out := make(map[string]ports.MetricSeries)
	for _, l := range domain.Lines {
		rows, err := s.repo.Rows(ctx, domain.LineDataCollection(l, typ), ports.InspectionQuery{Range: r})
		if errors.Is(err, domain.ErrDatasetNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("date range series: %w", err)
		}
		if len(rows) == 0 {
			continue
		}
		series := ports.MetricSeries{
			Dates:   make([]string, 0, len(rows)),
			Metrics: make([]float64, 0, len(rows)),
		}
		for _, row := range rows {
			d, _ := row[domain.FieldDate].(string)
			v := number(row[metric])
			series.Dates = append(series.Dates, d)
			series.Metrics = append(series.Metrics, v)
			series.Total += v
		}
		out[fmt.Sprintf("line_%d", l)] = series
	}
	return out, nil
}

func (s *InspectionService) Collections(ctx context.Context) (*ports.CollectionGroups, error) {
	names, err := s.repo.Collections(ctx)
	if err != nil {
		return nil, err
	}
	g := &ports.CollectionGroups{
		LineData:          []string{},
		LineSummaries:     []string{},
		CombinedData:      []string{},
		CombinedSummaries: []string{},
		Total:             len(names),
	}
	for _, n := range names {
		switch {
		case strings.HasPrefix(n, "line_") && strings.HasSuffix(n, "_data"):
			g.LineData = append(g.LineData, n)
		case strings.HasPrefix(n, "line_") && strings.HasSuffix(n, "_summary"):
			g.LineSummaries = append(g.LineSummaries, n)
		case strings.HasPrefix(n, "combined_") && strings.HasSuffix(n, "_data"):
			g.CombinedData = append(g.CombinedData, n)
		case strings.HasPrefix(n, "combined_") && strings.HasSuffix(n, "_summary"):
			g.CombinedSummaries = append(g.CombinedSummaries, n)
		}
	}
	for _, l := range [][]string{g.LineData, g.LineSummaries, g.CombinedData, g.CombinedSummaries} {
		sort.Strings(l)
	}
	return g, nil
}

// Import replaces each dataset and its summary with freshly parsed rows.
func (s *InspectionService) Import(ctx context.Context, source string, datasets []ports.ImportedDataset) (*ports.ImportResult, error) {
	res := &ports.ImportResult{}
	now := time.Now().UTC()
	for _, ds := range datasets {
		typ, err := domain.NormalizeInspectionType(ds.InspectionType)
		if err != nil {
			return res, err
		}
		dataColl, sumColl := domain.CombinedDataCollection(typ), domain.CombinedSummaryCollection(typ)
		lineLabel := "combined"
		if ds.Line != 0 {
			if err := domain.ValidateLine(ds.Line); err != nil {
				return res, err
			}
			dataColl, sumColl = domain.LineDataCollection(ds.Line, typ), domain.LineSummaryCollection(ds.Line, typ)
			lineLabel = fmt.Sprint(ds.Line)
		}

		for _, row := range ds.Rows {
			row["import_timestamp"] = now
			row["data_source"] = source
			row["inspection_type"] = typ
			if ds.Line != 0 {
				row["line_number"] = ds.Line
			}
		}
		summary := domain.Summarize(ds.Rows, lineLabel, typ, source, now)
		if err := s.repo.ReplaceDataset(ctx, dataColl, ds.Rows, sumColl, summary); err != nil {
			return res, fmt.Errorf("import %s: %w", dataColl, err)
		}
		res.Datasets++
		res.Rows += len(ds.Rows)
		s.log.Info().Str("collection", dataColl).Int("rows", len(ds.Rows)).Msg("dataset imported")
	}
	return res, nil
}

func number(v any) float64 {
	if f, ok := domain.AsNumber(v); ok {
		return f
	}
	return 0
}
