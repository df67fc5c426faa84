package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

type upsertFunc func(ctx context.Context, collection string, rows []ports.Document) (ports.UpsertResult, error)

// upsertMonths writes each monthly batch in collection name order and
// totals the outcome.
func upsertMonths(ctx context.Context, batches map[string][]ports.Document, skipped int, upsert upsertFunc, log zerolog.Logger) (*ports.RecordImport, error) {
	names := make([]string, 0, len(batches))
	for name := range batches {
		names = append(names, name)
	}
	sort.Strings(names)

	res := &ports.RecordImport{Skipped: skipped, Collections: []string{}}
	for _, name := range names {
		r, err := upsert(ctx, name, batches[name])
		if err != nil {
			return res, fmt.Errorf("import %s: %w", name, err)
		}
		res.Inserted += r.Inserted
		res.Updated += r.Updated
		res.Unchanged += r.Unchanged
		res.Collections = append(res.Collections, name)
		log.Info().
			Str("collection", name).
			Int("rows", len(batches[name])).
			Int("inserted", r.Inserted).
			Int("updated", r.Updated).
			Msg("records imported")
	}
	return res, nil
}
