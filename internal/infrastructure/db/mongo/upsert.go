package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// upsertByKey writes rows into coll matched on the key fields, so importing
// the same workbook twice leaves the collection unchanged. The unique index
// over the key is created on first use.
func upsertByKey(ctx context.Context, coll *mongo.Collection, key []string, rows []ports.Document) (ports.UpsertResult, error) {
	if len(rows) == 0 {
		return ports.UpsertResult{}, nil
	}
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    indexKeys(key),
		Options: options.Index().SetUnique(true).SetName(indexName(key)),
	})
	if err != nil {
		return ports.UpsertResult{}, fmt.Errorf("index %s: %w", coll.Name(), err)
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(keyFilter(key, row)).
			SetUpdate(bson.M{"$set": row, "$setOnInsert": bson.M{"imported_at": now}}).
			SetUpsert(true))
	}
	res, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return ports.UpsertResult{}, fmt.Errorf("upsert %s: %w", coll.Name(), err)
	}
	return ports.UpsertResult{
		Inserted:  int(res.UpsertedCount),
		Updated:   int(res.ModifiedCount),
		Unchanged: int(res.MatchedCount - res.ModifiedCount),
	}, nil
}

func indexKeys(key []string) bson.D {
	d := make(bson.D, len(key))
	for i, k := range key {
		d[i] = bson.E{Key: k, Value: 1}
	}
	return d
}

func indexName(key []string) string {
	return "unique_" + strings.ToLower(strings.Join(key, "_"))
}

// keyFilter matches missing key fields as null, like the unique index does.
func keyFilter(key []string, row ports.Document) bson.M {
	f := make(bson.M, len(key))
	for _, k := range key {
		f[k] = row[k]
	}
	return f
}
