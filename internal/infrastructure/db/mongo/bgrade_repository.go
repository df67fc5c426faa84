package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// BGradeRepository aggregates the monthly B-grade collections. Records carry
// a posting_date datetime, a grade and a reason.
type BGradeRepository struct {
	db *mongo.Database
}

func NewBGradeRepository(db *mongo.Database) *BGradeRepository {
	return &BGradeRepository{db: db}
}

func (r *BGradeRepository) Collections(ctx context.Context) ([]string, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// postingRange matches the whole last day of r.
func postingRange(r domain.DateRange) bson.M {
	return bson.M{"posting_date": bson.M{"$gte": r.From, "$lte": r.EndOfDay()}}
}

type groupCount struct {
	ID    string `bson:"_id"`
	Count int    `bson:"count"`
}

func (r *BGradeRepository) groupBy(ctx context.Context, collection string, match bson.M, field string) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var rows []groupCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.ID] += row.Count
	}
	return out, nil
}

func (r *BGradeRepository) GradeCounts(ctx context.Context, collection string, rng domain.DateRange) (map[string]int, error) {
	return r.groupBy(ctx, collection, postingRange(rng), "grade")
}

func (r *BGradeRepository) ReasonCounts(ctx context.Context, collection string, rng domain.DateRange) (map[string]int, error) {
	match := postingRange(rng)
	match["grade"] = domain.GradeB
	return r.groupBy(ctx, collection, match, "reason")
}

func (r *BGradeRepository) Count(ctx context.Context, collection string, rng domain.DateRange, grade string) (int, error) {
	filter := postingRange(rng)
	if grade != "" {
		filter["grade"] = grade
	}
	n, err := r.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return int(n), nil
}

type trendRow struct {
	ID struct {
		Date string `bson:"date"`
		Key  string `bson:"key"`
	} `bson:"_id"`
	Count int `bson:"count"`
}

func (r *BGradeRepository) DailyTrend(ctx context.Context, collection string, rng domain.DateRange, byReason bool) ([]domain.TrendPoint, error) {
	match := postingRange(rng)
	key := "$grade"
	if byReason {
		match["grade"] = domain.GradeB
		key = "$reason"
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"date": bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$posting_date"}},
				"key":  key,
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.date", Value: 1}}}},
	}
	cur, err := r.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var rows []trendRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	out := make([]domain.TrendPoint, len(rows))
	for i, row := range rows {
		out[i] = domain.TrendPoint{Date: row.ID.Date, Key: row.ID.Key, Count: row.Count}
	}
	return out, nil
}

func (r *BGradeRepository) Page(ctx context.Context, collection string, limit, skip int64) ([]ports.Document, error) {
	ok, err := collectionExists(ctx, r.db, collection)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ports.Document{}, nil
	}
	cur, err := r.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return plainDocs(docs), nil
}

func (r *BGradeRepository) Upsert(ctx context.Context, collection string, rows []ports.Document) (ports.UpsertResult, error) {
	return upsertByKey(ctx, r.db.Collection(collection), domain.BGradeKey, rows)
}
