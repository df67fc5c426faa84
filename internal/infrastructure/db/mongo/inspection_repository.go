package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// InspectionRepository reads the line and combined rejection datasets.
type InspectionRepository struct {
	db *mongo.Database
}

func NewInspectionRepository(db *mongo.Database) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// Rows returns rows ordered by Date. Dates are stored as YYYY-MM-DD strings
// so range bounds compare lexically.
func (r *InspectionRepository) Rows(ctx context.Context, collection string, q ports.InspectionQuery) ([]ports.Document, error) {
	if err := r.mustExist(ctx, collection); err != nil {
		return nil, err
	}

	filter := bson.M{}
	date := bson.M{}
	if s := q.Range.FromString(); s != "" {
		date["$gte"] = s
	}
	if s := q.Range.ToString(); s != "" {
		date["$lte"] = s
	}
	if len(date) > 0 {
		filter[domain.FieldDate] = date
	}
	if q.Line != 0 {
		filter[domain.FieldLine] = q.Line
	}

	opts := options.Find().SetSort(bson.D{{Key: domain.FieldDate, Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	cur, err := r.db.Collection(collection).Find(ctx, filter, opts)
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

func (r *InspectionRepository) Summary(ctx context.Context, collection string) (ports.Document, error) {
	if err := r.mustExist(ctx, collection); err != nil {
		return nil, err
	}
	var doc bson.M
	if err := r.db.Collection(collection).FindOne(ctx, bson.M{}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s is empty", domain.ErrDatasetNotFound, collection)
		}
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return plainMap(doc), nil
}

func (r *InspectionRepository) Collections(ctx context.Context) ([]string, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// ReplaceDataset drops and rewrites a data collection, then its summary.
func (r *InspectionRepository) ReplaceDataset(ctx context.Context, dataColl string, rows []ports.Document, sumColl string, summary domain.InspectionSummary) error {
	data := r.db.Collection(dataColl)
	if err := data.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", dataColl, err)
	}
	if len(rows) > 0 {
		docs := make([]any, len(rows))
		for i, row := range rows {
			docs[i] = row
		}
		if _, err := data.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert %s: %w", dataColl, err)
		}
		if _, err := data.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: domain.FieldDate, Value: 1}}}); err != nil {
			return fmt.Errorf("index %s: %w", dataColl, err)
		}
	}

	sum := r.db.Collection(sumColl)
	if err := sum.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", sumColl, err)
	}
	if _, err := sum.InsertOne(ctx, summary); err != nil {
		return fmt.Errorf("insert %s: %w", sumColl, err)
	}
	return nil
}

func (r *InspectionRepository) mustExist(ctx context.Context, collection string) error {
	ok, err := collectionExists(ctx, r.db, collection)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: collection %s not found", domain.ErrDatasetNotFound, collection)
	}
	return nil
}
