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

// PeelRepository reads the monthly peel strength collections.
type PeelRepository struct {
	db *mongo.Database
}

func NewPeelRepository(db *mongo.Database) *PeelRepository {
	return &PeelRepository{db: db}
}

// Collections maps each collection to its document count.
func (r *PeelRepository) Collections(ctx context.Context) (map[string]int64, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make(map[string]int64, len(names))
	for _, n := range names {
		c, err := r.db.Collection(n).CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", n, err)
		}
		out[n] = c
	}
	return out, nil
}

func (r *PeelRepository) Find(ctx context.Context, collection string, q domain.PeelQuery) ([]ports.Document, error) {
	return r.find(ctx, collection, bson.M(q.Filter()))
}

func (r *PeelRepository) ByStringer(ctx context.Context, collection string, stringer int) ([]ports.Document, error) {
	return r.find(ctx, collection, bson.M{"Stringer": stringer})
}

func (r *PeelRepository) find(ctx context.Context, collection string, filter bson.M) ([]ports.Document, error) {
	ok, err := collectionExists(ctx, r.db, collection)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ports.Document{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 0})
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

func (r *PeelRepository) Upsert(ctx context.Context, collection string, rows []ports.Document) (ports.UpsertResult, error) {
	return upsertByKey(ctx, r.db.Collection(collection), domain.PeelKey, rows)
}
