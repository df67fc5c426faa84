package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

const ipqcCollection = "ipqc_audits"

// IPQCRepository stores IPQC audits next to the checksheet reports.
type IPQCRepository struct {
	coll *mongo.Collection
}

func NewIPQCRepository(db *mongo.Database) *IPQCRepository {
	return &IPQCRepository{coll: db.Collection(ipqcCollection)}
}

type ipqcDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Timestamp string             `bson:"timestamp"`
	Data      bson.M             `bson:"data,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *ipqcDoc) toDomain() *domain.IPQCAudit {
	a := &domain.IPQCAudit{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Timestamp: d.Timestamp,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Data != nil {
		a.Data = plainMap(d.Data)
	}
	return a
}

func (r *IPQCRepository) Create(ctx context.Context, a *domain.IPQCAudit) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, ipqcDoc{
		Name:      a.Name,
		Timestamp: a.Timestamp,
		Data:      a.Data,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrIPQCAuditNameTaken
		}
		return fmt.Errorf("insert audit: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return nil
}

func (r *IPQCRepository) FindByID(ctx context.Context, id string) (*domain.IPQCAudit, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc ipqcDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIPQCAuditNotFound
		}
		return nil, fmt.Errorf("find audit: %w", err)
	}
	return doc.toDomain(), nil
}

// ipqcFilter matches the form fields stored under data.
func ipqcFilter(f domain.IPQCFilter) bson.M {
	filter := bson.M{}
	if f.LineNumber != "" {
		filter["data.lineNumber"] = f.LineNumber
	}
	if f.Date != "" {
		filter["data.date"] = f.Date
	}
	if f.Shift != "" {
		filter["data.shift"] = f.Shift
	}
	return filter
}

func (r *IPQCRepository) List(ctx context.Context, f domain.IPQCFilter, withData bool) ([]*domain.IPQCAudit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if !withData {
		opts.SetProjection(bson.M{"data": 0})
	}
	cur, err := r.coll.Find(ctx, ipqcFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer cur.Close(ctx)

	out := []*domain.IPQCAudit{}
	for cur.Next(ctx) {
		var doc ipqcDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode audit: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *IPQCRepository) Update(ctx context.Context, a *domain.IPQCAudit) error {
	oid, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":       a.Name,
		"timestamp":  a.Timestamp,
		"data":       a.Data,
		"updated_at": a.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrIPQCAuditNameTaken
		}
		return fmt.Errorf("update audit: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIPQCAuditNotFound
	}
	return nil
}

func (r *IPQCRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete audit: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrIPQCAuditNotFound
	}
	return nil
}

func (r *IPQCRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, nameFilter(name, excludeID), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check audit name: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes makes audit names unique and orders listings by timestamp.
func (r *IPQCRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("%s indexes: %w", ipqcCollection, err)
	}
	return nil
}
