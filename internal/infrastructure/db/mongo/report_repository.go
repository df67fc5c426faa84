package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// ReportRepository stores each report kind in its own collection of the
// report management database.
type ReportRepository struct {
	db *mongo.Database
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{db: db}
}

type reportDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Timestamp string             `bson:"timestamp"`
	FormData  bson.M             `bson:"formData"`
	RowData   bson.A             `bson:"rowData,omitempty"`
	Averages  map[string]string  `bson:"averages,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *reportDoc) toDomain(kind domain.ReportKind) *domain.Report {
	r := &domain.Report{
		ID:        d.ID.Hex(),
		Kind:      kind,
		Name:      d.Name,
		Timestamp: d.Timestamp,
		FormData:  plainMap(d.FormData),
		Averages:  d.Averages,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.RowData != nil {
		r.RowData, _ = plain(d.RowData).([]any)
	}
	return r
}

func (r *ReportRepository) col(kind domain.ReportKind) *mongo.Collection {
	return r.db.Collection(kind.Collection())
}

func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := reportDoc{
		Name:      rep.Name,
		Timestamp: rep.Timestamp,
		FormData:  rep.FormData,
		RowData:   rep.RowData,
		Averages:  rep.Averages,
		CreatedAt: rep.CreatedAt,
		UpdatedAt: rep.UpdatedAt,
	}
	res, err := r.col(rep.Kind).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrReportNameTaken
		}
		return fmt.Errorf("insert report: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rep.ID = oid.Hex()
	}
	return nil
}

func (r *ReportRepository) FindByID(ctx context.Context, kind domain.ReportKind, id string) (*domain.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDoc
	if err := r.col(kind).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return doc.toDomain(kind), nil
}

// List filters on the timestamp's date prefix, which sorts lexically.
func (r *ReportRepository) List(ctx context.Context, kind domain.ReportKind, f ports.ReportFilter) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	ts := bson.M{}
	if s := f.Range.FromString(); s != "" {
		ts["$gte"] = s
	}
	if !f.Range.To.IsZero() {
		ts["$lt"] = f.Range.To.AddDate(0, 0, 1).Format(domain.DateLayout)
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.col(kind).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer cur.Close(ctx)

	out := []*domain.Report{}
	for cur.Next(ctx) {
		var doc reportDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, doc.toDomain(kind))
	}
	return out, cur.Err()
}

func (r *ReportRepository) Update(ctx context.Context, rep *domain.Report) error {
	oid, err := primitive.ObjectIDFromHex(rep.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":       rep.Name,
		"timestamp":  rep.Timestamp,
		"formData":   rep.FormData,
		"averages":   rep.Averages,
		"updated_at": rep.UpdatedAt,
	}
	if rep.RowData != nil {
		set["rowData"] = rep.RowData
	}
	res, err := r.col(rep.Kind).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrReportNameTaken
		}
		return fmt.Errorf("update report: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, kind domain.ReportKind, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col(kind).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

// nameFilter matches name, skipping excludeID when it is a valid object id.
// Malformed ids exclude nothing.
func nameFilter(name, excludeID string) bson.M {
	filter := bson.M{"name": name}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	return filter
}

func (r *ReportRepository) NameExists(ctx context.Context, kind domain.ReportKind, name, excludeID string) (bool, error) {
	filter := nameFilter(name, excludeID)
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col(kind).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check report name: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates the unique name and timestamp indexes for every kind.
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, kind := range domain.ReportKinds {
		indexes := []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		}
		if _, err := r.col(kind).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("%s indexes: %w", kind.Collection(), err)
		}
	}
	return nil
}
