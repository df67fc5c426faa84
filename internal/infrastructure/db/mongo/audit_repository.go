package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

const auditCollection = "report_audit"

// AuditRepository persists the report audit trail.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// Insert is idempotent on the entry id so redelivered entries are ignored.
func (r *AuditRepository) Insert(ctx context.Context, e *domain.AuditEntry) error {
	_, err := r.coll.InsertOne(ctx, e)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByReport(ctx context.Context, kind domain.ReportKind, reportID string) ([]*domain.AuditEntry, error) {
	filter := bson.M{"kind": kind, "report_id": reportID}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer cur.Close(ctx)

	out := []*domain.AuditEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}
	return out, nil
}

func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "kind", Value: 1}, {Key: "report_id", Value: 1}, {Key: "at", Value: 1}},
	})
	return err
}
