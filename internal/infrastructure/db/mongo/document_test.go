package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
)

func TestNameFilter(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, bson.M{"name": "R1", "_id": bson.M{"$ne": oid}}, nameFilter("R1", oid.Hex()))
	assert.Equal(t, bson.M{"name": "R1"}, nameFilter("R1", ""))
	assert.Equal(t, bson.M{"name": "R1"}, nameFilter("R1", "not-an-id"))
}

func TestPlainDocs(t *testing.T) {
	oid := primitive.NewObjectID()
	at := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
	docs := plainDocs([]bson.M{{
		"_id":    oid,
		"posted": primitive.NewDateTimeFromTime(at),
		"nested": bson.D{{Key: "grades", Value: bson.A{"O", "B"}}},
	}})

	assert.Equal(t, oid.Hex(), docs[0]["_id"])
	assert.Equal(t, at, docs[0]["posted"])
	assert.Equal(t, map[string]any{"grades": []any{"O", "B"}}, docs[0]["nested"])
}

func TestPostingRange(t *testing.T) {
	r, _ := domain.ParseRequiredDateRange("2025-01-01", "2025-01-31")
	f := postingRange(r)["posting_date"].(bson.M)
	assert.Equal(t, r.From, f["$gte"])
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC), f["$lte"])
}

func TestUpsertKey(t *testing.T) {
	assert.Equal(t, "unique_date_shift_stringer_unit", indexName(domain.PeelKey))
	assert.Equal(t, bson.D{{Key: "Date", Value: 1}, {Key: "Shift", Value: 1}, {Key: "Stringer", Value: 1}, {Key: "Unit", Value: 1}}, indexKeys(domain.PeelKey))

	row := map[string]any{"posting_date": time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), "order_no": "000000071", "grade": "B"}
	assert.Equal(t, bson.M{
		"posting_date":  row["posting_date"],
		"order_no":      "000000071",
		"serial_number": nil,
	}, keyFilter(domain.BGradeKey, row))
}

func TestIPQCFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, ipqcFilter(domain.IPQCFilter{}))
	assert.Equal(t, bson.M{"data.lineNumber": "II", "data.shift": "A"}, ipqcFilter(domain.IPQCFilter{LineNumber: "II", Shift: "A"}))
}
