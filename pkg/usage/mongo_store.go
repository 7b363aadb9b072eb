package usage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
)

// mongoRecord is the document shape of one (customer, period) counter set.
type mongoRecord struct {
	CustomerID string    `bson:"customer_id"`
	Period     string    `bson:"period"`
	Analyses   int64     `bson:"analyses_used"`
	AIAnalyses int64     `bson:"ai_analyses_used"`
	Exports    int64     `bson:"exports_generated"`
	Companies  int64     `bson:"companies_active"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// MongoStore implements Store on a MongoDB collection. Increment is a single
// FindOneAndUpdate with $inc and upsert, which the server applies atomically
// per document.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a usage store on the given collection.
// Panics if coll is nil to fail fast during initialization.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	if coll == nil {
		panic("usage: mongo collection is required")
	}
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the unique (customer_id, period) index backing the
// upsert path. Call once at startup.
func (ms *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := ms.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "period", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (ms *MongoStore) filter(customerID string, period Period) bson.D {
	return bson.D{
		{Key: "customer_id", Value: customerID},
		{Key: "period", Value: string(period)},
	}
}

// Get returns the record for (customerID, period), zeroed if no document exists.
func (ms *MongoStore) Get(ctx context.Context, customerID string, period Period) (Record, error) {
	if err := validateKey(customerID, period, 0); err != nil {
		return Record{}, err
	}

	var doc mongoRecord
	err := ms.coll.FindOne(ctx, ms.filter(customerID, period)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return zeroRecord(customerID, period), nil
	}
	if err != nil {
		return Record{}, errors.Join(ErrStoreUnavailable, err)
	}

	return doc.record(), nil
}

// Increment applies $inc on the resource field with upsert and returns the
// post-increment document.
func (ms *MongoStore) Increment(ctx context.Context, customerID string, period Period, res plan.Resource, delta int64) (Record, error) {
	if err := validateKey(customerID, period, delta); err != nil {
		return Record{}, err
	}

	// The equality fields of the filter are copied into the document on
	// upsert, so customer_id and period need no $setOnInsert.
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: bsonField(res), Value: delta}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc mongoRecord
	if err := ms.coll.FindOneAndUpdate(ctx, ms.filter(customerID, period), update, opts).Decode(&doc); err != nil {
		return Record{}, errors.Join(ErrStoreUnavailable, err)
	}

	return doc.record(), nil
}

func bsonField(res plan.Resource) string {
	switch res {
	case plan.ResourceAnalyses:
		return "analyses_used"
	case plan.ResourceAIAnalyses:
		return "ai_analyses_used"
	case plan.ResourceExports:
		return "exports_generated"
	case plan.ResourceCompanies:
		return "companies_active"
	}
	panic("usage: unknown resource " + string(res))
}

func (d mongoRecord) record() Record {
	return Record{
		CustomerID: d.CustomerID,
		Period:     Period(d.Period),
		Analyses:   d.Analyses,
		AIAnalyses: d.AIAnalyses,
		Exports:    d.Exports,
		Companies:  d.Companies,
		UpdatedAt:  d.UpdatedAt,
	}
}

var _ Store = (*MongoStore)(nil)
