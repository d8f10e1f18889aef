package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rightswatch/core/records"
	"rightswatch/core/store"
)

type individualDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	records.Individual `bson:",inline"`
}

type individualsStore struct {
	coll *mongo.Collection
}

func NewIndividualsStore(db *mongo.Database) store.IndividualsStore {
	return &individualsStore{coll: db.Collection(IndividualsCollection)}
}

func (s *individualsStore) CreateIndividual(ctx context.Context, ind *records.Individual) (string, error) {
	now := records.NewTimestamp(time.Now().UTC())
	if ind.CreatedAt.IsZero() {
		ind.CreatedAt = now
	}
	if ind.UpdatedAt.IsZero() {
		ind.UpdatedAt = now
	}
	res, err := s.coll.InsertOne(ctx, individualDocument{Individual: *ind})
	if err != nil {
		return "", mapWriteError(err, "insert individual")
	}
	ind.ID = insertedID(res)
	return ind.ID, nil
}

func (s *individualsStore) GetIndividual(ctx context.Context, id string) (*records.Individual, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc individualDocument
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mapFindError(err)
	}
	ind := doc.Individual
	ind.ID = doc.ID.Hex()
	return &ind, nil
}

func (s *individualsStore) ListIndividuals(ctx context.Context) ([]records.Individual, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(store.ListLimit))
	if err != nil {
		return nil, fmt.Errorf("list individuals: %w", err)
	}
	var docs []individualDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list individuals: %w", err)
	}
	res := make([]records.Individual, 0, len(docs))
	for _, doc := range docs {
		ind := doc.Individual
		ind.ID = doc.ID.Hex()
		res = append(res, ind)
	}
	return res, nil
}

func (s *individualsStore) UpdateIndividualRisk(ctx context.Context, id string, risk map[string]any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	now := records.NewTimestamp(time.Now().UTC())
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "risk_assessment", Value: risk}, {Key: "updated_at", Value: now}}}})
	if err != nil {
		return fmt.Errorf("update individual risk: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
