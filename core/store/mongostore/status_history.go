package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rightswatch/core/records"
	"rightswatch/core/store"
)

type statusHistoryDocument struct {
	ID                         primitive.ObjectID `bson:"_id,omitempty"`
	records.StatusHistoryEntry `bson:",inline"`
}

type statusHistoryStore struct {
	coll *mongo.Collection
}

func NewStatusHistoryStore(db *mongo.Database) store.StatusHistoryStore {
	return &statusHistoryStore{coll: db.Collection(StatusHistoryCollection)}
}

func (s *statusHistoryStore) AppendStatus(ctx context.Context, entry records.StatusHistoryEntry) error {
	if _, err := s.coll.InsertOne(ctx, statusHistoryDocument{StatusHistoryEntry: entry}); err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func (s *statusHistoryStore) ListStatusHistory(ctx context.Context, caseID string) ([]records.StatusHistoryEntry, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "case_id", Value: caseID}}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	var docs []statusHistoryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	res := make([]records.StatusHistoryEntry, 0, len(docs))
	for _, doc := range docs {
		entry := doc.StatusHistoryEntry
		entry.ID = doc.ID.Hex()
		res = append(res, entry)
	}
	return res, nil
}
