package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rightswatch/core/records"
	"rightswatch/core/store"
)

type caseDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	records.Case `bson:",inline"`
}

type casesStore struct {
	coll   *mongo.Collection
	ledger store.StatusHistoryStore
}

func NewCasesStore(db *mongo.Database, ledger store.StatusHistoryStore) store.CasesStore {
	return &casesStore{coll: db.Collection(CasesCollection), ledger: ledger}
}

func (s *casesStore) CreateCase(ctx context.Context, c *records.Case) (string, error) {
	c.Stamp(time.Now().UTC())
	res, err := s.coll.InsertOne(ctx, caseDocument{Case: *c})
	if err != nil {
		return "", mapWriteError(err, "insert case "+c.CaseID)
	}
	c.ID = insertedID(res)
	return c.ID, nil
}

func (s *casesStore) GetCase(ctx context.Context, caseID string) (*records.Case, error) {
	var doc caseDocument
	if err := s.coll.FindOne(ctx, bson.D{{Key: "case_id", Value: caseID}}).Decode(&doc); err != nil {
		return nil, mapFindError(err)
	}
	c := doc.Case
	c.ID = doc.ID.Hex()
	return &c, nil
}

func (s *casesStore) ListCases(ctx context.Context, filter store.RecordFilter) ([]records.Case, error) {
	cur, err := s.coll.Find(ctx, filterDocument(filter, store.CaseFieldPaths), listOptions(filter))
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	var docs []caseDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	res := make([]records.Case, 0, len(docs))
	for _, doc := range docs {
		c := doc.Case
		c.ID = doc.ID.Hex()
		res = append(res, c)
	}
	return res, nil
}

// UpdateCaseStatus issues the status write and the ledger append as two
// separate operations. A failure between them leaves the status changed
// without a history entry; the ledger error is returned to the caller.
func (s *casesStore) UpdateCaseStatus(ctx context.Context, caseID, status string) error {
	now := records.NewTimestamp(time.Now().UTC())
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "case_id", Value: caseID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}, {Key: "updated_at", Value: now}}}})
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return s.ledger.AppendStatus(ctx, records.StatusHistoryEntry{CaseID: caseID, Status: status, ChangedAt: now})
}

func (s *casesStore) ReplaceCase(ctx context.Context, caseID string, c *records.Case) error {
	now := time.Now().UTC()
	c.CaseID = caseID
	c.UpdatedAt = records.NewTimestamp(now)
	c.Stamp(now)
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "case_id", Value: caseID}}, caseDocument{Case: *c})
	if err != nil {
		return mapWriteError(err, "replace case "+caseID)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *casesStore) DeleteCase(ctx context.Context, caseID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "case_id", Value: caseID}})
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}
