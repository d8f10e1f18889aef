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

type reportDocument struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty"`
	records.IncidentReport `bson:",inline"`
}

type reportsStore struct {
	coll *mongo.Collection
}

func NewReportsStore(db *mongo.Database) store.ReportsStore {
	return &reportsStore{coll: db.Collection(ReportsCollection)}
}

func (s *reportsStore) CreateReport(ctx context.Context, r *records.IncidentReport) (string, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = records.NewTimestamp(time.Now().UTC())
	}
	res, err := s.coll.InsertOne(ctx, reportDocument{IncidentReport: *r})
	if err != nil {
		return "", mapWriteError(err, "insert report "+r.ReportID)
	}
	r.ID = insertedID(res)
	return r.ID, nil
}

func (s *reportsStore) GetReport(ctx context.Context, reportID string) (*records.IncidentReport, error) {
	var doc reportDocument
	if err := s.coll.FindOne(ctx, bson.D{{Key: "report_id", Value: reportID}}).Decode(&doc); err != nil {
		return nil, mapFindError(err)
	}
	r := doc.IncidentReport
	r.ID = doc.ID.Hex()
	return &r, nil
}

func (s *reportsStore) ListReports(ctx context.Context, filter store.RecordFilter) ([]records.IncidentReport, error) {
	cur, err := s.coll.Find(ctx, filterDocument(filter, store.ReportFieldPaths), listOptions(filter))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	var docs []reportDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	res := make([]records.IncidentReport, 0, len(docs))
	for _, doc := range docs {
		r := doc.IncidentReport
		r.ID = doc.ID.Hex()
		res = append(res, r)
	}
	return res, nil
}

func (s *reportsStore) UpdateReportStatus(ctx context.Context, reportID, status string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "report_id", Value: reportID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}})
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *reportsStore) ReplaceReport(ctx context.Context, reportID string, r *records.IncidentReport) error {
	now := time.Now().UTC()
	r.ReportID = reportID
	r.UpdatedAt = records.NewTimestamp(now)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = records.NewTimestamp(now)
	}
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "report_id", Value: reportID}}, reportDocument{IncidentReport: *r})
	if err != nil {
		return mapWriteError(err, "replace report "+reportID)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *reportsStore) DeleteReport(ctx context.Context, reportID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "report_id", Value: reportID}})
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
