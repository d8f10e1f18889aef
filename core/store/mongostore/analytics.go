package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rightswatch/core/store"
)

type analyticsStore struct {
	coll *mongo.Collection
}

func NewAnalyticsStore(db *mongo.Database) store.AnalyticsStore {
	return &analyticsStore{coll: db.Collection(ReportsCollection)}
}

func violationsPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$incident_details.violation_types"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$incident_details.violation_types"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "value", Value: "$_id"},
			{Key: "count", Value: 1},
		}}},
	}
}

// timelinePipeline buckets by the YYYY-MM prefix of the canonical created_at
// string. Reports whose created_at was kept verbatim are skipped.
func timelinePipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "created_at", Value: bson.D{{Key: "$regex", Value: `^[0-9]{4}-[0-9]{2}`}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$substrBytes", Value: bson.A{"$created_at", 0, 7}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "period", Value: "$_id"},
			{Key: "count", Value: 1},
		}}},
	}
}

// geodataPipeline keeps the coordinates of the earliest inserted report per city.
func geodataPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$incident_details.location.city"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "coordinates", Value: bson.D{{Key: "$first", Value: "$incident_details.location.coordinates"}}},
			{Key: "first", Value: bson.D{{Key: "$min", Value: "$_id"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "first", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "city", Value: "$_id"},
			{Key: "count", Value: 1},
			{Key: "coordinates", Value: 1},
		}}},
	}
}

func (s *analyticsStore) ViolationCounts(ctx context.Context, limit int) ([]store.ViolationCount, error) {
	res := []store.ViolationCount{}
	if err := s.aggregate(ctx, violationsPipeline(limit), &res); err != nil {
		return nil, fmt.Errorf("violation counts: %w", err)
	}
	return res, nil
}

func (s *analyticsStore) MonthlyTimeline(ctx context.Context, limit int) ([]store.TimelineBucket, error) {
	res := []store.TimelineBucket{}
	if err := s.aggregate(ctx, timelinePipeline(limit), &res); err != nil {
		return nil, fmt.Errorf("monthly timeline: %w", err)
	}
	return res, nil
}

func (s *analyticsStore) CityClusters(ctx context.Context, limit int) ([]store.CityCluster, error) {
	res := []store.CityCluster{}
	if err := s.aggregate(ctx, geodataPipeline(limit), &res); err != nil {
		return nil, fmt.Errorf("city clusters: %w", err)
	}
	return res, nil
}

func (s *analyticsStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}
