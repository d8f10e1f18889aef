package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rightswatch/core/records"
)

type ViolationCount struct {
	Value string `json:"value" bson:"value"`
	Count int64  `json:"count" bson:"count"`
}

type TimelineBucket struct {
	Period string `json:"period" bson:"period"`
	Count  int64  `json:"count" bson:"count"`
}

// CityCluster carries the coordinates of the first report seen for the city.
type CityCluster struct {
	City        *string             `json:"city" bson:"city"`
	Count       int64               `json:"count" bson:"count"`
	Coordinates records.Coordinates `json:"coordinates" bson:"coordinates"`
}

// AnalyticsStore computes read-only aggregates over incident reports.
type AnalyticsStore interface {
	ViolationCounts(ctx context.Context, limit int) ([]ViolationCount, error)
	MonthlyTimeline(ctx context.Context, limit int) ([]TimelineBucket, error)
	CityClusters(ctx context.Context, limit int) ([]CityCluster, error)
}

type analyticsStore struct {
	db *DB
}

func NewAnalyticsStore(db *DB) AnalyticsStore {
	return &analyticsStore{db: db}
}

func (s *analyticsStore) ViolationCounts(ctx context.Context, limit int) ([]ViolationCount, error) {
	d := s.db.dialect
	query := fmt.Sprintf(`
		SELECT je.value, COUNT(*) AS n
		FROM reports, %s
		GROUP BY je.value
		ORDER BY n DESC, je.value ASC
		LIMIT %d`, d.jsonArrayElements("reports.doc", ReportFieldPaths.Violations...), limit)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("violation counts: %w", err)
	}
	defer rows.Close()
	res := []ViolationCount{}
	for rows.Next() {
		var vc ViolationCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return nil, err
		}
		res = append(res, vc)
	}
	return res, rows.Err()
}

func (s *analyticsStore) MonthlyTimeline(ctx context.Context, limit int) ([]TimelineBucket, error) {
	query := fmt.Sprintf(`
		SELECT substr(created_at, 1, 7) AS period, COUNT(*) AS n
		FROM reports
		WHERE %s
		GROUP BY substr(created_at, 1, 7)
		ORDER BY period ASC
		LIMIT %d`, s.db.dialect.yearMonthPrefix("created_at"), limit)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("monthly timeline: %w", err)
	}
	defer rows.Close()
	res := []TimelineBucket{}
	for rows.Next() {
		var b TimelineBucket
		if err := rows.Scan(&b.Period, &b.Count); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (s *analyticsStore) CityClusters(ctx context.Context, limit int) ([]CityCluster, error) {
	d := s.db.dialect
	city := d.jsonText("doc", "incident_details", "location", "city")
	query := fmt.Sprintf(`
		SELECT g.city, g.n, %s
		FROM (
			SELECT %s AS city, COUNT(*) AS n, MIN(id) AS first_id
			FROM reports
			GROUP BY %s
		) g
		JOIN reports r ON r.id = g.first_id
		ORDER BY g.first_id ASC
		LIMIT %d`, d.jsonRaw("r.doc", "incident_details", "location", "coordinates"), city, city, limit)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("city clusters: %w", err)
	}
	defer rows.Close()
	res := []CityCluster{}
	for rows.Next() {
		var cityName sql.NullString
		var coords []byte
		var cc CityCluster
		if err := rows.Scan(&cityName, &cc.Count, &coords); err != nil {
			return nil, err
		}
		if cityName.Valid {
			name := cityName.String
			cc.City = &name
		}
		if len(coords) > 0 {
			if err := json.Unmarshal(coords, &cc.Coordinates); err != nil {
				return nil, fmt.Errorf("decode coordinates: %w", err)
			}
		}
		res = append(res, cc)
	}
	return res, rows.Err()
}
