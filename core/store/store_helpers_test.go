package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rightswatch/config"
	"rightswatch/core/records"
	"rightswatch/core/utils"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	cfg := &config.AppConfig{
		DBDriver: "sqlite",
		DBURL:    filepath.Join(t.TempDir(), "test.db"),
	}
	logger := utils.NewLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newCase(t *testing.T, caseID string, violations string) *records.Case {
	t.Helper()
	body := `{
		"case_id": "` + caseID + `",
		"title": "t",
		"description": "d",
		"violation_types": "` + violations + `",
		"location": {"country": "X", "coordinates": [1, 2]},
		"date_occurred": "2024-01-15T10:00:00Z",
		"date_reported": "2024-01-16T10:00:00Z",
		"created_by": "tester"
	}`
	c, err := records.DecodeCase(strings.NewReader(body), time.Now().UTC())
	if err != nil {
		t.Fatalf("decode case: %v", err)
	}
	return c
}

func newReport(t *testing.T, reportID, country, city string, coords [2]float64, violations ...string) *records.IncidentReport {
	t.Helper()
	r := &records.IncidentReport{
		ReportID:     reportID,
		ReporterType: "witness",
		IncidentDetails: records.IncidentDetails{
			Date:           records.ParseTimestamp("2024-01-10"),
			Location:       records.IncidentLocation{Country: country, City: city, Coordinates: records.Coordinates{coords[0], coords[1]}},
			Description:    "d",
			ViolationTypes: records.StringList(violations),
		},
	}
	if err := records.NormalizeReport(r, time.Now().UTC()); err != nil {
		t.Fatalf("normalize report: %v", err)
	}
	return r
}
