package store

import (
	"context"
	"fmt"
	"time"

	"rightswatch/core/records"
)

type ReportsStore interface {
	CreateReport(ctx context.Context, r *records.IncidentReport) (string, error)
	GetReport(ctx context.Context, reportID string) (*records.IncidentReport, error)
	ListReports(ctx context.Context, filter RecordFilter) ([]records.IncidentReport, error)
	UpdateReportStatus(ctx context.Context, reportID, status string) error
	ReplaceReport(ctx context.Context, reportID string, r *records.IncidentReport) error
	DeleteReport(ctx context.Context, reportID string) error
}

type reportsStore struct {
	db *DB
}

func NewReportsStore(db *DB) ReportsStore {
	return &reportsStore{db: db}
}

func (s *reportsStore) CreateReport(ctx context.Context, r *records.IncidentReport) (string, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = records.NewTimestamp(time.Now().UTC())
	}
	doc, err := reportDocument(r)
	if err != nil {
		return "", err
	}
	var id int64
	err = s.db.QueryRowContext(ctx, s.db.rebind(`
		INSERT INTO reports(report_id, status, created_at, updated_at, doc)
		VALUES(?,?,?,?,?) RETURNING id`),
		r.ReportID, r.Status, r.CreatedAt.String(), r.UpdatedAt.String(), doc).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("report %s: %w", r.ReportID, ErrConflict)
		}
		return "", fmt.Errorf("insert report: %w", err)
	}
	r.ID = storeID(id)
	return r.ID, nil
}

func (s *reportsStore) GetReport(ctx context.Context, reportID string) (*records.IncidentReport, error) {
	row := s.db.QueryRowContext(ctx, s.db.rebind(`SELECT id, doc FROM reports WHERE report_id=?`), reportID)
	var r records.IncidentReport
	id, err := scanDocument(row, &r)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return &r, nil
}

func (s *reportsStore) ListReports(ctx context.Context, filter RecordFilter) ([]records.IncidentReport, error) {
	where, args := s.db.dialect.whereClause(filter, ReportFieldPaths)
	query := `SELECT id, doc FROM reports` + where + fmt.Sprintf(" ORDER BY id LIMIT %d", filter.EffectiveLimit())
	rows, err := s.db.QueryContext(ctx, s.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()
	res := []records.IncidentReport{}
	for rows.Next() {
		var r records.IncidentReport
		id, err := scanDocument(rows, &r)
		if err != nil {
			return nil, err
		}
		r.ID = id
		res = append(res, r)
	}
	return res, rows.Err()
}

// UpdateReportStatus changes only the status field. Reports keep no ledger.
func (s *reportsStore) UpdateReportStatus(ctx context.Context, reportID, status string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	row := tx.QueryRowContext(ctx, s.db.rebind(`SELECT id, doc FROM reports WHERE report_id=?`+s.db.dialect.forUpdate()), reportID)
	var r records.IncidentReport
	id, err := scanDocument(row, &r)
	if err != nil {
		tx.Rollback()
		return err
	}
	r.Status = status
	doc, err := reportDocument(&r)
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, s.db.rebind(`UPDATE reports SET status=?, doc=? WHERE id=?`), status, doc, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("update report status: %w", err)
	}
	return tx.Commit()
}

func (s *reportsStore) ReplaceReport(ctx context.Context, reportID string, r *records.IncidentReport) error {
	now := time.Now().UTC()
	r.ReportID = reportID
	r.UpdatedAt = records.NewTimestamp(now)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = records.NewTimestamp(now)
	}
	doc, err := reportDocument(r)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.db.rebind(`UPDATE reports SET status=?, created_at=?, updated_at=?, doc=? WHERE report_id=?`),
		r.Status, r.CreatedAt.String(), r.UpdatedAt.String(), doc, reportID)
	if err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return affectedOrNotFound(res)
}

func (s *reportsStore) DeleteReport(ctx context.Context, reportID string) error {
	res, err := s.db.ExecContext(ctx, s.db.rebind(`DELETE FROM reports WHERE report_id=?`), reportID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return affectedOrNotFound(res)
}

func reportDocument(r *records.IncidentReport) (string, error) {
	doc := *r
	doc.ID = ""
	return encodeDocument(doc)
}
