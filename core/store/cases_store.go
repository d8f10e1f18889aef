package store

import (
	"context"
	"fmt"
	"time"

	"rightswatch/core/records"
)

type CasesStore interface {
	CreateCase(ctx context.Context, c *records.Case) (string, error)
	GetCase(ctx context.Context, caseID string) (*records.Case, error)
	ListCases(ctx context.Context, filter RecordFilter) ([]records.Case, error)
	// UpdateCaseStatus sets status and updated_at and appends one status
	// history entry. Setting the current value again still succeeds.
	UpdateCaseStatus(ctx context.Context, caseID, status string) error
	ReplaceCase(ctx context.Context, caseID string, c *records.Case) error
	DeleteCase(ctx context.Context, caseID string) error
}

type casesStore struct {
	db *DB
}

func NewCasesStore(db *DB) CasesStore {
	return &casesStore{db: db}
}

func (s *casesStore) CreateCase(ctx context.Context, c *records.Case) (string, error) {
	c.Stamp(time.Now().UTC())
	doc, err := caseDocument(c)
	if err != nil {
		return "", err
	}
	var id int64
	err = s.db.QueryRowContext(ctx, s.db.rebind(`
		INSERT INTO cases(case_id, status, created_at, updated_at, doc)
		VALUES(?,?,?,?,?) RETURNING id`),
		c.CaseID, c.Status, c.CreatedAt.String(), c.UpdatedAt.String(), doc).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("case %s: %w", c.CaseID, ErrConflict)
		}
		return "", fmt.Errorf("insert case: %w", err)
	}
	c.ID = storeID(id)
	return c.ID, nil
}

func (s *casesStore) GetCase(ctx context.Context, caseID string) (*records.Case, error) {
	row := s.db.QueryRowContext(ctx, s.db.rebind(`SELECT id, doc FROM cases WHERE case_id=?`), caseID)
	var c records.Case
	id, err := scanDocument(row, &c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

func (s *casesStore) ListCases(ctx context.Context, filter RecordFilter) ([]records.Case, error) {
	where, args := s.db.dialect.whereClause(filter, CaseFieldPaths)
	query := `SELECT id, doc FROM cases` + where + fmt.Sprintf(" ORDER BY id LIMIT %d", filter.EffectiveLimit())
	rows, err := s.db.QueryContext(ctx, s.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()
	res := []records.Case{}
	for rows.Next() {
		var c records.Case
		id, err := scanDocument(rows, &c)
		if err != nil {
			return nil, err
		}
		c.ID = id
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *casesStore) UpdateCaseStatus(ctx context.Context, caseID, status string) error {
	now := records.NewTimestamp(time.Now().UTC())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	row := tx.QueryRowContext(ctx, s.db.rebind(`SELECT id, doc FROM cases WHERE case_id=?`+s.db.dialect.forUpdate()), caseID)
	var c records.Case
	id, err := scanDocument(row, &c)
	if err != nil {
		tx.Rollback()
		return err
	}
	c.Status = status
	c.UpdatedAt = now
	doc, err := caseDocument(&c)
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, s.db.rebind(`UPDATE cases SET status=?, updated_at=?, doc=? WHERE id=?`),
		status, now.String(), doc, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("update case status: %w", err)
	}
	entry := records.StatusHistoryEntry{CaseID: caseID, Status: status, ChangedAt: now}
	if err := appendStatusHistory(ctx, tx, s.db.dialect, entry); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *casesStore) ReplaceCase(ctx context.Context, caseID string, c *records.Case) error {
	now := time.Now().UTC()
	c.CaseID = caseID
	c.UpdatedAt = records.NewTimestamp(now)
	c.Stamp(now)
	doc, err := caseDocument(c)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.db.rebind(`UPDATE cases SET status=?, created_at=?, updated_at=?, doc=? WHERE case_id=?`),
		c.Status, c.CreatedAt.String(), c.UpdatedAt.String(), doc, caseID)
	if err != nil {
		return fmt.Errorf("replace case: %w", err)
	}
	return affectedOrNotFound(res)
}

func (s *casesStore) DeleteCase(ctx context.Context, caseID string) error {
	res, err := s.db.ExecContext(ctx, s.db.rebind(`DELETE FROM cases WHERE case_id=?`), caseID)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	return affectedOrNotFound(res)
}

func caseDocument(c *records.Case) (string, error) {
	doc := *c
	doc.ID = ""
	return encodeDocument(doc)
}
