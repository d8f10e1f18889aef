package store

import (
	"context"
	"fmt"
	"time"

	"rightswatch/core/records"
)

type IndividualsStore interface {
	CreateIndividual(ctx context.Context, ind *records.Individual) (string, error)
	GetIndividual(ctx context.Context, id string) (*records.Individual, error)
	ListIndividuals(ctx context.Context) ([]records.Individual, error)
	UpdateIndividualRisk(ctx context.Context, id string, risk map[string]any) error
}

type individualsStore struct {
	db *DB
}

func NewIndividualsStore(db *DB) IndividualsStore {
	return &individualsStore{db: db}
}

func (s *individualsStore) CreateIndividual(ctx context.Context, ind *records.Individual) (string, error) {
	now := records.NewTimestamp(time.Now().UTC())
	if ind.CreatedAt.IsZero() {
		ind.CreatedAt = now
	}
	if ind.UpdatedAt.IsZero() {
		ind.UpdatedAt = now
	}
	doc, err := individualDocument(ind)
	if err != nil {
		return "", err
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, s.db.rebind(`INSERT INTO individuals(created_at, updated_at, doc) VALUES(?,?,?) RETURNING id`),
		ind.CreatedAt.String(), ind.UpdatedAt.String(), doc).Scan(&id); err != nil {
		return "", fmt.Errorf("insert individual: %w", err)
	}
	ind.ID = storeID(id)
	return ind.ID, nil
}

func (s *individualsStore) GetIndividual(ctx context.Context, id string) (*records.Individual, error) {
	rowID, ok := parseStoreID(id)
	if !ok {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, s.db.rebind(`SELECT id, doc FROM individuals WHERE id=?`), rowID)
	var ind records.Individual
	sid, err := scanDocument(row, &ind)
	if err != nil {
		return nil, err
	}
	ind.ID = sid
	return &ind, nil
}

func (s *individualsStore) ListIndividuals(ctx context.Context) ([]records.Individual, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, doc FROM individuals ORDER BY id LIMIT %d`, ListLimit))
	if err != nil {
		return nil, fmt.Errorf("list individuals: %w", err)
	}
	defer rows.Close()
	res := []records.Individual{}
	for rows.Next() {
		var ind records.Individual
		sid, err := scanDocument(rows, &ind)
		if err != nil {
			return nil, err
		}
		ind.ID = sid
		res = append(res, ind)
	}
	return res, rows.Err()
}

func (s *individualsStore) UpdateIndividualRisk(ctx context.Context, id string, risk map[string]any) error {
	rowID, ok := parseStoreID(id)
	if !ok {
		return ErrNotFound
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	row := tx.QueryRowContext(ctx, s.db.rebind(`SELECT id, doc FROM individuals WHERE id=?`+s.db.dialect.forUpdate()), rowID)
	var ind records.Individual
	if _, err := scanDocument(row, &ind); err != nil {
		tx.Rollback()
		return err
	}
	ind.RiskAssessment = risk
	ind.UpdatedAt = records.NewTimestamp(time.Now().UTC())
	doc, err := individualDocument(&ind)
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, s.db.rebind(`UPDATE individuals SET updated_at=?, doc=? WHERE id=?`), ind.UpdatedAt.String(), doc, rowID); err != nil {
		tx.Rollback()
		return fmt.Errorf("update individual risk: %w", err)
	}
	return tx.Commit()
}

func individualDocument(ind *records.Individual) (string, error) {
	doc := *ind
	doc.ID = ""
	return encodeDocument(doc)
}
