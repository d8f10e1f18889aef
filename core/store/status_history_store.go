package store

import (
	"context"
	"fmt"

	"rightswatch/core/records"
)

// StatusHistoryStore is the append-only ledger of case status changes.
type StatusHistoryStore interface {
	AppendStatus(ctx context.Context, entry records.StatusHistoryEntry) error
	ListStatusHistory(ctx context.Context, caseID string) ([]records.StatusHistoryEntry, error)
}

type statusHistoryStore struct {
	db *DB
}

func NewStatusHistoryStore(db *DB) StatusHistoryStore {
	return &statusHistoryStore{db: db}
}

func (s *statusHistoryStore) AppendStatus(ctx context.Context, entry records.StatusHistoryEntry) error {
	return appendStatusHistory(ctx, s.db, s.db.dialect, entry)
}

func appendStatusHistory(ctx context.Context, ex execer, d dialect, entry records.StatusHistoryEntry) error {
	if _, err := ex.ExecContext(ctx, d.rebind(`INSERT INTO case_status_history(case_id, status, changed_at) VALUES(?,?,?)`),
		entry.CaseID, entry.Status, entry.ChangedAt.String()); err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func (s *statusHistoryStore) ListStatusHistory(ctx context.Context, caseID string) ([]records.StatusHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.db.rebind(`
		SELECT id, case_id, status, changed_at FROM case_status_history
		WHERE case_id=? ORDER BY id`), caseID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()
	res := []records.StatusHistoryEntry{}
	for rows.Next() {
		var id int64
		var entry records.StatusHistoryEntry
		var changedAt string
		if err := rows.Scan(&id, &entry.CaseID, &entry.Status, &changedAt); err != nil {
			return nil, err
		}
		entry.ID = storeID(id)
		entry.ChangedAt = records.ParseTimestamp(changedAt)
		res = append(res, entry)
	}
	return res, rows.Err()
}
