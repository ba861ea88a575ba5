package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/internal/server/storage"
)

const documentColumns = `key, type, value, version, deleted, updated_by, updated_at`

// GetDocument retrieves a document by key, tombstones included
func (s *Storage) GetDocument(ctx context.Context, key string) (*models.StoredDocument, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE key = ?`, key)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// SaveDocument creates or replaces a document
func (s *Storage) SaveDocument(ctx context.Context, doc *models.StoredDocument) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			type = excluded.type,
			value = excluded.value,
			version = excluded.version,
			deleted = excluded.deleted,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`

	var value []byte
	if !doc.Deleted {
		value = doc.Value
	}

	_, err := s.db.ExecContext(ctx, query,
		doc.Key,
		doc.Type,
		value,
		doc.Version,
		boolToInt(doc.Deleted),
		doc.UpdatedBy,
		doc.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetClientView retrieves what clientID knows about key
func (s *Storage) GetClientView(ctx context.Context, clientID, key string) (*models.ClientView, error) {
	query := `
		SELECT client_id, key, known_version, seen_version
		FROM client_docs
		WHERE client_id = ? AND key = ?
	`

	view := &models.ClientView{}
	err := s.db.QueryRowContext(ctx, query, clientID, key).Scan(
		&view.ClientID,
		&view.Key,
		&view.KnownVersion,
		&view.SeenVersion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrViewNotFound
		}
		return nil, fmt.Errorf("failed to get client view: %w", err)
	}
	return view, nil
}

// SaveClientView creates or replaces a client view
func (s *Storage) SaveClientView(ctx context.Context, view *models.ClientView) error {
	query := `
		INSERT INTO client_docs (client_id, key, known_version, seen_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client_id, key) DO UPDATE SET
			known_version = excluded.known_version,
			seen_version = excluded.seen_version
	`

	_, err := s.db.ExecContext(ctx, query, view.ClientID, view.Key, view.KnownVersion, view.SeenVersion)
	if err != nil {
		return fmt.Errorf("failed to save client view: %w", err)
	}
	return nil
}

// ListPending returns documents newer than what clientID has seen
func (s *Storage) ListPending(ctx context.Context, clientID string) ([]*models.StoredDocument, error) {
	query := `
		SELECT d.key, d.type, d.value, d.version, d.deleted, d.updated_by, d.updated_at
		FROM documents d
		LEFT JOIN client_docs c ON c.key = d.key AND c.client_id = ?
		WHERE d.version > COALESCE(c.seen_version, 0)
		ORDER BY d.key
	`

	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.StoredDocument, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return docs, nil
}

// GetOperation retrieves an applied operation by id
func (s *Storage) GetOperation(ctx context.Context, id string) (*models.AppliedOperation, error) {
	query := `
		SELECT id, client_id, key, type, version, applied_at
		FROM applied_ops
		WHERE id = ?
	`

	op := &models.AppliedOperation{}
	var appliedAt int64
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&op.ID,
		&op.ClientID,
		&op.Key,
		&op.Type,
		&op.Version,
		&appliedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrOperationNotFound
		}
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}
	op.AppliedAt = time.UnixMilli(appliedAt).UTC()
	return op, nil
}

// RecordOperation stores an applied operation
func (s *Storage) RecordOperation(ctx context.Context, op *models.AppliedOperation) error {
	query := `
		INSERT INTO applied_ops (id, client_id, key, type, version, applied_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		op.ID,
		op.ClientID,
		op.Key,
		string(op.Type),
		op.Version,
		op.AppliedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.StoredDocument, error) {
	doc := &models.StoredDocument{}
	var (
		value     []byte
		deleted   int
		updatedAt int64
	)

	err := row.Scan(
		&doc.Key,
		&doc.Type,
		&value,
		&doc.Version,
		&deleted,
		&doc.UpdatedBy,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Deleted = deleted == 1
	if !doc.Deleted {
		doc.Value = value
	}
	doc.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return doc, nil
}
