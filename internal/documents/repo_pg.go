package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, owner_id, file_name, storage_key, mime_type, size_bytes, status, approved_by, approved_at, created_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, owner_id, file_name, storage_key, mime_type, size_bytes, status, approved_by, approved_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.FileName,
		doc.StorageKey,
		doc.MimeType,
		doc.SizeBytes,
		string(doc.Status),
		doc.ApprovedBy,
		doc.ApprovedAt,
		doc.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
ORDER BY created_at DESC, id ASC`
	return r.queryDocuments(ctx, query)
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_id = $1
ORDER BY created_at DESC, id ASC`
	return r.queryDocuments(ctx, query, ownerID)
}

func (r *PGRepo) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateStatus is guarded by the current status so concurrent reviewers
// cannot both win a transition.
func (r *PGRepo) UpdateStatus(ctx context.Context, id string, from, to Status, approvedBy *string, approvedAt *time.Time) error {
	const query = `
UPDATE documents
SET status = $1, approved_by = $2, approved_at = $3
WHERE id = $4 AND status = $5`

	res, err := r.DB.ExecContext(ctx, query, string(to), approvedBy, approvedAt, id, string(from))
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var status string
	var approvedBy sql.NullString
	var approvedAt sql.NullTime
	if err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.FileName,
		&doc.StorageKey,
		&doc.MimeType,
		&doc.SizeBytes,
		&status,
		&approvedBy,
		&approvedAt,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.Status = Status(status)
	if approvedBy.Valid {
		doc.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		doc.ApprovedAt = &approvedAt.Time
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
