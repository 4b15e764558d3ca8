package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"legalaid-backend/internal/shared/auth"
)

const uniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, hashed_password, role, is_active, is_approved, approved_by, approved_at, approval_requested_at, created_at`

// Create inserts a new account. The unique index on email turns duplicate
// registration races into ErrEmailTaken.
func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, hashed_password, role, is_active, is_approved, approved_by, approved_at, approval_requested_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.HashedPassword,
		string(user.Role),
		user.IsActive,
		user.IsApproved,
		user.ApprovedBy,
		user.ApprovedAt,
		user.ApprovalRequestedAt,
		user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	const query = `
UPDATE users
SET role = $1
WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, string(role), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Approve is guarded by the current approval state so a double-approval
// race cannot set approved_by twice.
func (r *PGRepo) Approve(ctx context.Context, id, approverID string, at time.Time) error {
	const query = `
UPDATE users
SET is_approved = TRUE, approved_by = $1, approved_at = $2
WHERE id = $3 AND role = $4 AND is_approved = FALSE`
	res, err := r.DB.ExecContext(ctx, query, approverID, at, id, string(auth.RoleLawyer))
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected > 0 {
		return nil
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != auth.RoleLawyer {
		return ErrNotLawyer
	}
	return ErrAlreadyApproved
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
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

func (r *PGRepo) ListPendingLawyers(ctx context.Context) ([]User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE role = $1 AND is_approved = FALSE
ORDER BY approval_requested_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, string(auth.RoleLawyer))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var role string
	var approvedBy sql.NullString
	var approvedAt sql.NullTime
	var requestedAt sql.NullTime
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&role,
		&user.IsActive,
		&user.IsApproved,
		&approvedBy,
		&approvedAt,
		&requestedAt,
		&user.CreatedAt,
	); err != nil {
		return User{}, err
	}
	user.Role = auth.Role(role)
	if approvedBy.Valid {
		user.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		user.ApprovedAt = &approvedAt.Time
	}
	if requestedAt.Valid {
		user.ApprovalRequestedAt = &requestedAt.Time
	}
	return user, nil
}

var _ Repo = (*PGRepo)(nil)
