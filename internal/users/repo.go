package users

import (
	"context"
	"time"

	"legalaid-backend/internal/shared/auth"
)

// Repo defines persistence operations for accounts. Mutations are single
// atomic statements: Create surfaces duplicate-email races as ErrEmailTaken
// and Approve is a conditional update that loses double-approval races
// cleanly.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateRole(ctx context.Context, id string, role auth.Role) error
	// Approve marks an unapproved lawyer approved. It returns
	// ErrAlreadyApproved when the guarded update matches no row for a
	// lawyer that exists.
	Approve(ctx context.Context, id, approverID string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// ListPendingLawyers returns unapproved lawyers ordered by
	// approval_requested_at ascending (oldest request first).
	ListPendingLawyers(ctx context.Context) ([]User, error)
}
