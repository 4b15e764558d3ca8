package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"legalaid-backend/internal/shared/auth"
)

// MemoryRepo is an in-memory implementation of Repo. It enforces the same
// email uniqueness and conditional-update semantics as the Postgres repo by
// holding its mutex across each read-modify-write.
type MemoryRepo struct {
	mu      sync.RWMutex
	users   map[string]User
	byEmail map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:   make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrEmailTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[id], nil
}

func (r *MemoryRepo) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Role = role
	r.users[id] = user
	return nil
}

func (r *MemoryRepo) Approve(ctx context.Context, id, approverID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if user.Role != auth.RoleLawyer {
		return ErrNotLawyer
	}
	if user.IsApproved {
		return ErrAlreadyApproved
	}
	user.IsApproved = true
	user.ApprovedBy = &approverID
	user.ApprovedAt = &at
	r.users[id] = user
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	delete(r.byEmail, user.Email)
	return nil
}

func (r *MemoryRepo) ListPendingLawyers(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0)
	for _, user := range r.users {
		if user.Role == auth.RoleLawyer && !user.IsApproved {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].ApprovalRequestedAt, out[j].ApprovalRequestedAt
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.Before(*tj)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
