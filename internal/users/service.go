package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"legalaid-backend/internal/shared/auth"
	"legalaid-backend/internal/shared/metrics"
)

// Service contains account and session business logic.
type Service struct {
	Repo   Repo
	Tokens *auth.TokenService
}

func NewService(repo Repo, tokens *auth.TokenService) *Service {
	return &Service{Repo: repo, Tokens: tokens}
}

// Register creates an account. Lawyers start unapproved and enter the
// moderation queue; every other role is usable immediately.
func (s *Service) Register(ctx context.Context, email, password, rawRole string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidInput
	}

	role, err := auth.ParseRole(rawRole)
	if err != nil {
		return User{}, ErrInvalidInput
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return User{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	user := User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
		IsActive:       true,
		IsApproved:     role != auth.RoleLawyer,
		CreatedAt:      now,
	}
	if role == auth.RoleLawyer {
		user.ApprovalRequestedAt = &now
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// Bad email and bad password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (User, TokenPair, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return User{}, TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsActive || !auth.VerifyPassword(password, user.HashedPassword) {
		return User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return User{}, TokenPair{}, err
	}

	metrics.IncLogin()
	return user, pair, nil
}

// Refresh exchanges a refresh token for a fresh pair. Access tokens are
// rejected here so a leaked short-lived token cannot extend itself.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (User, TokenPair, error) {
	claims, err := s.Tokens.Verify(refreshToken)
	if err != nil || claims.Kind != auth.KindRefresh {
		return User{}, TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.Repo.GetByEmail(ctx, claims.Subject)
	if err != nil || !user.IsActive {
		return User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	return user, pair, nil
}

func (s *Service) issuePair(email string) (TokenPair, error) {
	access, err := s.Tokens.IssueAccess(email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.Tokens.IssueRefresh(email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return User{}, ErrInvalidInput
	}
	return s.Repo.GetByEmail(ctx, email)
}

// AssignRole changes a user's role. Promoting someone out of the lawyer
// role does not touch approval state; history stays intact.
func (s *Service) AssignRole(ctx context.Context, id, rawRole string) (User, error) {
	role, err := auth.ParseRole(rawRole)
	if err != nil {
		return User{}, ErrInvalidInput
	}
	if err := s.Repo.UpdateRole(ctx, id, role); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

// CreateAdmin provisions an admin account on behalf of a superadmin.
func (s *Service) CreateAdmin(ctx context.Context, email, password string) (User, error) {
	return s.Register(ctx, email, password, string(auth.RoleAdmin))
}

// CreateSuperadmin provisions the bootstrap superadmin account.
func (s *Service) CreateSuperadmin(ctx context.Context, email, password string) (User, error) {
	return s.Register(ctx, email, password, string(auth.RoleSuperadmin))
}

// ListPendingLawyers returns unapproved lawyers oldest request first.
func (s *Service) ListPendingLawyers(ctx context.Context) ([]User, error) {
	return s.Repo.ListPendingLawyers(ctx)
}

// ApproveLawyer marks a pending lawyer as approved. The repo update is
// conditional on the pending state, so concurrent moderators cannot both
// win.
func (s *Service) ApproveLawyer(ctx context.Context, id, approverID string) (User, error) {
	if err := s.Repo.Approve(ctx, id, approverID, time.Now().UTC()); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

// DeclineLawyer removes a lawyer account outright, approved or not. The
// reason is echoed back to the caller, not persisted.
func (s *Service) DeclineLawyer(ctx context.Context, id string) error {
	user, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != auth.RoleLawyer {
		return ErrNotLawyer
	}
	return s.Repo.Delete(ctx, id)
}

// Email comparison is exact and case sensitive; only surrounding
// whitespace is stripped.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
