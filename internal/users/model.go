package users

import (
	"time"

	"legalaid-backend/internal/shared/auth"
)

// User is a registered account. Approval fields are only meaningful for
// lawyer accounts; every other role is approved at creation.
type User struct {
	ID                  string
	Email               string
	HashedPassword      string
	Role                auth.Role
	IsActive            bool
	IsApproved          bool
	ApprovedBy          *string
	ApprovedAt          *time.Time
	ApprovalRequestedAt *time.Time
	CreatedAt           time.Time
}

// TokenPair is the access/refresh token pair returned on login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}
