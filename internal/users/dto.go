package users

import "time"

// UserResponse is the outward-facing representation of an account.
// The password hash never leaves the package.
type UserResponse struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	IsActive            bool       `json:"isActive"`
	IsApproved          bool       `json:"isApproved"`
	ApprovedBy          *string    `json:"approvedBy,omitempty"`
	ApprovedAt          *time.Time `json:"approvedAt,omitempty"`
	ApprovalRequestedAt *time.Time `json:"approvalRequestedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func toResponse(user User) UserResponse {
	return UserResponse{
		ID:                  user.ID,
		Email:               user.Email,
		Role:                string(user.Role),
		IsActive:            user.IsActive,
		IsApproved:          user.IsApproved,
		ApprovedBy:          user.ApprovedBy,
		ApprovedAt:          user.ApprovedAt,
		ApprovalRequestedAt: user.ApprovalRequestedAt,
		CreatedAt:           user.CreatedAt,
	}
}
