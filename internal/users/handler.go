package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"legalaid-backend/internal/shared/auth"
	"legalaid-backend/internal/shared/server/middleware"
	"legalaid-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches the routes reachable without a token.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/refresh", h.refresh)
}

// RegisterRoutes attaches the authenticated account routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/users/me", h.me)
	rg.POST("/auth/users/:id/role", middleware.RequireRoles(auth.RoleSuperadmin), h.assignRole)
	rg.POST("/auth/admin/users", middleware.RequireRoles(auth.RoleSuperadmin), h.createAdmin)

	moderators := middleware.RequireRoles(auth.RoleAdmin, auth.RoleSuperadmin)
	rg.GET("/auth/lawyers/pending", moderators, h.pendingLawyers)
	rg.POST("/auth/lawyers/:id/approve", moderators, h.approveLawyer)
	rg.POST("/auth/lawyers/:id/decline", moderators, h.declineLawyer)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "email is already registered", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "email, password and role must be valid", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User   UserResponse `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid email or password", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, sessionResponse{User: toResponse(user), Tokens: pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "refreshToken is required", nil)
		return
	}

	user, pair, err := h.Svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to refresh session", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, sessionResponse{User: toResponse(user), Tokens: pair})
}

func (h *Handler) me(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	user, err := h.Svc.GetByID(c.Request.Context(), identity.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch account", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(user))
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) assignRole(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.AssignRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "role must be one of superadmin, admin, lawyer, user", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to assign role", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(user))
}

type createAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) createAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.CreateAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "email is already registered", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "email and password must be valid", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create admin", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(user))
}

func (h *Handler) pendingLawyers(c *gin.Context) {
	pending, err := h.Svc.ListPendingLawyers(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list pending lawyers", nil)
		return
	}

	resp := make([]UserResponse, 0, len(pending))
	for _, user := range pending {
		resp = append(resp, toResponse(user))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) approveLawyer(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	user, err := h.Svc.ApproveLawyer(c.Request.Context(), c.Param("id"), identity.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		case errors.Is(err, ErrNotLawyer):
			respond.Error(c, http.StatusBadRequest, "validation_error", "user is not a lawyer", nil)
		case errors.Is(err, ErrAlreadyApproved):
			respond.Error(c, http.StatusConflict, "conflict", "lawyer is already approved", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to approve lawyer", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(user))
}

type declineRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) declineLawyer(c *gin.Context) {
	var req declineRequest
	// The body is optional; a bare decline is allowed.
	_ = c.ShouldBindJSON(&req)

	err := h.Svc.DeclineLawyer(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		case errors.Is(err, ErrNotLawyer):
			respond.Error(c, http.StatusBadRequest, "validation_error", "user is not a lawyer", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to decline lawyer", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"declined": true, "reason": req.Reason})
}
