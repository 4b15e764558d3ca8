package ai

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches AI routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/query", h.query)
	rg.POST("/ai/draft", h.draft)
	rg.GET("/ai/templates", h.templates)
}

type queryRequest struct {
	Query        string `json:"query"`
	TopK         int    `json:"topK"`
	UseDocuments *bool  `json:"useDocuments"`
}

func (h *Handler) query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	// Retrieval defaults on unless explicitly disabled.
	useDocuments := req.UseDocuments == nil || *req.UseDocuments

	result, err := h.Svc.Query(c.Request.Context(), middleware.UserIDFromContext(c), req.Query, req.TopK, useDocuments)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuery):
			respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to answer query", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, result)
}

type draftRequest struct {
	DocumentType  string            `json:"documentType"`
	Parties       []string          `json:"parties"`
	EffectiveDate string            `json:"effectiveDate"`
	Details       map[string]string `json:"details"`
}

func (h *Handler) draft(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	draft, err := h.Svc.DraftDocument(
		c.Request.Context(),
		middleware.UserIDFromContext(c),
		req.DocumentType,
		req.Parties,
		req.EffectiveDate,
		req.Details,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownTemplate):
			respond.Error(c, http.StatusBadRequest, "validation_error",
				"unknown document type; available types: "+strings.Join(h.Svc.TemplateTypes(), ", "), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to draft document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, draft)
}

func (h *Handler) templates(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"templates": h.Svc.Templates()})
}
