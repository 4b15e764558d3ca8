package documents

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"legalaid-backend/internal/shared/auth"
	"legalaid-backend/internal/shared/server/middleware"
	"legalaid-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.POST("/documents/:id/submit", h.submit)

	moderators := middleware.RequireRoles(auth.RoleAdmin, auth.RoleSuperadmin)
	rg.POST("/documents/:id/approve", moderators, h.approve)
	rg.POST("/documents/:id/reject", moderators, h.reject)

	rg.GET("/documents/:id/download", h.download)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	actor := actorFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), actor, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "validation_error", "file type is not supported", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context(), actorFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) submit(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	doc, err := h.Svc.Submit(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		h.writeTransitionError(c, err, "failed to submit document")
		return
	}
	c.Set("statusTransition", string(StatusUploaded)+"->"+string(doc.Status))
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) approve(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	doc, err := h.Svc.Approve(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		h.writeTransitionError(c, err, "failed to approve document")
		return
	}
	c.Set("statusTransition", string(StatusPendingReview)+"->"+string(doc.Status))
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type rejectResponse struct {
	DocumentResponse
	Reason string `json:"reason"`
}

func (h *Handler) reject(c *gin.Context) {
	var req rejectRequest
	// The body is optional; a bare rejection is allowed.
	_ = c.ShouldBindJSON(&req)

	c.Set("documentId", c.Param("id"))
	doc, err := h.Svc.Reject(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		h.writeTransitionError(c, err, "failed to reject document")
		return
	}
	c.Set("statusTransition", string(StatusPendingReview)+"->"+string(doc.Status))
	respond.JSON(c, http.StatusOK, rejectResponse{DocumentResponse: toResponse(doc), Reason: req.Reason})
}

func (h *Handler) download(c *gin.Context) {
	doc, body, err := h.Svc.Download(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrArtifactMissing):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to download this document", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to download document", nil)
		}
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	c.Header("Content-Type", doc.MimeType)
	if doc.SizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

func (h *Handler) remove(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to delete this document", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) writeTransitionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to act on this document", nil)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, "conflict", "document is not in a state that allows this action", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func actorFromContext(c *gin.Context) Actor {
	identity, _ := middleware.IdentityFromContext(c)
	return Actor{ID: identity.ID, Role: identity.Role}
}
