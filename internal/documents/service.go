package documents

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"legalaid-backend/internal/extract"
	"legalaid-backend/internal/search"
	"legalaid-backend/internal/shared/auth"
	"legalaid-backend/internal/shared/metrics"
	"legalaid-backend/internal/shared/storage/object"
	"legalaid-backend/internal/shared/telemetry"
)

// Actor identifies who is performing a document operation.
type Actor struct {
	ID   string
	Role auth.Role
}

var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// Service contains business logic for document lifecycle.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
	Index *search.Index
}

func NewService(store object.ObjectStore, repo Repo, index *search.Index) *Service {
	return &Service{Store: store, Repo: repo, Index: index}
}

// Upload validates the file type, saves the bytes and records the document.
// The type check runs before any bytes are written so a rejected upload
// leaves nothing behind.
func (s *Service) Upload(ctx context.Context, actor Actor, fileName, declaredMime string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	mimeType := normalizeMime(declaredMime, fileName)
	if !allowedMimeTypes[mimeType] {
		return Document{}, ErrUnsupportedType
	}

	storageKey, size, _, err := s.Store.Save(ctx, actor.ID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		OwnerID:    actor.ID,
		FileName:   fileName,
		StorageKey: storageKey,
		MimeType:   mimeType,
		SizeBytes:  size,
		Status:     StatusUploaded,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	metrics.IncDocumentUploaded()
	return doc, nil
}

// List returns every document for moderators and only the caller's
// documents for everyone else.
func (s *Service) List(ctx context.Context, actor Actor) ([]Document, error) {
	if actor.Role.CanModerate() {
		return s.Repo.List(ctx)
	}
	return s.Repo.ListByOwner(ctx, actor.ID)
}

// Submit moves the owner's uploaded document into review.
func (s *Service) Submit(ctx context.Context, actor Actor, id string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if doc.OwnerID != actor.ID {
		return Document{}, ErrForbidden
	}

	if err := s.Repo.UpdateStatus(ctx, id, StatusUploaded, StatusPendingReview, nil, nil); err != nil {
		return Document{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

// Approve moves a document under review into the approved state and, best
// effort, extracts its text into the retrieval index. An extraction failure
// never rolls back the approval.
func (s *Service) Approve(ctx context.Context, actor Actor, id string) (Document, error) {
	doc, err := s.review(ctx, actor, id, StatusApproved)
	if err != nil {
		return Document{}, err
	}

	text, err := extract.Text(ctx, s.Store, doc.StorageKey, doc.MimeType)
	if err != nil {
		telemetry.Error("document index failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
	} else if s.Index != nil {
		s.Index.Add(doc.ID, text)
	}

	metrics.IncDocumentApproved()
	return doc, nil
}

// Reject moves a document under review into the rejected state. Rejected
// is terminal; the document cannot re-enter review.
func (s *Service) Reject(ctx context.Context, actor Actor, id string) (Document, error) {
	doc, err := s.review(ctx, actor, id, StatusRejected)
	if err != nil {
		return Document{}, err
	}
	metrics.IncDocumentRejected()
	return doc, nil
}

func (s *Service) review(ctx context.Context, actor Actor, id string, to Status) (Document, error) {
	if !actor.Role.CanModerate() {
		return Document{}, ErrForbidden
	}
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return Document{}, err
	}

	now := time.Now().UTC()
	reviewer := actor.ID
	if err := s.Repo.UpdateStatus(ctx, id, StatusPendingReview, to, &reviewer, &now); err != nil {
		return Document{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

// Download streams a stored document to the owner or a moderator.
func (s *Service) Download(ctx context.Context, actor Actor, id string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	if doc.OwnerID != actor.ID && !actor.Role.CanModerate() {
		return Document{}, nil, ErrForbidden
	}

	body, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, ErrArtifactMissing
	}
	return doc, body, nil
}

// Delete removes the record first, then the stored bytes best effort. A
// dangling artifact is preferable to a record pointing at nothing.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.OwnerID != actor.ID && !actor.Role.CanModerate() {
		return ErrForbidden
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		s.Index.Remove(doc.ID)
	}
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
		telemetry.Error("artifact delete failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
	}
	return nil
}

func normalizeMime(declared, fileName string) string {
	if declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			return parsed
		}
	}
	byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
		return parsed
	}
	return "application/octet-stream"
}
