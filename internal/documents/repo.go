package documents

import (
	"context"
	"time"
)

// Repo abstracts document persistence.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// List returns every document, newest first.
	List(ctx context.Context) ([]Document, error)
	// ListByOwner returns one owner's documents, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	// UpdateStatus moves a document from one status to another. The update
	// is conditional on the current status; a lost race returns
	// ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to Status, approvedBy *string, approvedAt *time.Time) error
	Delete(ctx context.Context, id string) error
}
