package documents

import "time"

// Status is the review state of a document.
type Status string

const (
	StatusUploaded      Status = "uploaded"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// Document is a stored file owned by a user, moving through the review
// lifecycle uploaded -> pending_review -> approved|rejected.
type Document struct {
	ID         string
	OwnerID    string
	FileName   string
	StorageKey string
	MimeType   string
	SizeBytes  int64
	Status     Status
	ApprovedBy *string
	ApprovedAt *time.Time
	CreatedAt  time.Time
}
