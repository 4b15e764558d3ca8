package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string     `json:"documentId"`
	OwnerID    string     `json:"ownerId"`
	FileName   string     `json:"fileName"`
	MimeType   string     `json:"mimeType"`
	SizeBytes  int64      `json:"sizeBytes"`
	Status     string     `json:"status"`
	ApprovedBy *string    `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	UploadedAt time.Time  `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		Status:     string(doc.Status),
		ApprovedBy: doc.ApprovedBy,
		ApprovedAt: doc.ApprovedAt,
		UploadedAt: doc.CreatedAt,
	}
}
