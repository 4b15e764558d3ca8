package documents

import "errors"

var (
	ErrNotFound          = errors.New("document not found")
	ErrForbidden         = errors.New("not allowed to act on this document")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrInvalidInput      = errors.New("invalid input")
	ErrArtifactMissing   = errors.New("stored file is missing")
)
