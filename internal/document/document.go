// Package document owns compressed binary attachment storage. It holds no
// business rules: the assignment engine decides who may attach or fetch, this
// package only compresses, persists, and reconstructs payloads.
package document

import (
	"context"
	"time"

	id "aos/pkg/domain"
)

// Type tags the logical role of a document.
type Type string

const (
	TypeJustificatif Type = "justificatif"
	TypeReponse      Type = "reponse"
	// TypePublic marks standalone published documents not tied to a request.
	TypePublic Type = "public"
)

// Document is a stored attachment. Content holds the compressed payload.
type Document struct {
	ID          id.DocumentID
	FileName    string
	ContentType string
	Content     []byte
	Type        Type
	RequestID   *id.RequestID
	// Title/Description are set for public documents only.
	Title       string
	Description string
	UploadedAt  time.Time
}

// Store persists documents. Error contract: wrapped sentinel.ErrNotFound for
// unknown IDs, wrapped infrastructure errors otherwise.
type Store interface {
	Create(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (*Document, error)
	ListByRequest(ctx context.Context, requestID id.RequestID) ([]*Document, error)
	ListPublic(ctx context.Context) ([]*Document, error)
	Delete(ctx context.Context, docID id.DocumentID) error
	DeleteByRequest(ctx context.Context, requestID id.RequestID) error
}
