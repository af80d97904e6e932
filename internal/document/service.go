package document

import (
	"context"
	"errors"
	"log/slog"

	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/sentinel"
	"aos/pkg/requestcontext"
)

// Service is the document store facade: compress on the way in, decompress on
// the way out, addressed by ID.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Upload carries a raw attachment into the store.
type Upload struct {
	FileName    string
	ContentType string
	Raw         []byte
	Type        Type
	RequestID   *id.RequestID
	// Title/Description apply to public documents.
	Title       string
	Description string
}

// Store compresses and persists a payload, returning the new document's
// metadata (with compressed content, not the raw bytes).
func (s *Service) Store(ctx context.Context, upload Upload) (*Document, error) {
	content, err := compress(upload.Raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIOFailure, "failed to compress document")
	}
	doc := &Document{
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Content:     content,
		Type:        upload.Type,
		RequestID:   upload.RequestID,
		Title:       upload.Title,
		Description: upload.Description,
		UploadedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIOFailure, "failed to persist document")
	}
	s.logger.InfoContext(ctx, "document stored",
		"document_id", doc.ID, "file_name", doc.FileName, "type", string(doc.Type))
	return doc, nil
}

// Retrieved is a decompressed document ready for download.
type Retrieved struct {
	Raw         []byte
	FileName    string
	ContentType string
}

// Retrieve reconstructs the exact original bytes of a stored document.
func (s *Service) Retrieve(ctx context.Context, docID id.DocumentID) (*Retrieved, error) {
	doc, err := s.store.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeIOFailure, "document lookup failed")
	}
	raw, err := decompress(doc.Content)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIOFailure, "failed to decompress document")
	}
	return &Retrieved{Raw: raw, FileName: doc.FileName, ContentType: doc.ContentType}, nil
}

// Describe returns document metadata without decompressing the payload.
func (s *Service) Describe(ctx context.Context, docID id.DocumentID) (*Document, error) {
	doc, err := s.store.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeIOFailure, "document lookup failed")
	}
	return doc, nil
}

// DeleteForRequest removes every document linked to a request. Used by the
// account cascade when owned requests are deleted.
func (s *Service) DeleteForRequest(ctx context.Context, requestID id.RequestID) error {
	if err := s.store.DeleteByRequest(ctx, requestID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOFailure, "failed to delete request documents")
	}
	return nil
}

// ListPublic returns published standalone documents, newest first.
func (s *Service) ListPublic(ctx context.Context) ([]*Document, error) {
	docs, err := s.store.ListPublic(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIOFailure, "failed to list public documents")
	}
	return docs, nil
}
