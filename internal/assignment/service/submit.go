package service

import (
	"context"

	"aos/internal/assignment/models"
	"aos/internal/document"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/requestcontext"
)

// Attachment is a raw file uploaded alongside a submission or update.
type Attachment struct {
	FileName    string
	ContentType string
	Raw         []byte
}

// SubmitRequest creates a pending request owned by the caller, storing each
// justificative attachment through the document service. The owner mutates the
// request only here; everything afterwards goes through the engine operations.
func (e *Engine) SubmitRequest(ctx context.Context, ownerID id.AccountID, serviceID id.ServiceID, description string, justificatifs []Attachment) (*models.Request, error) {
	if _, err := e.accounts.FindByID(ctx, ownerID); err != nil {
		return nil, wrapItemErr(err, "account")
	}

	now := requestcontext.Now(ctx)
	req := &models.Request{
		Description: description,
		Status:      models.RequestPending,
		OwnerID:     ownerID,
		ServiceID:   serviceID,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	err := e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := e.requests.Create(txCtx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
		}
		for _, attachment := range justificatifs {
			doc, err := e.documents.Store(txCtx, document.Upload{
				FileName:    attachment.FileName,
				ContentType: attachment.ContentType,
				Raw:         attachment.Raw,
				Type:        document.TypeJustificatif,
				RequestID:   &req.ID,
			})
			if err != nil {
				return err
			}
			req.Justificatifs = append(req.Justificatifs, doc.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "request submitted",
		"request_id", req.ID, "owner_id", ownerID, "documents", len(req.Justificatifs))
	return req, nil
}

// SubmitComplaint creates a pending complaint owned by the caller.
func (e *Engine) SubmitComplaint(ctx context.Context, ownerID id.AccountID, description string) (*models.Complaint, error) {
	if _, err := e.accounts.FindByID(ctx, ownerID); err != nil {
		return nil, wrapItemErr(err, "account")
	}

	now := requestcontext.Now(ctx)
	c := &models.Complaint{
		Description: description,
		Status:      models.ComplaintPending,
		OwnerID:     ownerID,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if err := e.complaints.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create complaint")
	}

	e.logger.InfoContext(ctx, "complaint submitted", "complaint_id", c.ID, "owner_id", ownerID)
	return c, nil
}
