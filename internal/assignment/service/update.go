package service

import (
	"context"

	"aos/internal/assignment/models"
	"aos/internal/document"
	identitymodels "aos/internal/identity/models"
	"aos/internal/policy"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/audit"
	"aos/pkg/requestcontext"
)

// RequestUpdate carries the optional mutations of UpdateRequest. Nil fields
// are untouched; an empty attachment slice attaches nothing.
type RequestUpdate struct {
	Status      *string
	Comment     *string
	Attachments []Attachment
}

// UpdateRequest applies status/comment/attachment changes to a request on
// behalf of caller. Authorization: ADMIN, or SUPPORT currently assigned to the
// request. Each stored attachment becomes the request's response document,
// replacing (unlinking, not deleting) the previous one. Supplying no changes
// succeeds without touching the item or its last-modified time.
func (e *Engine) UpdateRequest(ctx context.Context, caller *identitymodels.Account, requestID id.RequestID, update RequestUpdate) (*models.Request, error) {
	ctx, span := e.tracer.Start(ctx, "assignment.UpdateRequest")
	defer span.End()

	req, err := e.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, wrapItemErr(err, "request")
	}
	if !policy.CanMutateContent(caller, req) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller may not modify this request")
	}

	hasUpdates := false
	if update.Status != nil {
		status, ok := models.ParseRequestStatus(*update.Status)
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidStatus, "invalid request status %q", *update.Status)
		}
		req.Status = status
		hasUpdates = true
	}
	if update.Comment != nil {
		req.Comment = *update.Comment
		hasUpdates = true
	}

	if len(update.Attachments) == 0 {
		if !hasUpdates {
			return req, nil
		}
		req.UpdatedAt = requestcontext.Now(ctx)
		if err := e.requests.Update(ctx, req); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store request update")
		}
		e.recordUpdate(ctx, caller.ID, "request", req.ID.String())
		return req, nil
	}

	err = e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, attachment := range update.Attachments {
			doc, err := e.documents.Store(txCtx, document.Upload{
				FileName:    attachment.FileName,
				ContentType: attachment.ContentType,
				Raw:         attachment.Raw,
				Type:        document.TypeReponse,
				RequestID:   &req.ID,
			})
			if err != nil {
				return err
			}
			req.SetResponseDocument(doc.ID)
		}
		req.UpdatedAt = requestcontext.Now(txCtx)
		if err := e.requests.Update(txCtx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store request update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.recordUpdate(ctx, caller.ID, "request", req.ID.String())
	return req, nil
}

// ComplaintUpdate carries the optional mutations of UpdateComplaint.
type ComplaintUpdate struct {
	Status  *string
	Comment *string
}

// UpdateComplaint applies status/comment changes to a complaint under the
// same authorization rule as UpdateRequest. Complaints carry no documents.
func (e *Engine) UpdateComplaint(ctx context.Context, caller *identitymodels.Account, complaintID id.ComplaintID, update ComplaintUpdate) (*models.Complaint, error) {
	ctx, span := e.tracer.Start(ctx, "assignment.UpdateComplaint")
	defer span.End()

	c, err := e.complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, wrapItemErr(err, "complaint")
	}
	if !policy.CanMutateContent(caller, c) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller may not modify this complaint")
	}

	hasUpdates := false
	if update.Status != nil {
		status, ok := models.ParseComplaintStatus(*update.Status)
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidStatus, "invalid complaint status %q", *update.Status)
		}
		c.Status = status
		hasUpdates = true
	}
	if update.Comment != nil {
		c.Comment = *update.Comment
		hasUpdates = true
	}
	if !hasUpdates {
		return c, nil
	}

	c.UpdatedAt = requestcontext.Now(ctx)
	if err := e.complaints.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store complaint update")
	}

	e.recordUpdate(ctx, caller.ID, "complaint", c.ID.String())
	return c, nil
}

func (e *Engine) recordUpdate(ctx context.Context, callerID id.AccountID, kind, itemID string) {
	e.metrics.IncrementStatusUpdates()
	e.emit(ctx, audit.EventItemUpdated, callerID, map[string]string{"kind": kind, "item_id": itemID})
	e.logger.InfoContext(ctx, "item updated", "kind", kind, "item_id", itemID)
}

// DownloadDocument retrieves a request attachment after checking the caller
// may download it.
func (e *Engine) DownloadDocument(ctx context.Context, caller *identitymodels.Account, requestID id.RequestID, docID id.DocumentID) (*document.Retrieved, error) {
	req, err := e.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, wrapItemErr(err, "request")
	}
	if !policy.CanDownloadDocument(caller, req) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller may not download this document")
	}
	return e.documents.Retrieve(ctx, docID)
}
