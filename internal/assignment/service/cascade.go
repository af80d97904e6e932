package service

import (
	"context"
	"strconv"

	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/audit"
	"aos/pkg/requestcontext"
)

// DeleteAccountCascade removes an account together with the requests it owns
// (documents included) and returns the items assigned to it to the pending
// pool. The operation is all-or-nothing.
//
// An account that owns complaints cannot be deleted: complaints are never
// orphaned, so the call fails with Conflict before touching any row.
func (e *Engine) DeleteAccountCascade(ctx context.Context, accountID id.AccountID) error {
	ctx, span := e.tracer.Start(ctx, "assignment.DeleteAccountCascade")
	defer span.End()

	err := e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		account, err := e.accounts.FindByID(txCtx, accountID)
		if err != nil {
			return wrapItemErr(err, "account")
		}

		owned, err := e.complaints.CountByOwner(txCtx, accountID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count owned complaints")
		}
		if owned > 0 {
			return dErrors.Newf(dErrors.CodeConflict, "account owns %d complaint(s) and cannot be deleted", owned)
		}

		ownedRequests, err := e.requests.ListByOwner(txCtx, accountID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list owned requests")
		}
		for _, req := range ownedRequests {
			if err := e.documents.DeleteForRequest(txCtx, req.ID); err != nil {
				return err
			}
			if err := e.requests.Delete(txCtx, req.ID); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete owned request")
			}
		}

		now := requestcontext.Now(txCtx)
		assignedRequests, err := e.requests.ListByAssignee(txCtx, accountID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assigned requests")
		}
		for _, req := range assignedRequests {
			req.ApplyUnassignment(now, e.preserveClosed)
			if err := e.requests.Update(txCtx, req); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to unassign request")
			}
		}

		assignedComplaints, err := e.complaints.ListByAssignee(txCtx, accountID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assigned complaints")
		}
		for _, c := range assignedComplaints {
			c.ApplyUnassignment(now, e.preserveClosed)
			if err := e.complaints.Update(txCtx, c); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to unassign complaint")
			}
		}

		if err := e.accounts.Delete(txCtx, accountID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete account")
		}

		e.emit(txCtx, audit.EventAccountDeleted, accountID, map[string]string{
			"email":            account.Email,
			"deleted_requests": strconv.Itoa(len(ownedRequests)),
			"unassigned_items": strconv.Itoa(len(assignedRequests) + len(assignedComplaints)),
		})
		return nil
	})
	if err != nil {
		return err
	}

	e.metrics.IncrementCascadeDeletes()
	e.logger.InfoContext(ctx, "account cascade deleted", "account_id", accountID)
	return nil
}
