package service

import (
	"context"
	"strconv"

	"aos/internal/assignment/models"
	identitymodels "aos/internal/identity/models"
	"aos/internal/policy"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/audit"
	"aos/pkg/requestcontext"
)

// AssignRequest points a request at a candidate account, or returns it to the
// pending pool when candidate is nil. Assignment forces AFFECTEE;
// unassignment forces EN_ATTENTE (unless the engine preserves closed
// statuses). Last writer wins on concurrent assigns.
func (e *Engine) AssignRequest(ctx context.Context, caller *identitymodels.Account, requestID id.RequestID, candidate *id.AccountID) (*models.Request, error) {
	ctx, span := e.tracer.Start(ctx, "assignment.AssignRequest")
	defer span.End()

	if !policy.CanAssign(caller) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only admins assign items")
	}

	req, err := e.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, wrapItemErr(err, "request")
	}

	now := requestcontext.Now(ctx)
	if candidate == nil {
		req.ApplyUnassignment(now, e.preserveClosed)
	} else {
		assignee, err := e.loadEligibleAssignee(ctx, *candidate)
		if err != nil {
			return nil, err
		}
		req.ApplyAssignment(assignee.ID, now)
	}

	if err := e.requests.Update(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store request assignment")
	}

	e.recordAssignment(ctx, caller.ID, "request", strconv.FormatInt(int64(requestID), 10), candidate)
	return req, nil
}

// AssignComplaint mirrors AssignRequest for complaints.
func (e *Engine) AssignComplaint(ctx context.Context, caller *identitymodels.Account, complaintID id.ComplaintID, candidate *id.AccountID) (*models.Complaint, error) {
	ctx, span := e.tracer.Start(ctx, "assignment.AssignComplaint")
	defer span.End()

	if !policy.CanAssign(caller) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only admins assign items")
	}

	c, err := e.complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, wrapItemErr(err, "complaint")
	}

	now := requestcontext.Now(ctx)
	if candidate == nil {
		c.ApplyUnassignment(now, e.preserveClosed)
	} else {
		assignee, err := e.loadEligibleAssignee(ctx, *candidate)
		if err != nil {
			return nil, err
		}
		c.ApplyAssignment(assignee.ID, now)
	}

	if err := e.complaints.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store complaint assignment")
	}

	e.recordAssignment(ctx, caller.ID, "complaint", strconv.FormatInt(int64(complaintID), 10), candidate)
	return c, nil
}

func (e *Engine) recordAssignment(ctx context.Context, callerID id.AccountID, kind, itemID string, candidate *id.AccountID) {
	attrs := map[string]string{"kind": kind, "item_id": itemID}
	if candidate == nil {
		e.metrics.IncrementUnassignments()
		e.emit(ctx, audit.EventItemUnassigned, callerID, attrs)
		e.logger.InfoContext(ctx, "item unassigned", "kind", kind, "item_id", itemID)
		return
	}
	attrs["assignee_id"] = candidate.String()
	e.metrics.IncrementAssignments()
	e.emit(ctx, audit.EventItemAssigned, callerID, attrs)
	e.logger.InfoContext(ctx, "item assigned",
		"kind", kind, "item_id", itemID, "assignee_id", *candidate)
}
