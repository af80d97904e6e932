package models

import (
	"time"

	id "aos/pkg/domain"
)

// Request is a citizen service request (demande). AssignedTo is nil while the
// request sits in the pending pool. Justificatifs reference documents uploaded
// at creation; ResponseDocID points at the single resolution artifact, if any.
type Request struct {
	ID            id.RequestID
	Description   string
	Comment       string
	Status        RequestStatus
	OwnerID       id.AccountID
	ServiceID     id.ServiceID
	AssignedTo    *id.AccountID
	Justificatifs []id.DocumentID
	ResponseDocID *id.DocumentID
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}

// Assignee implements policy.Item.
func (r *Request) Assignee() (id.AccountID, bool) {
	if r.AssignedTo == nil {
		return 0, false
	}
	return *r.AssignedTo, true
}

// Owner implements policy.Item.
func (r *Request) Owner() id.AccountID { return r.OwnerID }

// ApplyAssignment points the request at an assignee and forces the assigned
// state.
func (r *Request) ApplyAssignment(assignee id.AccountID, now time.Time) {
	r.AssignedTo = &assignee
	r.Status = RequestAssigned
	r.UpdatedAt = now
}

// ApplyUnassignment clears the assignee. Unless preserveClosed is set and the
// request already reached a terminal status, the status reverts to pending.
func (r *Request) ApplyUnassignment(now time.Time, preserveClosed bool) {
	r.AssignedTo = nil
	if !(preserveClosed && r.Status.Closed()) {
		r.Status = RequestPending
	}
	r.UpdatedAt = now
}

// SetResponseDocument links a new response document, replacing any previous
// link. The replaced document itself is only unlinked, not deleted.
func (r *Request) SetResponseDocument(docID id.DocumentID) {
	r.ResponseDocID = &docID
}
