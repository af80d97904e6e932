package models

import (
	"time"

	id "aos/pkg/domain"
)

// Complaint (reclamation) shares the request's assignment lifecycle but has
// its own status enumeration and no service reference.
type Complaint struct {
	ID          id.ComplaintID
	Description string
	Comment     string
	Status      ComplaintStatus
	OwnerID     id.AccountID
	AssignedTo  *id.AccountID
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// Assignee implements policy.Item.
func (c *Complaint) Assignee() (id.AccountID, bool) {
	if c.AssignedTo == nil {
		return 0, false
	}
	return *c.AssignedTo, true
}

// Owner implements policy.Item.
func (c *Complaint) Owner() id.AccountID { return c.OwnerID }

// ApplyAssignment points the complaint at an assignee and forces the assigned
// state.
func (c *Complaint) ApplyAssignment(assignee id.AccountID, now time.Time) {
	c.AssignedTo = &assignee
	c.Status = ComplaintAssigned
	c.UpdatedAt = now
}

// ApplyUnassignment clears the assignee. Unless preserveClosed is set and the
// complaint already reached a terminal status, the status reverts to pending.
func (c *Complaint) ApplyUnassignment(now time.Time, preserveClosed bool) {
	c.AssignedTo = nil
	if !(preserveClosed && c.Status.Closed()) {
		c.Status = ComplaintPending
	}
	c.UpdatedAt = now
}
