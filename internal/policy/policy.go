// Package policy holds the pure capability predicates the engines consult
// before mutating state. No stores, no hidden state: everything a decision
// needs is passed in, which keeps the predicates directly unit-testable.
package policy

import (
	"aos/internal/identity/models"
	id "aos/pkg/domain"
)

// Item is the view of a request or complaint the policy needs.
type Item interface {
	// Assignee returns the current assignee and whether one is set.
	Assignee() (id.AccountID, bool)
	// Owner returns the account that created the item.
	Owner() id.AccountID
}

// CanAssign reports whether the caller may assign or unassign items.
// Only ADMIN accounts dispatch work.
func CanAssign(caller *models.Account) bool {
	return caller != nil && caller.HasRole(models.RoleAdmin)
}

// CanMutateContent reports whether the caller may change an item's status,
// comment, or response documents: ADMIN always, SUPPORT only on items
// currently assigned to them.
func CanMutateContent(caller *models.Account, item Item) bool {
	if caller == nil {
		return false
	}
	if caller.HasRole(models.RoleAdmin) {
		return true
	}
	if !caller.HasRole(models.RoleSupport) {
		return false
	}
	assignee, ok := item.Assignee()
	return ok && assignee == caller.ID
}

// CanDownloadDocument reports whether the caller may retrieve an item's
// documents. Any authenticated caller qualifies; finer-grained download
// control is a boundary-layer decision.
func CanDownloadDocument(caller *models.Account, _ Item) bool {
	return caller != nil
}
