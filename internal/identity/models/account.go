package models

import (
	"time"

	id "aos/pkg/domain"
)

// Role labels grant capabilities. The set is closed; ParseRole rejects
// anything outside it.
type Role string

const (
	RoleUser    Role = "USER"
	RoleAgent   Role = "AGENT"
	RoleSupport Role = "SUPPORT"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole validates a role label received on the wire.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAgent, RoleSupport, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Account is a login identity independent of role. The role slice is ordered
// and mutated only through the registry's role transition; in practice it
// holds a single active role.
type Account struct {
	ID                     id.AccountID
	FirstName              string
	LastName               string
	Email                  string
	Phone                  string
	NationalID             string
	EmployeeNumber         string
	Department             string
	PasswordHash           string
	Enabled                bool
	Locked                 bool
	UsingTemporaryPassword bool
	Roles                  []Role
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// FullName renders the display name used in listings and audit events.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// HasRole reports whether the account holds the given role label.
func (a *Account) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole returns the first (active) role, or RoleUser when the slice is
// empty.
func (a *Account) PrimaryRole() Role {
	if len(a.Roles) == 0 {
		return RoleUser
	}
	return a.Roles[0]
}

// EligibleAssignee reports whether items may be assigned to this account.
// Only SUPPORT and ADMIN accounts resolve items.
func (a *Account) EligibleAssignee() bool {
	return a.HasRole(RoleSupport) || a.HasRole(RoleAdmin)
}

// Specialization is a per-role shadow record attached to an account. ADMIN and
// SUPPORT accounts additionally carry an AGENT specialization; the registry
// creates and deletes the rows in lockstep with role changes.
type Specialization struct {
	ID        int64
	AccountID id.AccountID
	Role      Role
	CreatedAt time.Time
}

// SpecializationsFor returns the specialization roles implied by holding the
// given role. ADMIN and SUPPORT imply the AGENT shadow row.
func SpecializationsFor(role Role) []Role {
	switch role {
	case RoleAdmin:
		return []Role{RoleAdmin, RoleAgent}
	case RoleSupport:
		return []Role{RoleSupport, RoleAgent}
	case RoleAgent:
		return []Role{RoleAgent}
	default:
		return nil
	}
}
