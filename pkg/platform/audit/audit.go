// Package audit records security-relevant actions taken through the identity
// and assignment services. Events are append-only; the publisher decouples
// emission from storage so a broker-backed store can replace the in-memory one
// without touching service code.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "aos/pkg/domain"
)

// EventType names the auditable actions.
type EventType string

const (
	EventAccountRegistered EventType = "account.registered"
	EventAccountUpdated    EventType = "account.updated"
	EventAccountDeleted    EventType = "account.deleted"
	EventRoleTransitioned  EventType = "account.role_transitioned"
	EventPasswordReset     EventType = "account.password_reset"
	EventAccountToggled    EventType = "account.toggled"
	EventItemAssigned      EventType = "item.assigned"
	EventItemUnassigned    EventType = "item.unassigned"
	EventItemUpdated       EventType = "item.updated"
	EventLoginSucceeded    EventType = "auth.login_succeeded"
	EventLogout            EventType = "auth.logout"
)

// Event is one audit trail entry. Attrs hold event-specific key/value detail.
type Event struct {
	ID        uuid.UUID
	AccountID id.AccountID
	Action    EventType
	Attrs     map[string]string
	At        time.Time
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]Event, error)
}
