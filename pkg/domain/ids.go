// Package domain holds the typed identifiers shared across features.
//
// Rows are keyed by integer surrogates in the relational layout, so the ID
// types wrap int64 rather than UUIDs. Keeping them distinct types prevents an
// AccountID from being passed where a RequestID is expected.
package domain

import "strconv"

type (
	// AccountID identifies a login identity.
	AccountID int64
	// RequestID identifies a service request (demande).
	RequestID int64
	// ComplaintID identifies a complaint (reclamation).
	ComplaintID int64
	// DocumentID identifies a stored document.
	DocumentID int64
	// ServiceID identifies a catalog service entity.
	ServiceID int64
)

func (id AccountID) IsZero() bool   { return id == 0 }
func (id RequestID) IsZero() bool   { return id == 0 }
func (id ComplaintID) IsZero() bool { return id == 0 }
func (id DocumentID) IsZero() bool  { return id == 0 }
func (id ServiceID) IsZero() bool   { return id == 0 }

func (id AccountID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id RequestID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id ComplaintID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id DocumentID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id ServiceID) String() string   { return strconv.FormatInt(int64(id), 10) }

// ParseAccountID parses a decimal account ID as received on the wire.
func ParseAccountID(s string) (AccountID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	return AccountID(v), err
}

// ParseRequestID parses a decimal request ID.
func ParseRequestID(s string) (RequestID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	return RequestID(v), err
}

// ParseComplaintID parses a decimal complaint ID.
func ParseComplaintID(s string) (ComplaintID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	return ComplaintID(v), err
}

// ParseDocumentID parses a decimal document ID.
func ParseDocumentID(s string) (DocumentID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	return DocumentID(v), err
}

// ParseServiceID parses a decimal service ID.
func ParseServiceID(s string) (ServiceID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	return ServiceID(v), err
}
