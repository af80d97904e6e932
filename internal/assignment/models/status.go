package models

// Request and complaint statuses share the same assignment states
// (EN_ATTENTE/AFFECTEE) but carry their own downstream enumerations, so each
// gets its own closed type. Unknown labels are a hard parse failure.

// RequestStatus enumerates the workflow states of a service request.
type RequestStatus string

const (
	RequestPending    RequestStatus = "EN_ATTENTE"
	RequestAssigned   RequestStatus = "AFFECTEE"
	RequestInProgress RequestStatus = "EN_COURS"
	RequestAccepted   RequestStatus = "ACCEPTEE"
	RequestRejected   RequestStatus = "REJETEE"
)

// ParseRequestStatus validates a status label received on the wire.
func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case RequestPending, RequestAssigned, RequestInProgress, RequestAccepted, RequestRejected:
		return RequestStatus(s), true
	}
	return "", false
}

// Closed reports whether the status is terminal.
func (s RequestStatus) Closed() bool {
	return s == RequestAccepted || s == RequestRejected
}

// ComplaintStatus enumerates the workflow states of a complaint.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "EN_ATTENTE"
	ComplaintAssigned   ComplaintStatus = "AFFECTEE"
	ComplaintInProgress ComplaintStatus = "EN_COURS"
	ComplaintResolved   ComplaintStatus = "RESOLUE"
	ComplaintRejected   ComplaintStatus = "REJETEE"
)

// ParseComplaintStatus validates a status label received on the wire.
func ParseComplaintStatus(s string) (ComplaintStatus, bool) {
	switch ComplaintStatus(s) {
	case ComplaintPending, ComplaintAssigned, ComplaintInProgress, ComplaintResolved, ComplaintRejected:
		return ComplaintStatus(s), true
	}
	return "", false
}

// Closed reports whether the status is terminal.
func (s ComplaintStatus) Closed() bool {
	return s == ComplaintResolved || s == ComplaintRejected
}
