package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	assignmentmetrics "aos/internal/assignment/metrics"
	"aos/internal/assignment/models"
	complaintstore "aos/internal/assignment/store/complaint"
	requeststore "aos/internal/assignment/store/request"
	"aos/internal/document"
	identitymodels "aos/internal/identity/models"
	accountstore "aos/internal/identity/store/account"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/audit"
	"aos/pkg/platform/sentinel"
	"aos/pkg/platform/tx"
)

// Engine drives the assignment state machine for requests and complaints. It
// consults the policy package before mutating, delegates attachment
// persistence to the document service, and never bypasses the stores.
type Engine struct {
	requests   requeststore.Store
	complaints complaintstore.Store
	accounts   accountstore.Store
	documents  *document.Service
	tx         tx.Runner
	logger     *slog.Logger
	metrics    *assignmentmetrics.Metrics
	auditor    *audit.Publisher
	tracer     trace.Tracer

	// preserveClosed keeps terminal statuses (ACCEPTEE, REJETEE, ...) intact
	// when an item is unassigned instead of resetting them to EN_ATTENTE.
	// The default mirrors the historical behavior: always reset.
	preserveClosed bool
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

func WithMetrics(m *assignmentmetrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(e *Engine) { e.auditor = p }
}

func WithTxRunner(runner tx.Runner) Option {
	return func(e *Engine) { e.tx = runner }
}

// PreserveClosedStatusOnUnassign keeps terminal statuses when unassigning.
func PreserveClosedStatusOnUnassign() Option {
	return func(e *Engine) { e.preserveClosed = true }
}

// NewEngine builds the assignment engine.
func NewEngine(
	requests requeststore.Store,
	complaints complaintstore.Store,
	accounts accountstore.Store,
	documents *document.Service,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		requests:   requests,
		complaints: complaints,
		accounts:   accounts,
		documents:  documents,
		tx:         &tx.MemoryRunner{},
		logger:     logger,
		tracer:     otel.Tracer("aos/assignment"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetRequest fetches a request by ID.
func (e *Engine) GetRequest(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	req, err := e.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, wrapItemErr(err, "request")
	}
	return req, nil
}

// ListRequests returns all requests ordered by ID.
func (e *Engine) ListRequests(ctx context.Context) ([]*models.Request, error) {
	requests, err := e.requests.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return requests, nil
}

// ListRequestsAssignedTo returns the requests currently assigned to an
// account.
func (e *Engine) ListRequestsAssignedTo(ctx context.Context, accountID id.AccountID) ([]*models.Request, error) {
	if _, err := e.accounts.FindByID(ctx, accountID); err != nil {
		return nil, wrapItemErr(err, "account")
	}
	requests, err := e.requests.ListByAssignee(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assigned requests")
	}
	return requests, nil
}

// ListRequestsOwnedBy returns the requests an account submitted.
func (e *Engine) ListRequestsOwnedBy(ctx context.Context, accountID id.AccountID) ([]*models.Request, error) {
	requests, err := e.requests.ListByOwner(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list owned requests")
	}
	return requests, nil
}

// GetComplaint fetches a complaint by ID.
func (e *Engine) GetComplaint(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	c, err := e.complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, wrapItemErr(err, "complaint")
	}
	return c, nil
}

// ListComplaints returns all complaints ordered by ID.
func (e *Engine) ListComplaints(ctx context.Context) ([]*models.Complaint, error) {
	complaints, err := e.complaints.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list complaints")
	}
	return complaints, nil
}

// ListComplaintsAssignedTo returns the complaints currently assigned to an
// account.
func (e *Engine) ListComplaintsAssignedTo(ctx context.Context, accountID id.AccountID) ([]*models.Complaint, error) {
	if _, err := e.accounts.FindByID(ctx, accountID); err != nil {
		return nil, wrapItemErr(err, "account")
	}
	complaints, err := e.complaints.ListByAssignee(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assigned complaints")
	}
	return complaints, nil
}

// loadEligibleAssignee resolves a candidate account and checks assignment
// eligibility (SUPPORT or ADMIN).
func (e *Engine) loadEligibleAssignee(ctx context.Context, accountID id.AccountID) (*identitymodels.Account, error) {
	candidate, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "candidate account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "candidate lookup failed")
	}
	if !candidate.EligibleAssignee() {
		return nil, dErrors.New(dErrors.CodeRoleNotEligible, "assignee must hold the SUPPORT or ADMIN role")
	}
	return candidate, nil
}

func (e *Engine) emit(ctx context.Context, action audit.EventType, accountID id.AccountID, attrs map[string]string) {
	if e.auditor == nil {
		return
	}
	e.auditor.Emit(ctx, audit.Event{AccountID: accountID, Action: action, Attrs: attrs})
}

func wrapItemErr(err error, kind string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, kind+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, kind+" lookup failed")
}
