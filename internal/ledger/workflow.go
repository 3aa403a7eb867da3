package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/metrics"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/money"
	"github.com/mmynk/clarity/internal/projector"
	"github.com/mmynk/clarity/internal/receipts"
	"github.com/mmynk/clarity/internal/storage"
)

// Decision is a reviewer's verdict on a submitted expense.
type Decision int

const (
	DecisionUnknown Decision = iota
	DecisionApprove
	DecisionReject
)

func (d Decision) String() string {
	switch d {
	case DecisionApprove:
		return "Approve"
	case DecisionReject:
		return "Reject"
	case DecisionUnknown:
		return "Unknown"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// ParseDecision accepts "Approve" or "Reject" in any case.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved":
		return DecisionApprove, nil
	case "reject", "rejected":
		return DecisionReject, nil
	}
	return DecisionUnknown, validationError(fmt.Sprintf("unknown decision %q", s))
}

const createdComment = "Expense submitted"

// ExpenseInput is the caller-supplied part of a new Expense.
type ExpenseInput struct {
	BudgetID             string
	Title                string
	Vendor               string
	Category             string
	Amount               int64
	Date                 string // YYYY-MM-DD
	PaymentMode          models.PaymentMode
	TransactionReference string

	// ReceiptRef is an already-stored receipt URL. Ignored when Receipt is set.
	ReceiptRef string

	// Receipt, when present, is uploaded in the background.
	Receipt *receipts.File
}

// DecideInput is a review decision.
type DecideInput struct {
	ExpenseID     string
	Decision      Decision
	Comments      string
	ForceOverride bool
}

// ReceiptQueue accepts background receipt uploads.
type ReceiptQueue interface {
	Enqueue(job receipts.Job)
}

// Workflow runs the expense review state machine:
// Submitted -> Approved | Rejected, with terminal states final.
type Workflow struct {
	store           storage.Store
	receipts        ReceiptQueue
	metrics         *metrics.Metrics
	allowSelfReview bool
	now             func() time.Time
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithReceipts enables receipt uploads.
func WithReceipts(q ReceiptQueue) Option {
	return func(w *Workflow) { w.receipts = q }
}

// WithMetrics records decision outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

// WithSelfReview controls whether the submitter of an expense may decide it.
func WithSelfReview(allow bool) Option {
	return func(w *Workflow) { w.allowSelfReview = allow }
}

// WithClock overrides time.Now for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// NewWorkflow creates the workflow engine. Self review is allowed unless
// disabled with WithSelfReview(false).
func NewWorkflow(store storage.Store, opts ...Option) *Workflow {
	w := &Workflow{
		store:           store,
		allowSelfReview: true,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CreateExpense submits a new expense against a budget of the Admin actor's
// institution.
func (w *Workflow) CreateExpense(ctx context.Context, actor *models.User, in ExpenseInput) (*models.Expense, error) {
	if err := auth.Authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	date, err := validateExpense(in)
	if err != nil {
		return nil, err
	}

	if _, err := w.store.GetBudget(ctx, actor.InstitutionID, in.BudgetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: budget %s", ErrCrossTenantReference, in.BudgetID)
		}
		return nil, err
	}

	receiptRef := strings.TrimSpace(in.ReceiptRef)
	if in.Receipt != nil {
		receiptRef = models.ReceiptPending
	}

	now := w.now()
	exp := &models.Expense{
		InstitutionID:        actor.InstitutionID,
		BudgetID:             in.BudgetID,
		Title:                strings.TrimSpace(in.Title),
		Vendor:               strings.TrimSpace(in.Vendor),
		Category:             in.Category,
		Amount:               in.Amount,
		Date:                 date,
		PaymentMode:          in.PaymentMode,
		TransactionReference: strings.TrimSpace(in.TransactionReference),
		ReceiptRef:           receiptRef,
		Status:               models.StatusSubmitted,
		SubmittedBy:          actor.ID,
		CreatedAt:            now.Unix(),
		AuditTrail: []models.AuditEntry{{
			Timestamp: now,
			UserID:    actor.ID,
			Action:    models.ActionCreated,
			Comments:  createdComment,
		}},
	}

	if err := w.store.CreateExpense(ctx, exp); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: budget %s", ErrCrossTenantReference, in.BudgetID)
		}
		return nil, err
	}

	slog.Info("Expense submitted",
		"expense_id", exp.ID,
		"budget_id", exp.BudgetID,
		"institution_id", exp.InstitutionID,
		"amount", exp.Amount,
		"user_id", actor.ID,
	)

	if in.Receipt != nil {
		if w.receipts == nil {
			// No uploader configured: resolve straight to the placeholder.
			w.resolveWithoutUploader(ctx, exp)
		} else {
			w.receipts.Enqueue(receipts.Job{
				InstitutionID: exp.InstitutionID,
				ExpenseID:     exp.ID,
				SubmittedBy:   actor.ID,
				File:          *in.Receipt,
			})
		}
	}

	return exp, nil
}

func (w *Workflow) resolveWithoutUploader(ctx context.Context, exp *models.Expense) {
	slog.Error("Receipt received but no receipt storage is configured", "expense_id", exp.ID)
	entry := models.AuditEntry{
		Timestamp: w.now(),
		UserID:    exp.SubmittedBy,
		Action:    models.ActionUpdated,
		Comments:  "Receipt storage unavailable; placeholder attached",
	}
	if err := w.store.SetReceiptRef(ctx, exp.InstitutionID, exp.ID, models.ReceiptPlaceholder, entry); err != nil {
		slog.Error("Failed to record receipt placeholder", "expense_id", exp.ID, "error", err)
		return
	}
	exp.ReceiptRef = models.ReceiptPlaceholder
}

// DecideExpense approves or rejects a Submitted expense. An approval that
// would overrun the budget returns *OverrunWarning and changes nothing
// unless in.ForceOverride is set.
func (w *Workflow) DecideExpense(ctx context.Context, actor *models.User, in DecideInput) (*models.Expense, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer); err != nil {
		return nil, err
	}
	switch in.Decision {
	case DecisionApprove, DecisionReject:
	case DecisionUnknown:
		return nil, validationError("decision must be Approve or Reject")
	default:
		return nil, validationError(fmt.Sprintf("unknown decision %v", in.Decision))
	}

	var outcome string
	decide := func(exp *models.Expense, budget *models.Budget, budgetExpenses []*models.Expense) (*storage.Transition, error) {
		if exp.Status != models.StatusSubmitted {
			return nil, fmt.Errorf("%w: expense %s is %s", ErrInvalidTransition, exp.ID, exp.Status)
		}
		if !w.allowSelfReview && exp.SubmittedBy == actor.ID {
			return nil, fmt.Errorf("%w: cannot review an expense you submitted", auth.ErrDenied)
		}

		comments := strings.TrimSpace(in.Comments)
		entry := models.AuditEntry{Timestamp: w.now(), UserID: actor.ID, Comments: comments}

		if in.Decision == DecisionReject {
			if comments == "" {
				return nil, validationError("Comment required for rejection")
			}
			entry.Action = models.ActionRejected
			outcome = metrics.OutcomeRejected
			return &storage.Transition{To: models.StatusRejected, Entry: entry}, nil
		}

		entry.Action = models.ActionApproved
		outcome = metrics.OutcomeApproved

		remaining := projector.RemainingFor(budget, budgetExpenses)
		if exp.Amount > remaining {
			shortfall := exp.Amount - remaining
			if !in.ForceOverride {
				return nil, &OverrunWarning{ExpenseID: exp.ID, Remaining: remaining, Shortfall: shortfall}
			}
			entry.Comments = overrideComment(comments, shortfall)
			outcome = metrics.OutcomeForcedApproved
		}
		return &storage.Transition{To: models.StatusApproved, Entry: entry}, nil
	}

	exp, err := w.store.DecideExpense(ctx, actor.InstitutionID, in.ExpenseID, decide)
	if err != nil {
		var warning *OverrunWarning
		switch {
		case errors.As(err, &warning):
			w.metrics.Decision(metrics.OutcomeOverrunWarning)
			slog.Info("Approval would overrun budget",
				"expense_id", in.ExpenseID,
				"remaining", warning.Remaining,
				"shortfall", warning.Shortfall,
				"user_id", actor.ID,
			)
			return nil, warning
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%w: expense %s", ErrNotFound, in.ExpenseID)
		case errors.Is(err, storage.ErrConflict):
			w.metrics.Decision(metrics.OutcomeConflict)
			return nil, fmt.Errorf("%w: expense %s was decided concurrently", ErrInvalidTransition, in.ExpenseID)
		}
		return nil, err
	}

	w.metrics.Decision(outcome)
	slog.Info("Expense decided",
		"expense_id", exp.ID,
		"status", exp.Status,
		"force_override", in.ForceOverride,
		"user_id", actor.ID,
	)
	return exp, nil
}

// GetExpense returns an expense of the actor's institution with its audit
// trail.
func (w *Workflow) GetExpense(ctx context.Context, actor *models.User, expenseID string) (*models.Expense, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer); err != nil {
		return nil, err
	}

	exp, err := w.store.GetExpense(ctx, actor.InstitutionID, expenseID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
	}
	return exp, err
}

// ListExpenses returns the actor's institution's expenses, newest first.
func (w *Workflow) ListExpenses(ctx context.Context, actor *models.User, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError(fmt.Sprintf("unknown status %q", filter.Status))
	}
	return w.store.ListExpenses(ctx, actor.InstitutionID, filter)
}

func overrideComment(comments string, shortfall int64) string {
	note := fmt.Sprintf("Budget override: exceeds remaining by %s", money.Format(shortfall))
	if comments == "" {
		return note
	}
	return comments + " (" + note + ")"
}

// validateReceiptRef accepts only object URLs. The pending and placeholder
// markers are set by the upload pipeline, never by callers.
func validateReceiptRef(ref string) error {
	if ref == models.ReceiptPending || ref == models.ReceiptPlaceholder {
		return validationError("receipt reference is reserved")
	}

	u, err := url.Parse(ref)
	if err != nil {
		return validationError("receipt reference is not a valid URL")
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return validationError("receipt reference has no host")
		}
	case "file":
		if u.Path == "" {
			return validationError("receipt reference has no path")
		}
	default:
		return validationError(fmt.Sprintf("unsupported receipt reference scheme %q", u.Scheme))
	}
	return nil
}

func validateExpense(in ExpenseInput) (time.Time, error) {
	switch {
	case strings.TrimSpace(in.BudgetID) == "":
		return time.Time{}, validationError("budget is required")
	case strings.TrimSpace(in.Title) == "":
		return time.Time{}, validationError("title is required")
	case strings.TrimSpace(in.Vendor) == "":
		return time.Time{}, validationError("vendor is required")
	case in.Amount <= 0:
		return time.Time{}, validationError("amount must be positive")
	case in.Amount > money.MaxMinor:
		return time.Time{}, validationError("amount exceeds the maximum of " + money.FormatGrouped(money.MaxMinor))
	case !models.IsExpenseCategory(in.Category):
		return time.Time{}, validationError(fmt.Sprintf("unknown category %q", in.Category))
	case !in.PaymentMode.Valid():
		return time.Time{}, validationError(fmt.Sprintf("unknown payment mode %q", in.PaymentMode))
	case in.PaymentMode.NeedsReference() && strings.TrimSpace(in.TransactionReference) == "":
		return time.Time{}, validationError(fmt.Sprintf("transaction reference required for %s", in.PaymentMode))
	}

	if ref := strings.TrimSpace(in.ReceiptRef); ref != "" && in.Receipt == nil {
		if err := validateReceiptRef(ref); err != nil {
			return time.Time{}, err
		}
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return time.Time{}, validationError(fmt.Sprintf("date must be YYYY-MM-DD, got %q", in.Date))
	}
	return date, nil
}
