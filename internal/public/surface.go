// Package public serves the unauthenticated transparency view: budgets and
// Approved expenses only, plus feedback intake.
package public

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/projector"
	"github.com/mmynk/clarity/internal/storage"
	"github.com/mmynk/clarity/internal/tenant"
)

// Expense is the public view of an Approved expense. It carries no audit
// trail, submitter or review comments.
type Expense struct {
	ID          string
	BudgetID    string
	Department  string
	Title       string
	Vendor      string
	Category    string
	Amount      int64
	Date        time.Time
	PaymentMode models.PaymentMode
	// ReceiptURL is set only when a receipt was stored.
	ReceiptURL string
}

// Filter narrows the expense list of a snapshot. It is applied after the
// Approved-only fetch. Zero values match everything.
type Filter struct {
	// Search matches title, vendor or department, case-insensitively.
	Search     string
	Category   string
	Department string
	From       time.Time
	To         time.Time
}

// Snapshot is everything the transparency view shows for one institution.
type Snapshot struct {
	Institution *models.Institution
	Budgets     []*models.Budget
	Expenses    []Expense
	// Totals and Departments cover every Approved expense, unfiltered.
	Totals      projector.Totals
	Departments []projector.DepartmentRow
}

// Surface builds public snapshots.
type Surface struct {
	store   storage.Store
	tenants *tenant.Directory
}

// NewSurface creates the public read surface.
func NewSurface(store storage.Store, tenants *tenant.Directory) *Surface {
	return &Surface{store: store, tenants: tenants}
}

// Snapshot returns the institution's budgets and Approved expenses.
func (s *Surface) Snapshot(ctx context.Context, institutionID string, filter Filter) (*Snapshot, error) {
	inst, err := s.tenants.ResolveInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	var (
		budgets  []*models.Budget
		approved []*models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx, inst.ID)
		return err
	})
	g.Go(func() error {
		var err error
		approved, err = s.store.ListExpenses(gctx, inst.ID, storage.ExpenseFilter{Status: models.StatusApproved})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	// Approved only, whatever the store returned.
	approved = projector.ApprovedOnly(approved)

	deptOf := make(map[string]string, len(budgets))
	for _, b := range budgets {
		deptOf[b.ID] = b.Department
	}

	expenses := make([]Expense, 0, len(approved))
	for _, e := range approved {
		pe := toPublic(e, deptOf[e.BudgetID])
		if filter.matches(pe) {
			expenses = append(expenses, pe)
		}
	}

	return &Snapshot{
		Institution: inst,
		Budgets:     budgets,
		Expenses:    expenses,
		Totals:      projector.AggregateTotals(budgets, approved),
		Departments: projector.DepartmentBreakdown(budgets, approved, models.Departments),
	}, nil
}

// SubmitFeedback records a comment on a budget. userID may be empty.
func (s *Surface) SubmitFeedback(ctx context.Context, institutionID, budgetID, comment, userID string) (*models.Feedback, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, fmt.Errorf("%w: comment is required", ledger.ErrValidation)
	}

	inst, err := s.tenants.ResolveInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		InstitutionID: inst.ID,
		BudgetID:      budgetID,
		Comment:       comment,
		UserID:        userID,
	}
	if err := s.store.CreateFeedback(ctx, fb); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: budget %s", ledger.ErrNotFound, budgetID)
		}
		return nil, err
	}

	slog.Info("Feedback received", "institution_id", inst.ID, "budget_id", budgetID)
	return fb, nil
}

// ListFeedback returns feedback left on the actor's institution.
func (s *Surface) ListFeedback(ctx context.Context, actor *models.User) ([]*models.Feedback, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer); err != nil {
		return nil, err
	}
	return s.store.ListFeedback(ctx, actor.InstitutionID)
}

func toPublic(e *models.Expense, department string) Expense {
	pe := Expense{
		ID:          e.ID,
		BudgetID:    e.BudgetID,
		Department:  department,
		Title:       e.Title,
		Vendor:      e.Vendor,
		Category:    e.Category,
		Amount:      e.Amount,
		Date:        e.Date,
		PaymentMode: e.PaymentMode,
	}
	if e.ReceiptRef != models.ReceiptPending && e.ReceiptRef != models.ReceiptPlaceholder {
		pe.ReceiptURL = e.ReceiptRef
	}
	return pe
}

func (f Filter) matches(e Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Department != "" && e.Department != f.Department {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Vendor), q) ||
			strings.Contains(strings.ToLower(e.Department), q)
	}
	return true
}
