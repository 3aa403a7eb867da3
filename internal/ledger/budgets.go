// Package ledger implements the budget ledger and the expense review
// workflow. Every operation takes the acting user and is scoped to that
// user's institution.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/money"
	"github.com/mmynk/clarity/internal/projector"
	"github.com/mmynk/clarity/internal/storage"
)

// BudgetInput is the caller-supplied part of a new Budget.
type BudgetInput struct {
	Title      string
	Department string
	Allocated  int64
}

// Dashboard is the projected view of an institution's budgets.
type Dashboard struct {
	Rows        []projector.BudgetRow
	Totals      projector.Totals
	Departments []projector.DepartmentRow
}

// Budgets owns budget records.
type Budgets struct {
	store storage.Store
}

// NewBudgets creates the budget ledger.
func NewBudgets(store storage.Store) *Budgets {
	return &Budgets{store: store}
}

// CreateBudget adds a budget to the Admin actor's institution.
func (b *Budgets) CreateBudget(ctx context.Context, actor *models.User, in BudgetInput) (*models.Budget, error) {
	if err := auth.Authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, validationError("title is required")
	case in.Department == "":
		return nil, validationError("department is required")
	case !models.IsDepartment(in.Department):
		return nil, validationError(fmt.Sprintf("unknown department %q", in.Department))
	case in.Allocated < 0:
		return nil, validationError("allocated amount cannot be negative")
	case in.Allocated > money.MaxMinor:
		return nil, validationError("allocated amount exceeds the maximum of " + money.FormatGrouped(money.MaxMinor))
	}

	budget := &models.Budget{
		InstitutionID: actor.InstitutionID,
		Title:         title,
		Department:    in.Department,
		Allocated:     in.Allocated,
	}
	if err := b.store.CreateBudget(ctx, budget); err != nil {
		return nil, err
	}

	slog.Info("Budget created",
		"budget_id", budget.ID,
		"institution_id", budget.InstitutionID,
		"department", budget.Department,
		"allocated", budget.Allocated,
	)
	return budget, nil
}

// GetBudget returns a budget of the actor's institution.
func (b *Budgets) GetBudget(ctx context.Context, actor *models.User, budgetID string) (*models.Budget, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer, models.RolePublic); err != nil {
		return nil, err
	}

	budget, err := b.store.GetBudget(ctx, actor.InstitutionID, budgetID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: budget %s", ErrNotFound, budgetID)
	}
	return budget, err
}

// ListBudgets returns every budget of the actor's institution.
func (b *Budgets) ListBudgets(ctx context.Context, actor *models.User) ([]*models.Budget, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer, models.RolePublic); err != nil {
		return nil, err
	}
	return b.store.ListBudgets(ctx, actor.InstitutionID)
}

// BudgetSummaries projects spent, remaining and utilization for every budget
// of the actor's institution.
func (b *Budgets) BudgetSummaries(ctx context.Context, actor *models.User) (*Dashboard, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer); err != nil {
		return nil, err
	}

	budgets, err := b.store.ListBudgets(ctx, actor.InstitutionID)
	if err != nil {
		return nil, err
	}
	approved, err := b.store.ListExpenses(ctx, actor.InstitutionID, storage.ExpenseFilter{Status: models.StatusApproved})
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Rows:        projector.Summaries(budgets, approved),
		Totals:      projector.AggregateTotals(budgets, approved),
		Departments: projector.DepartmentBreakdown(budgets, approved, models.Departments),
	}, nil
}
