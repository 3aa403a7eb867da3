package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/pkg/api"
)

// BudgetService implements the Connect BudgetService.
type BudgetService struct {
	budgets *ledger.Budgets
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgets *ledger.Budgets) *BudgetService {
	return &BudgetService{budgets: budgets}
}

// CreateBudget allocates a new budget in the caller's institution.
func (s *BudgetService) CreateBudget(ctx context.Context, req *connect.Request[api.CreateBudgetRequest]) (*connect.Response[api.CreateBudgetResponse], error) {
	slog.Info("CreateBudget request received",
		"title", req.Msg.Title,
		"department", req.Msg.Department,
		"allocated", req.Msg.Allocated,
	)

	budget, err := s.budgets.CreateBudget(ctx, auth.UserFromContext(ctx), ledger.BudgetInput{
		Title:      req.Msg.Title,
		Department: req.Msg.Department,
		Allocated:  req.Msg.Allocated,
	})
	if err != nil {
		slog.Warn("CreateBudget failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateBudgetResponse{Budget: toAPIBudget(budget)}), nil
}

// GetBudget retrieves a budget by ID.
func (s *BudgetService) GetBudget(ctx context.Context, req *connect.Request[api.GetBudgetRequest]) (*connect.Response[api.GetBudgetResponse], error) {
	budget, err := s.budgets.GetBudget(ctx, auth.UserFromContext(ctx), req.Msg.BudgetID)
	if err != nil {
		slog.Warn("GetBudget failed", "budget_id", req.Msg.BudgetID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetBudgetResponse{Budget: toAPIBudget(budget)}), nil
}

// ListBudgets returns every budget of the caller's institution.
func (s *BudgetService) ListBudgets(ctx context.Context, req *connect.Request[api.ListBudgetsRequest]) (*connect.Response[api.ListBudgetsResponse], error) {
	budgets, err := s.budgets.ListBudgets(ctx, auth.UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListBudgetsResponse{Budgets: toAPIBudgets(budgets)}), nil
}

// GetBudgetSummaries returns the dashboard: per-budget figures, totals and
// the department breakdown.
func (s *BudgetService) GetBudgetSummaries(ctx context.Context, req *connect.Request[api.GetBudgetSummariesRequest]) (*connect.Response[api.GetBudgetSummariesResponse], error) {
	dash, err := s.budgets.BudgetSummaries(ctx, auth.UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetBudgetSummariesResponse{
		Summaries:   toAPISummaries(dash.Rows),
		Totals:      toAPITotals(dash.Totals),
		Departments: toAPIDepartments(dash.Departments),
	}), nil
}
