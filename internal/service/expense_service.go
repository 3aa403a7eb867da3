package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/receipts"
	"github.com/mmynk/clarity/internal/storage"
	"github.com/mmynk/clarity/pkg/api"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	workflow *ledger.Workflow
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(workflow *ledger.Workflow) *ExpenseService {
	return &ExpenseService{workflow: workflow}
}

// CreateExpense submits an expense for review. An attached receipt is
// uploaded in the background; the returned expense carries a pending marker.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"budget_id", req.Msg.BudgetID,
		"amount", req.Msg.Amount,
		"has_receipt", req.Msg.Receipt != nil,
	)

	in := ledger.ExpenseInput{
		BudgetID:             req.Msg.BudgetID,
		Title:                req.Msg.Title,
		Vendor:               req.Msg.Vendor,
		Category:             req.Msg.Category,
		Amount:               req.Msg.Amount,
		Date:                 req.Msg.Date,
		PaymentMode:          models.PaymentMode(req.Msg.PaymentMode),
		TransactionReference: req.Msg.TransactionReference,
		ReceiptRef:           req.Msg.ReceiptRef,
	}
	if r := req.Msg.Receipt; r != nil {
		in.Receipt = &receipts.File{Name: r.Name, ContentType: r.ContentType, Data: r.Data}
	}

	exp, err := s.workflow.CreateExpense(ctx, auth.UserFromContext(ctx), in)
	if err != nil {
		slog.Warn("CreateExpense failed", "budget_id", req.Msg.BudgetID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(exp)}), nil
}

// DecideExpense approves or rejects a submitted expense. An approval that
// would overrun its budget returns the warning instead of an error and
// commits nothing.
func (s *ExpenseService) DecideExpense(ctx context.Context, req *connect.Request[api.DecideExpenseRequest]) (*connect.Response[api.DecideExpenseResponse], error) {
	slog.Info("DecideExpense request received",
		"expense_id", req.Msg.ExpenseID,
		"decision", req.Msg.Decision,
		"force_override", req.Msg.ForceOverride,
	)

	decision, err := ledger.ParseDecision(req.Msg.Decision)
	if err != nil {
		return nil, toConnectError(err)
	}

	exp, err := s.workflow.DecideExpense(ctx, auth.UserFromContext(ctx), ledger.DecideInput{
		ExpenseID:     req.Msg.ExpenseID,
		Decision:      decision,
		Comments:      req.Msg.Comments,
		ForceOverride: req.Msg.ForceOverride,
	})
	if err != nil {
		var warning *ledger.OverrunWarning
		if errors.As(err, &warning) {
			return connect.NewResponse(&api.DecideExpenseResponse{OverrunWarning: toAPIOverrun(warning)}), nil
		}
		slog.Warn("DecideExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.DecideExpenseResponse{Expense: toAPIExpense(exp)}), nil
}

// GetExpense retrieves an expense with its audit trail.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	exp, err := s.workflow.GetExpense(ctx, auth.UserFromContext(ctx), req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(exp)}), nil
}

// ListExpenses lists the caller's institution's expenses, optionally narrowed
// to one budget or status.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	filter := storage.ExpenseFilter{
		BudgetID: req.Msg.BudgetID,
		Status:   models.ExpenseStatus(req.Msg.Status),
	}

	expenses, err := s.workflow.ListExpenses(ctx, auth.UserFromContext(ctx), filter)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}
