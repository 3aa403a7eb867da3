package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/public"
	"github.com/mmynk/clarity/pkg/api"
)

// PublicService implements the Connect PublicService. GetSnapshot and
// SubmitFeedback accept anonymous callers.
type PublicService struct {
	surface *public.Surface
}

// NewPublicService creates a new PublicService.
func NewPublicService(surface *public.Surface) *PublicService {
	return &PublicService{surface: surface}
}

// GetSnapshot returns the transparency view of an institution.
func (s *PublicService) GetSnapshot(ctx context.Context, req *connect.Request[api.GetSnapshotRequest]) (*connect.Response[api.GetSnapshotResponse], error) {
	filter := public.Filter{
		Search:     req.Msg.Search,
		Category:   req.Msg.Category,
		Department: req.Msg.Department,
	}
	var err error
	if filter.From, err = parseDay("from", req.Msg.From); err != nil {
		return nil, toConnectError(err)
	}
	if filter.To, err = parseDay("to", req.Msg.To); err != nil {
		return nil, toConnectError(err)
	}

	snap, err := s.surface.Snapshot(ctx, req.Msg.InstitutionID, filter)
	if err != nil {
		slog.Warn("GetSnapshot failed", "institution_id", req.Msg.InstitutionID, "error", err)
		return nil, toConnectError(err)
	}

	expenses := make([]*api.PublicExpense, len(snap.Expenses))
	for i, e := range snap.Expenses {
		expenses[i] = toAPIPublicExpense(e)
	}

	return connect.NewResponse(&api.GetSnapshotResponse{
		Institution: toAPIInstitution(snap.Institution),
		Budgets:     toAPIBudgets(snap.Budgets),
		Expenses:    expenses,
		Totals:      toAPITotals(snap.Totals),
		Departments: toAPIDepartments(snap.Departments),
	}), nil
}

// SubmitFeedback records a comment on a budget. Signed-in callers are
// attributed and default to their own institution.
func (s *PublicService) SubmitFeedback(ctx context.Context, req *connect.Request[api.SubmitFeedbackRequest]) (*connect.Response[api.SubmitFeedbackResponse], error) {
	institutionID := req.Msg.InstitutionID
	var userID string
	if user := auth.UserFromContext(ctx); user != nil {
		userID = user.ID
		if institutionID == "" {
			institutionID = user.InstitutionID
		}
	}

	fb, err := s.surface.SubmitFeedback(ctx, institutionID, req.Msg.BudgetID, req.Msg.Comment, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SubmitFeedbackResponse{Feedback: toAPIFeedback(fb)}), nil
}

// ListFeedback returns the feedback left on the caller's institution.
func (s *PublicService) ListFeedback(ctx context.Context, req *connect.Request[api.ListFeedbackRequest]) (*connect.Response[api.ListFeedbackResponse], error) {
	feedback, err := s.surface.ListFeedback(ctx, auth.UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Feedback, len(feedback))
	for i, f := range feedback {
		out[i] = toAPIFeedback(f)
	}
	return connect.NewResponse(&api.ListFeedbackResponse{Feedback: out}), nil
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ledger.ErrValidation, field)
	}
	return t, nil
}
