package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/assistant"
	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/report"
	"github.com/mmynk/clarity/pkg/api"
)

// InsightService implements the Connect InsightService: the question
// assistant and downloadable statements.
type InsightService struct {
	assistant  *assistant.Client
	statements *report.Statements
}

// NewInsightService creates a new InsightService.
func NewInsightService(client *assistant.Client, statements *report.Statements) *InsightService {
	return &InsightService{assistant: client, statements: statements}
}

// Ask answers a question from the caller's institution's Approved data.
func (s *InsightService) Ask(ctx context.Context, req *connect.Request[api.AskRequest]) (*connect.Response[api.AskResponse], error) {
	answer, err := s.assistant.Ask(ctx, auth.UserFromContext(ctx), req.Msg.Question)
	if err != nil {
		slog.Warn("Ask failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AskResponse{Answer: answer}), nil
}

// GetUtilizationStatement renders the budget utilization statement as a PDF.
func (s *InsightService) GetUtilizationStatement(ctx context.Context, req *connect.Request[api.GetUtilizationStatementRequest]) (*connect.Response[api.GetUtilizationStatementResponse], error) {
	user := auth.UserFromContext(ctx)
	pdf, err := s.statements.UtilizationStatement(ctx, user)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Utilization statement generated", "institution_id", user.InstitutionID, "bytes", len(pdf))
	return connect.NewResponse(&api.GetUtilizationStatementResponse{
		Filename: fmt.Sprintf("utilization-%s.pdf", user.InstitutionID),
		Pdf:      pdf,
	}), nil
}
