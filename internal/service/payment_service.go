package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/pkg/api"
)

// PaymentService implements the Connect PaymentService.
type PaymentService struct {
	payments *ledger.Payments
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(payments *ledger.Payments) *PaymentService {
	return &PaymentService{payments: payments}
}

// RecordPayment logs funds received by the caller's institution.
func (s *PaymentService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	slog.Info("RecordPayment request received", "amount", req.Msg.Amount, "mode", req.Msg.PaymentMode)

	payment, err := s.payments.RecordPayment(ctx, auth.UserFromContext(ctx), ledger.PaymentInput{
		PayerName:            req.Msg.PayerName,
		StudentID:            req.Msg.StudentID,
		Amount:               req.Msg.Amount,
		PaymentMode:          models.PaymentMode(req.Msg.PaymentMode),
		TransactionReference: req.Msg.TransactionReference,
		ReceiptRef:           req.Msg.ReceiptRef,
	})
	if err != nil {
		slog.Warn("RecordPayment failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecordPaymentResponse{Payment: toAPIPayment(payment)}), nil
}

// ListPayments returns the caller's institution's payments, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	payments, err := s.payments.ListPayments(ctx, auth.UserFromContext(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = toAPIPayment(p)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out}), nil
}
