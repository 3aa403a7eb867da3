package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/money"
	"github.com/mmynk/clarity/internal/storage"
)

// PaymentInput is the caller-supplied part of a Payment.
type PaymentInput struct {
	PayerName            string
	StudentID            string
	Amount               int64
	PaymentMode          models.PaymentMode
	TransactionReference string
	ReceiptRef           string
}

// Payments records funds received by an institution. Payments never enter
// budget utilization.
type Payments struct {
	store storage.PaymentStore
}

// NewPayments creates the payments register.
func NewPayments(store storage.PaymentStore) *Payments {
	return &Payments{store: store}
}

// RecordPayment logs a payment for the Admin actor's institution.
func (p *Payments) RecordPayment(ctx context.Context, actor *models.User, in PaymentInput) (*models.Payment, error) {
	if err := auth.Authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	switch {
	case strings.TrimSpace(in.PayerName) == "":
		return nil, validationError("payer name is required")
	case in.Amount <= 0:
		return nil, validationError("amount must be positive")
	case in.Amount > money.MaxMinor:
		return nil, validationError("amount exceeds the maximum of " + money.FormatGrouped(money.MaxMinor))
	case !in.PaymentMode.Valid():
		return nil, validationError(fmt.Sprintf("unknown payment mode %q", in.PaymentMode))
	case in.PaymentMode.NeedsReference() && strings.TrimSpace(in.TransactionReference) == "":
		return nil, validationError(fmt.Sprintf("transaction reference required for %s", in.PaymentMode))
	}
	if ref := strings.TrimSpace(in.ReceiptRef); ref != "" {
		if err := validateReceiptRef(ref); err != nil {
			return nil, err
		}
	}

	payment := &models.Payment{
		InstitutionID:        actor.InstitutionID,
		PayerName:            strings.TrimSpace(in.PayerName),
		StudentID:            strings.TrimSpace(in.StudentID),
		Amount:               in.Amount,
		PaymentMode:          in.PaymentMode,
		TransactionReference: strings.TrimSpace(in.TransactionReference),
		ReceiptRef:           strings.TrimSpace(in.ReceiptRef),
		RecordedBy:           actor.ID,
	}
	if err := p.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	slog.Info("Payment recorded",
		"payment_id", payment.ID,
		"institution_id", payment.InstitutionID,
		"amount", payment.Amount,
		"mode", payment.PaymentMode,
	)
	return payment, nil
}

// ListPayments returns the actor's institution's payments, newest first.
func (p *Payments) ListPayments(ctx context.Context, actor *models.User) ([]*models.Payment, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer); err != nil {
		return nil, err
	}
	return p.store.ListPayments(ctx, actor.InstitutionID)
}
