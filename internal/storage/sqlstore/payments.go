package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clarity/internal/models"
)

const paymentColumns = "id, institution_id, payer_name, student_id, amount, payment_mode, " +
	"transaction_reference, receipt_ref, recorded_by, created_at"

// CreatePayment persists a received payment.
func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO payments ("+paymentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		p.ID, p.InstitutionID, p.PayerName, p.StudentID, p.Amount, string(p.PaymentMode),
		p.TransactionReference, p.ReceiptRef, p.RecordedBy, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ListPayments retrieves an institution's payments, newest first.
func (s *Store) ListPayments(ctx context.Context, institutionID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT "+paymentColumns+" FROM payments WHERE institution_id = ? ORDER BY created_at DESC, id"),
		institutionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		var (
			p    models.Payment
			mode string
		)
		if err := rows.Scan(&p.ID, &p.InstitutionID, &p.PayerName, &p.StudentID, &p.Amount, &mode,
			&p.TransactionReference, &p.ReceiptRef, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.PaymentMode = models.PaymentMode(mode)
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
