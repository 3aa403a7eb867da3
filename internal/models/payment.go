package models

import "slices"

// PaymentMode is how money changed hands.
type PaymentMode string

const (
	PaymentCash         PaymentMode = "Cash"
	PaymentUPI          PaymentMode = "UPI"
	PaymentBankTransfer PaymentMode = "Bank Transfer"
	PaymentCheque       PaymentMode = "Cheque"
	PaymentCard         PaymentMode = "Card"
	PaymentInKind       PaymentMode = "In-Kind"
)

// PaymentModes lists every accepted mode in display order.
var PaymentModes = []PaymentMode{
	PaymentCash, PaymentUPI, PaymentBankTransfer, PaymentCheque, PaymentCard, PaymentInKind,
}

// Valid reports whether m is one of PaymentModes.
func (m PaymentMode) Valid() bool {
	return slices.Contains(PaymentModes, m)
}

// NeedsReference reports whether a transaction reference must accompany m.
func (m PaymentMode) NeedsReference() bool {
	return m != PaymentCash && m != PaymentInKind
}

// Payment records funds received by an institution (fees, donations).
// Payments are not charged against budgets.
type Payment struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`

	// PayerName is who paid (e.g., a student or guardian).
	PayerName string `json:"payer_name"`

	// StudentID is optional.
	StudentID string `json:"student_id,omitempty"`

	Amount               int64       `json:"amount"`
	PaymentMode          PaymentMode `json:"payment_mode"`
	TransactionReference string      `json:"transaction_reference,omitempty"`
	ReceiptRef           string      `json:"receipt_ref,omitempty"`

	// RecordedBy is the Admin who logged the payment.
	RecordedBy string `json:"recorded_by"`

	CreatedAt int64 `json:"created_at"`
}

// Feedback is a comment left on a budget from the public transparency view.
type Feedback struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
	BudgetID      string `json:"budget_id"`
	Comment       string `json:"comment"`

	// UserID is empty for anonymous visitors.
	UserID string `json:"user_id,omitempty"`

	CreatedAt int64 `json:"created_at"`
}
