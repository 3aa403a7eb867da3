package models

import "time"

// ExpenseStatus is a state of the expense review state machine.
type ExpenseStatus string

const (
	// StatusSubmitted is the initial state; the expense awaits review.
	StatusSubmitted ExpenseStatus = "Submitted"
	// StatusApproved is terminal; the amount counts as spent.
	StatusApproved ExpenseStatus = "Approved"
	// StatusRejected is terminal; the amount never counts as spent.
	StatusRejected ExpenseStatus = "Rejected"
)

// Terminal reports whether no further transition is allowed.
func (s ExpenseStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is one of the known statuses.
func (s ExpenseStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// AuditAction names what happened in an AuditEntry.
type AuditAction string

const (
	ActionCreated  AuditAction = "Created"
	ActionApproved AuditAction = "Approved"
	ActionRejected AuditAction = "Rejected"
	ActionUpdated  AuditAction = "Updated"
)

// Receipt reference markers. Any other non-empty value is an object URL.
const (
	// ReceiptPending marks an expense whose receipt upload has not resolved.
	ReceiptPending = "receipt:pending"
	// ReceiptPlaceholder marks an expense whose receipt upload failed.
	ReceiptPlaceholder = "receipt:placeholder"
)

// DateLayout is the wire and storage format of Expense.Date.
const DateLayout = "2006-01-02"

// Expense is a request to spend against a Budget, subject to review.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// InstitutionID is the owning tenant. Always equal to the budget's.
	InstitutionID string `json:"institution_id"`

	// BudgetID is the budget charged. Never reassigned.
	BudgetID string `json:"budget_id"`

	Title    string `json:"title"`
	Vendor   string `json:"vendor"`
	Category string `json:"category"`

	// Amount in minor units. Always positive.
	Amount int64 `json:"amount"`

	// Date is the calendar day the money was spent (UTC midnight).
	Date time.Time `json:"date"`

	PaymentMode PaymentMode `json:"payment_mode"`

	// TransactionReference identifies the payment for non-cash modes.
	TransactionReference string `json:"transaction_reference,omitempty"`

	// ReceiptRef is an object URL, ReceiptPending, ReceiptPlaceholder, or empty.
	ReceiptRef string `json:"receipt_ref,omitempty"`

	Status ExpenseStatus `json:"status"`

	// SubmittedBy is the user ID of the Admin who created the expense.
	SubmittedBy string `json:"submitted_by"`

	// Version increases with every committed state change.
	Version int64 `json:"version"`

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64 `json:"created_at"`

	// AuditTrail is append-only and ordered by Seq.
	AuditTrail []AuditEntry `json:"audit_trail"`
}

// AuditEntry is one immutable line of an expense's history.
type AuditEntry struct {
	// Seq is the 1-based append position within the expense.
	Seq int `json:"seq"`

	Timestamp time.Time   `json:"timestamp"`
	UserID    string      `json:"user_id"`
	Action    AuditAction `json:"action"`
	Comments  string      `json:"comments,omitempty"`
}
