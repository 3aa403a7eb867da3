// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/clarity/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist within the
	// requested institution. Records of other institutions are never found.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a guarded write lost a race: the record
	// changed between the read and the conditional update.
	ErrConflict = errors.New("record changed concurrently")

	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("record already exists")
)

// Transition is the outcome of a review decision to be committed atomically:
// the new status and the audit entry describing it.
type Transition struct {
	To    models.ExpenseStatus
	Entry models.AuditEntry
}

// TransitionFunc decides a transition from the current committed state of an
// expense, its budget, and every expense charged to that budget. It runs
// inside the store's transaction; returning an error aborts without writing.
type TransitionFunc func(exp *models.Expense, budget *models.Budget, budgetExpenses []*models.Expense) (*Transition, error)

// ExpenseFilter narrows ListExpenses. Zero values match everything.
type ExpenseFilter struct {
	BudgetID string
	Status   models.ExpenseStatus
}

// InstitutionStore persists tenants.
type InstitutionStore interface {
	// CreateInstitution persists a new institution, assigning ID and CreatedAt.
	CreateInstitution(ctx context.Context, inst *models.Institution) error

	// CreateInstitutionWithAdmin atomically persists an institution and its
	// first user, setting admin.InstitutionID. Returns ErrDuplicate if the
	// admin's email is taken, in which case the institution is not kept.
	CreateInstitutionWithAdmin(ctx context.Context, inst *models.Institution, admin *models.User) error

	// GetInstitution retrieves an institution by ID.
	GetInstitution(ctx context.Context, id string) (*models.Institution, error)
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser persists a new user. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// BudgetStore persists budgets. Every read is scoped by institution.
type BudgetStore interface {
	CreateBudget(ctx context.Context, budget *models.Budget) error
	GetBudget(ctx context.Context, institutionID, budgetID string) (*models.Budget, error)
	ListBudgets(ctx context.Context, institutionID string) ([]*models.Budget, error)
}

// ExpenseStore persists expenses and their audit trails.
type ExpenseStore interface {
	// CreateExpense persists the expense and its initial audit trail in one
	// transaction. Returns ErrNotFound if the budget is not in the expense's
	// institution.
	CreateExpense(ctx context.Context, exp *models.Expense) error

	// GetExpense retrieves an expense with its full audit trail.
	GetExpense(ctx context.Context, institutionID, expenseID string) (*models.Expense, error)

	// ListExpenses retrieves the institution's expenses with audit trails,
	// newest first.
	ListExpenses(ctx context.Context, institutionID string, filter ExpenseFilter) ([]*models.Expense, error)

	// DecideExpense applies the transition chosen by decide. The read of the
	// current state, the status change and the audit append commit as one
	// unit; a concurrent decision on the same expense yields ErrConflict.
	DecideExpense(ctx context.Context, institutionID, expenseID string, decide TransitionFunc) (*models.Expense, error)

	// SetReceiptRef replaces the receipt reference and appends entry.
	SetReceiptRef(ctx context.Context, institutionID, expenseID, ref string, entry models.AuditEntry) error
}

// PaymentStore persists received payments.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, institutionID string) ([]*models.Payment, error)
}

// FeedbackStore persists public budget feedback.
type FeedbackStore interface {
	// CreateFeedback returns ErrNotFound if the budget is not in the
	// feedback's institution.
	CreateFeedback(ctx context.Context, fb *models.Feedback) error
	ListFeedback(ctx context.Context, institutionID string) ([]*models.Feedback, error)
}

// Store defines the full persistence contract.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the ledger or service layers.
type Store interface {
	InstitutionStore
	UserStore
	BudgetStore
	ExpenseStore
	PaymentStore
	FeedbackStore

	// Close releases any resources held by the store.
	Close() error
}
