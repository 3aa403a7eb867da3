package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/clarity/internal/money"
)

var (
	// ErrNotFound means the record is absent or belongs to another
	// institution. The two cases are indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input violates a field rule.
	ErrValidation = errors.New("validation failed")

	// ErrCrossTenantReference means an input references a record outside the
	// actor's institution.
	ErrCrossTenantReference = errors.New("reference outside the caller's institution")

	// ErrInvalidTransition means the expense is not in a state that allows
	// the requested decision.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// OverrunWarning is returned instead of committing an approval that would
// take the budget past its allocation. Nothing was changed; repeat the
// decision with force override to proceed.
type OverrunWarning struct {
	ExpenseID string
	// Remaining is the budget's remaining amount before this expense.
	Remaining int64
	// Shortfall is how far the expense exceeds Remaining.
	Shortfall int64
}

func (w *OverrunWarning) Error() string {
	return fmt.Sprintf("approval exceeds remaining budget: remaining %s, shortfall %s",
		money.Format(w.Remaining), money.Format(w.Shortfall))
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
