package models

// Institution is the root of multi-tenancy. Budgets, expenses, payments,
// feedback and users all belong to exactly one institution.
type Institution struct {
	// ID is the unique identifier for the institution (UUID format).
	ID string `json:"id"`

	// Name is the display name (e.g., "Clarity University").
	Name string `json:"name"`

	// CreatedAt is the Unix timestamp when the institution was created.
	CreatedAt int64 `json:"created_at"`
}
