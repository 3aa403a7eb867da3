package models

// Budget is an allocation of funds to a department. It is the denominator
// for utilization and is immutable once created.
type Budget struct {
	// ID is the unique identifier for the budget (UUID format).
	ID string `json:"id"`

	// InstitutionID is the owning tenant.
	InstitutionID string `json:"institution_id"`

	// Title is the human-readable name (e.g., "Annual Library Fund").
	Title string `json:"title"`

	// Department is a label from Departments.
	Department string `json:"department"`

	// Allocated is the allocated amount in minor units. Never negative.
	Allocated int64 `json:"allocated"`

	// CreatedAt is the Unix timestamp when the budget was created.
	CreatedAt int64 `json:"created_at"`
}
