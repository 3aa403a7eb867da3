// Package models defines the core domain models for Clarity.
//
// # Tenancy
//
// Every persisted entity except Institution carries an InstitutionID. The
// institution is the isolation boundary: no operation reads or writes across
// it, and a reference that would cross it is treated as absent.
//
// # Money
//
// Amounts are int64 minor currency units (paise for INR). Floating point is
// only used for derived percentages.
//
// # Relationships
//
// Models refer to each other by ID strings rather than pointers. The audit
// trail is the one exception: it is owned by its Expense and has no identity
// of its own beyond its append position.
package models
