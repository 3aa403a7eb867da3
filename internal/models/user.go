package models

import "fmt"

// Role is the single role a user holds within its institution.
type Role int

const (
	// RoleUnknown is the zero value and never authorizes anything.
	RoleUnknown Role = iota
	// RoleAdmin manages budgets, expenses and payments.
	RoleAdmin
	// RoleReviewer approves or rejects submitted expenses.
	RoleReviewer
	// RolePublic has read-only access to approved data.
	RolePublic
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleReviewer:
		return "Reviewer"
	case RolePublic:
		return "Public"
	case RoleUnknown:
		return "Unknown"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole converts a wire name into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "Admin":
		return RoleAdmin, nil
	case "Reviewer":
		return RoleReviewer, nil
	case "Public":
		return RolePublic, nil
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

// User is an account bound to one institution with one role.
// Role and institution are fixed at creation.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique). Used for login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized.
	PasswordHash string `json:"-"`

	// Role is the user's role inside InstitutionID.
	Role Role `json:"role"`

	// InstitutionID is the tenant this user is bound to.
	InstitutionID string `json:"institution_id"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"created_at"`
}

// NewUser creates a user bound to an institution. ID and CreatedAt are
// assigned by the store.
func NewUser(institutionID, email, name, passwordHash string, role Role) *User {
	return &User{
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		Role:          role,
		InstitutionID: institutionID,
	}
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
