// Package tenant resolves institutions, the root of multi-tenancy. Every other
// component scopes its reads and writes by the institution id it returns.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/storage"
)

var (
	ErrUnknownInstitution = errors.New("institution not found")
	ErrNameRequired       = errors.New("institution name required")
)

// Directory looks up and registers institutions.
type Directory struct {
	store storage.InstitutionStore
}

// NewDirectory creates a Directory backed by store.
func NewDirectory(store storage.InstitutionStore) *Directory {
	return &Directory{store: store}
}

// ResolveInstitution returns the institution with the given id.
func (d *Directory) ResolveInstitution(ctx context.Context, id string) (*models.Institution, error) {
	if id == "" {
		return nil, ErrUnknownInstitution
	}

	inst, err := d.store.GetInstitution(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstitution, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve institution: %w", err)
	}
	return inst, nil
}

// CreateInstitution registers a new institution.
func (d *Directory) CreateInstitution(ctx context.Context, name string) (*models.Institution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	inst := &models.Institution{Name: name}
	if err := d.store.CreateInstitution(ctx, inst); err != nil {
		return nil, fmt.Errorf("failed to create institution: %w", err)
	}
	return inst, nil
}

// RegisterInstitution creates an institution together with its first Admin.
// The admin's InstitutionID is set to the new institution. If the admin
// cannot be stored the institution is not kept.
func (d *Directory) RegisterInstitution(ctx context.Context, name string, admin *models.User) (*models.Institution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	inst := &models.Institution{Name: name}
	if err := d.store.CreateInstitutionWithAdmin(ctx, inst, admin); err != nil {
		return nil, fmt.Errorf("failed to register institution: %w", err)
	}
	return inst, nil
}
