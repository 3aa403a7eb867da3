package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/storage"
)

// CreateInstitution persists a new institution.
func (s *Store) CreateInstitution(ctx context.Context, inst *models.Institution) error {
	return s.insertInstitution(ctx, s.db, inst)
}

// CreateInstitutionWithAdmin persists an institution and its first user in
// one transaction. Neither row exists if either insert fails.
func (s *Store) CreateInstitutionWithAdmin(ctx context.Context, inst *models.Institution, admin *models.User) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.insertInstitution(ctx, tx, inst); err != nil {
			return err
		}
		admin.InstitutionID = inst.ID
		return s.insertUser(ctx, tx, admin)
	})
}

func (s *Store) insertInstitution(ctx context.Context, q querier, inst *models.Institution) error {
	if inst.ID == "" {
		inst.ID = uuid.New().String()
	}
	if inst.CreatedAt == 0 {
		inst.CreatedAt = time.Now().Unix()
	}

	_, err := q.ExecContext(ctx,
		s.rebind("INSERT INTO institutions (id, name, created_at) VALUES (?, ?, ?)"),
		inst.ID, inst.Name, inst.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: institution %s", storage.ErrDuplicate, inst.ID)
		}
		return fmt.Errorf("failed to insert institution: %w", err)
	}
	return nil
}

// GetInstitution retrieves an institution by ID.
func (s *Store) GetInstitution(ctx context.Context, id string) (*models.Institution, error) {
	inst := &models.Institution{}
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id, name, created_at FROM institutions WHERE id = ?"),
		id,
	).Scan(&inst.ID, &inst.Name, &inst.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: institution %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get institution: %w", err)
	}
	return inst, nil
}
