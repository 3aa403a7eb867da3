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

const budgetColumns = "id, institution_id, title, department, allocated, created_at"

// CreateBudget persists a new budget.
func (s *Store) CreateBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	if budget.CreatedAt == 0 {
		budget.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO budgets ("+budgetColumns+") VALUES (?, ?, ?, ?, ?, ?)"),
		budget.ID, budget.InstitutionID, budget.Title, budget.Department, budget.Allocated, budget.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}

// GetBudget retrieves a budget by ID within an institution.
func (s *Store) GetBudget(ctx context.Context, institutionID, budgetID string) (*models.Budget, error) {
	return s.getBudget(ctx, s.db, institutionID, budgetID, "")
}

func (s *Store) getBudget(ctx context.Context, q querier, institutionID, budgetID, suffix string) (*models.Budget, error) {
	row := q.QueryRowContext(ctx,
		s.rebind("SELECT "+budgetColumns+" FROM budgets WHERE id = ? AND institution_id = ?"+suffix),
		budgetID, institutionID,
	)
	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: budget %s", storage.ErrNotFound, budgetID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

// ListBudgets retrieves all budgets of an institution, oldest first.
func (s *Store) ListBudgets(ctx context.Context, institutionID string) ([]*models.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT "+budgetColumns+" FROM budgets WHERE institution_id = ? ORDER BY created_at, id"),
		institutionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	return budgets, nil
}

func scanBudget(row rowScanner) (*models.Budget, error) {
	b := &models.Budget{}
	if err := row.Scan(&b.ID, &b.InstitutionID, &b.Title, &b.Department, &b.Allocated, &b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}
