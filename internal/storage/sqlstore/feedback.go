package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clarity/internal/models"
)

// CreateFeedback persists a comment on a budget of the same institution.
func (s *Store) CreateFeedback(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	if fb.CreatedAt == 0 {
		fb.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getBudget(ctx, tx, fb.InstitutionID, fb.BudgetID, ""); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO feedback (id, institution_id, budget_id, comment, user_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			fb.ID, fb.InstitutionID, fb.BudgetID, fb.Comment, fb.UserID, fb.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert feedback: %w", err)
		}
		return nil
	})
}

// ListFeedback retrieves an institution's feedback, newest first.
func (s *Store) ListFeedback(ctx context.Context, institutionID string) ([]*models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, institution_id, budget_id, comment, user_id, created_at
		FROM feedback
		WHERE institution_id = ?
		ORDER BY created_at DESC, id`),
		institutionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	feedback := make([]*models.Feedback, 0)
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.InstitutionID, &fb.BudgetID, &fb.Comment, &fb.UserID, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback = append(feedback, &fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return feedback, nil
}
