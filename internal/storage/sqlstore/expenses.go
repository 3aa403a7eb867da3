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

const expenseColumns = "id, institution_id, budget_id, title, vendor, category, amount, spent_on, " +
	"payment_mode, transaction_reference, receipt_ref, status, submitted_by, version, created_at"

// CreateExpense persists a new expense together with its audit trail.
// Returns storage.ErrNotFound if the budget is not in the expense's
// institution.
func (s *Store) CreateExpense(ctx context.Context, exp *models.Expense) error {
	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	if exp.CreatedAt == 0 {
		exp.CreatedAt = time.Now().Unix()
	}
	if exp.Version == 0 {
		exp.Version = 1
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		// Budgets are never deleted, so an in-transaction lookup is enough to
		// keep the expense inside its budget's institution.
		if _, err := s.getBudget(ctx, tx, exp.InstitutionID, exp.BudgetID, ""); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			s.rebind("INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
			exp.ID, exp.InstitutionID, exp.BudgetID, exp.Title, exp.Vendor, exp.Category,
			exp.Amount, exp.Date.Format(models.DateLayout), string(exp.PaymentMode),
			exp.TransactionReference, exp.ReceiptRef, string(exp.Status), exp.SubmittedBy,
			exp.Version, exp.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for i := range exp.AuditTrail {
			entry := &exp.AuditTrail[i]
			entry.Seq = i + 1
			if err := s.insertAudit(ctx, tx, exp.ID, *entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetExpense retrieves an expense and its audit trail.
func (s *Store) GetExpense(ctx context.Context, institutionID, expenseID string) (*models.Expense, error) {
	exp, err := s.getExpense(ctx, s.db, institutionID, expenseID, "")
	if err != nil {
		return nil, err
	}

	trails, err := s.auditTrails(ctx, s.db, []string{exp.ID})
	if err != nil {
		return nil, err
	}
	exp.AuditTrail = trails[exp.ID]
	return exp, nil
}

// ListExpenses retrieves an institution's expenses with audit trails.
func (s *Store) ListExpenses(ctx context.Context, institutionID string, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	expenses, err := s.listExpenses(ctx, s.db, institutionID, filter)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	trails, err := s.auditTrails(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.AuditTrail = trails[e.ID]
	}
	return expenses, nil
}

// DecideExpense commits a review decision. The expense row (and, on
// PostgreSQL, the budget row) is locked for the duration of the transaction,
// and the status update is conditional on the state decide observed.
func (s *Store) DecideExpense(ctx context.Context, institutionID, expenseID string, decide storage.TransitionFunc) (*models.Expense, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		exp, err := s.getExpense(ctx, tx, institutionID, expenseID, s.forUpdate())
		if err != nil {
			return err
		}

		budget, err := s.getBudget(ctx, tx, institutionID, exp.BudgetID, s.forUpdate())
		if err != nil {
			return err
		}

		siblings, err := s.listExpenses(ctx, tx, institutionID, storage.ExpenseFilter{BudgetID: budget.ID})
		if err != nil {
			return err
		}

		tr, err := decide(exp, budget, siblings)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, s.rebind(`
			UPDATE expenses SET status = ?, version = version + 1
			WHERE id = ? AND institution_id = ? AND status = ? AND version = ?`),
			string(tr.To), exp.ID, institutionID, string(exp.Status), exp.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update expense status: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: expense %s", storage.ErrConflict, exp.ID)
		}

		return s.appendAudit(ctx, tx, exp.ID, tr.Entry)
	})
	if err != nil {
		return nil, err
	}

	return s.GetExpense(ctx, institutionID, expenseID)
}

// SetReceiptRef replaces the receipt reference and records the change.
func (s *Store) SetReceiptRef(ctx context.Context, institutionID, expenseID, ref string, entry models.AuditEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`
			UPDATE expenses SET receipt_ref = ?, version = version + 1
			WHERE id = ? AND institution_id = ?`),
			ref, expenseID, institutionID,
		)
		if err != nil {
			return fmt.Errorf("failed to update receipt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update receipt: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
		}

		return s.appendAudit(ctx, tx, expenseID, entry)
	})
}

func (s *Store) getExpense(ctx context.Context, q querier, institutionID, expenseID, suffix string) (*models.Expense, error) {
	row := q.QueryRowContext(ctx,
		s.rebind("SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND institution_id = ?"+suffix),
		expenseID, institutionID,
	)
	exp, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return exp, nil
}

func (s *Store) listExpenses(ctx context.Context, q querier, institutionID string, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE institution_id = ?"
	args := []any{institutionID}
	if filter.BudgetID != "" {
		query += " AND budget_id = ?"
		args = append(args, filter.BudgetID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := q.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// auditTrails loads the audit entries of the given expenses, keyed by
// expense ID and ordered by append position.
func (s *Store) auditTrails(ctx context.Context, q querier, expenseIDs []string) (map[string][]models.AuditEntry, error) {
	trails := make(map[string][]models.AuditEntry, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return trails, nil
	}

	query := `
		SELECT expense_id, seq, recorded_at, user_id, action, comments
		FROM audit_entries
		WHERE expense_id IN (?` + repeatPlaceholder(len(expenseIDs)-1) + `)
		ORDER BY expense_id, seq`

	args := make([]any, len(expenseIDs))
	for i, id := range expenseIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			expenseID  string
			entry      models.AuditEntry
			recordedAt int64
			action     string
		)
		if err := rows.Scan(&expenseID, &entry.Seq, &recordedAt, &entry.UserID, &action, &entry.Comments); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Timestamp = time.Unix(0, recordedAt).UTC()
		entry.Action = models.AuditAction(action)
		trails[expenseID] = append(trails[expenseID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return trails, nil
}

// appendAudit writes entry at the next position of the expense's trail.
// The (expense_id, seq) primary key rejects a second writer at the same
// position.
func (s *Store) appendAudit(ctx context.Context, tx *sql.Tx, expenseID string, entry models.AuditEntry) error {
	var next int
	err := tx.QueryRowContext(ctx,
		s.rebind("SELECT COALESCE(MAX(seq), 0) + 1 FROM audit_entries WHERE expense_id = ?"),
		expenseID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to get audit position: %w", err)
	}
	entry.Seq = next
	return s.insertAudit(ctx, tx, expenseID, entry)
}

func (s *Store) insertAudit(ctx context.Context, tx *sql.Tx, expenseID string, entry models.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO audit_entries (expense_id, seq, recorded_at, user_id, action, comments)
		VALUES (?, ?, ?, ?, ?, ?)`),
		expenseID, entry.Seq, entry.Timestamp.UnixNano(), entry.UserID, string(entry.Action), entry.Comments,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: audit entry %s#%d", storage.ErrConflict, expenseID, entry.Seq)
		}
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var (
		e           models.Expense
		spentOn     string
		paymentMode string
		status      string
	)
	if err := row.Scan(
		&e.ID, &e.InstitutionID, &e.BudgetID, &e.Title, &e.Vendor, &e.Category,
		&e.Amount, &spentOn, &paymentMode, &e.TransactionReference, &e.ReceiptRef,
		&status, &e.SubmittedBy, &e.Version, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	date, err := time.Parse(models.DateLayout, spentOn)
	if err != nil {
		return nil, fmt.Errorf("expense %s: bad date %q: %w", e.ID, spentOn, err)
	}
	e.Date = date
	e.PaymentMode = models.PaymentMode(paymentMode)
	e.Status = models.ExpenseStatus(status)
	return &e, nil
}
