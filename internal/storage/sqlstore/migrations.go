package sqlstore

import (
	"context"
	"database/sql"
)

// schema is portable between SQLite and PostgreSQL: TEXT ids, BIGINT money
// and Unix timestamps. Tables are ordered so foreign keys resolve.
const schema = `
CREATE TABLE IF NOT EXISTS institutions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL REFERENCES institutions(id),
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS budgets (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL REFERENCES institutions(id),
    title TEXT NOT NULL,
    department TEXT NOT NULL,
    allocated BIGINT NOT NULL CHECK (allocated >= 0),
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL REFERENCES institutions(id),
    budget_id TEXT NOT NULL REFERENCES budgets(id),
    title TEXT NOT NULL,
    vendor TEXT NOT NULL,
    category TEXT NOT NULL,
    amount BIGINT NOT NULL CHECK (amount > 0),
    spent_on TEXT NOT NULL,
    payment_mode TEXT NOT NULL,
    transaction_reference TEXT NOT NULL DEFAULT '',
    receipt_ref TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK (status IN ('Submitted', 'Approved', 'Rejected')),
    submitted_by TEXT NOT NULL,
    version BIGINT NOT NULL DEFAULT 1,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_entries (
    expense_id TEXT NOT NULL REFERENCES expenses(id),
    seq INTEGER NOT NULL,
    recorded_at BIGINT NOT NULL,
    user_id TEXT NOT NULL,
    action TEXT NOT NULL,
    comments TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (expense_id, seq)
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL REFERENCES institutions(id),
    payer_name TEXT NOT NULL,
    student_id TEXT NOT NULL DEFAULT '',
    amount BIGINT NOT NULL CHECK (amount > 0),
    payment_mode TEXT NOT NULL,
    transaction_reference TEXT NOT NULL DEFAULT '',
    receipt_ref TEXT NOT NULL DEFAULT '',
    recorded_by TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL REFERENCES institutions(id),
    budget_id TEXT NOT NULL REFERENCES budgets(id),
    comment TEXT NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_institution_id ON users(institution_id);
CREATE INDEX IF NOT EXISTS idx_budgets_institution_id ON budgets(institution_id);
CREATE INDEX IF NOT EXISTS idx_expenses_institution_id ON expenses(institution_id);
CREATE INDEX IF NOT EXISTS idx_expenses_budget_id ON expenses(budget_id);
CREATE INDEX IF NOT EXISTS idx_payments_institution_id ON payments(institution_id);
CREATE INDEX IF NOT EXISTS idx_feedback_institution_id ON feedback(institution_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	return runMigrationsContext(context.Background(), db)
}

func runMigrationsContext(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
