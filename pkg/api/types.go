// Package api defines the request and response messages of the ledger.v1
// RPC services. Messages travel as JSON; amounts are integer minor units and
// dates are YYYY-MM-DD strings.
package api

// User is an account as seen by clients. The password hash never leaves
// the server.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	InstitutionID string `json:"institution_id"`
	CreatedAt     int64  `json:"created_at"`
}

type Institution struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

type Budget struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
	Title         string `json:"title"`
	Department    string `json:"department"`
	Allocated     int64  `json:"allocated"`
	CreatedAt     int64  `json:"created_at"`
}

// BudgetSummary is a budget with its derived figures.
type BudgetSummary struct {
	Budget      *Budget `json:"budget"`
	Spent       int64   `json:"spent"`
	Remaining   int64   `json:"remaining"`
	Utilization float64 `json:"utilization"`
}

type Totals struct {
	TotalAllocated int64 `json:"total_allocated"`
	TotalSpent     int64 `json:"total_spent"`
	Remaining      int64 `json:"remaining"`
}

type DepartmentRow struct {
	Department  string  `json:"department"`
	Allocated   int64   `json:"allocated"`
	Spent       int64   `json:"spent"`
	Utilization float64 `json:"utilization"`
}

type AuditEntry struct {
	Seq int `json:"seq"`
	// Timestamp is RFC 3339 with nanoseconds.
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Comments  string `json:"comments,omitempty"`
}

type Expense struct {
	ID                   string        `json:"id"`
	InstitutionID        string        `json:"institution_id"`
	BudgetID             string        `json:"budget_id"`
	Title                string        `json:"title"`
	Vendor               string        `json:"vendor"`
	Category             string        `json:"category"`
	Amount               int64         `json:"amount"`
	Date                 string        `json:"date"`
	PaymentMode          string        `json:"payment_mode"`
	TransactionReference string        `json:"transaction_reference,omitempty"`
	ReceiptRef           string        `json:"receipt_ref,omitempty"`
	Status               string        `json:"status"`
	SubmittedBy          string        `json:"submitted_by"`
	Version              int64         `json:"version"`
	CreatedAt            int64         `json:"created_at"`
	AuditTrail           []*AuditEntry `json:"audit_trail"`
}

// PublicExpense is an Approved expense stripped of review data.
type PublicExpense struct {
	ID          string `json:"id"`
	BudgetID    string `json:"budget_id"`
	Department  string `json:"department"`
	Title       string `json:"title"`
	Vendor      string `json:"vendor"`
	Category    string `json:"category"`
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
	PaymentMode string `json:"payment_mode"`
	ReceiptURL  string `json:"receipt_url,omitempty"`
}

type Payment struct {
	ID                   string `json:"id"`
	InstitutionID        string `json:"institution_id"`
	PayerName            string `json:"payer_name"`
	StudentID            string `json:"student_id,omitempty"`
	Amount               int64  `json:"amount"`
	PaymentMode          string `json:"payment_mode"`
	TransactionReference string `json:"transaction_reference,omitempty"`
	ReceiptRef           string `json:"receipt_ref,omitempty"`
	RecordedBy           string `json:"recorded_by"`
	CreatedAt            int64  `json:"created_at"`
}

type Feedback struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
	BudgetID      string `json:"budget_id"`
	Comment       string `json:"comment"`
	UserID        string `json:"user_id,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

// Receipt is a file attached to a new expense. Data is base64 in JSON.
type Receipt struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// OverrunWarning reports an approval that was not committed because it
// would exceed the budget.
type OverrunWarning struct {
	ExpenseID string `json:"expense_id"`
	Remaining int64  `json:"remaining"`
	Shortfall int64  `json:"shortfall"`
}
