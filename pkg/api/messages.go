package api

// AuthService

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	InstitutionName string `json:"institution_name"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User        *User        `json:"user"`
	Institution *Institution `json:"institution"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type CreateUserResponse struct {
	User *User `json:"user"`
}

// BudgetService

type CreateBudgetRequest struct {
	Title      string `json:"title"`
	Department string `json:"department"`
	Allocated  int64  `json:"allocated"`
}

type CreateBudgetResponse struct {
	Budget *Budget `json:"budget"`
}

type GetBudgetRequest struct {
	BudgetID string `json:"budget_id"`
}

type GetBudgetResponse struct {
	Budget *Budget `json:"budget"`
}

type ListBudgetsRequest struct{}

type ListBudgetsResponse struct {
	Budgets []*Budget `json:"budgets"`
}

type GetBudgetSummariesRequest struct{}

type GetBudgetSummariesResponse struct {
	Summaries   []*BudgetSummary `json:"summaries"`
	Totals      *Totals          `json:"totals"`
	Departments []*DepartmentRow `json:"departments"`
}

// ExpenseService

type CreateExpenseRequest struct {
	BudgetID             string   `json:"budget_id"`
	Title                string   `json:"title"`
	Vendor               string   `json:"vendor"`
	Category             string   `json:"category"`
	Amount               int64    `json:"amount"`
	Date                 string   `json:"date"`
	PaymentMode          string   `json:"payment_mode"`
	TransactionReference string   `json:"transaction_reference,omitempty"`
	ReceiptRef           string   `json:"receipt_ref,omitempty"`
	Receipt              *Receipt `json:"receipt,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DecideExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
	// Decision is "Approve" or "Reject".
	Decision      string `json:"decision"`
	Comments      string `json:"comments,omitempty"`
	ForceOverride bool   `json:"force_override,omitempty"`
}

// DecideExpenseResponse carries either the decided expense or, when an
// approval would overrun the budget, the warning and no expense.
type DecideExpenseResponse struct {
	Expense        *Expense        `json:"expense,omitempty"`
	OverrunWarning *OverrunWarning `json:"overrun_warning,omitempty"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	BudgetID string `json:"budget_id,omitempty"`
	Status   string `json:"status,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// PaymentService

type RecordPaymentRequest struct {
	PayerName            string `json:"payer_name"`
	StudentID            string `json:"student_id,omitempty"`
	Amount               int64  `json:"amount"`
	PaymentMode          string `json:"payment_mode"`
	TransactionReference string `json:"transaction_reference,omitempty"`
	ReceiptRef           string `json:"receipt_ref,omitempty"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type ListPaymentsRequest struct{}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

// PublicService

type GetSnapshotRequest struct {
	InstitutionID string `json:"institution_id"`
	Search        string `json:"search,omitempty"`
	Category      string `json:"category,omitempty"`
	Department    string `json:"department,omitempty"`
	// From and To bound the expense date, inclusive, as YYYY-MM-DD.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type GetSnapshotResponse struct {
	Institution *Institution     `json:"institution"`
	Budgets     []*Budget        `json:"budgets"`
	Expenses    []*PublicExpense `json:"expenses"`
	Totals      *Totals          `json:"totals"`
	Departments []*DepartmentRow `json:"departments"`
}

type SubmitFeedbackRequest struct {
	InstitutionID string `json:"institution_id"`
	BudgetID      string `json:"budget_id"`
	Comment       string `json:"comment"`
}

type SubmitFeedbackResponse struct {
	Feedback *Feedback `json:"feedback"`
}

type ListFeedbackRequest struct{}

type ListFeedbackResponse struct {
	Feedback []*Feedback `json:"feedback"`
}

// InsightService

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type GetUtilizationStatementRequest struct{}

type GetUtilizationStatementResponse struct {
	Filename string `json:"filename"`
	// Pdf is base64 in JSON.
	Pdf []byte `json:"pdf"`
}
