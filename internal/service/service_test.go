package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clarity/internal/assistant"
	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/metrics"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/public"
	"github.com/mmynk/clarity/internal/receipts"
	"github.com/mmynk/clarity/internal/report"
	"github.com/mmynk/clarity/internal/storage/sqlstore"
	"github.com/mmynk/clarity/internal/tenant"
	"github.com/mmynk/clarity/pkg/api"
	"github.com/mmynk/clarity/pkg/api/apiconnect"
)

type testServer struct {
	auth     apiconnect.AuthServiceClient
	budgets  apiconnect.BudgetServiceClient
	expenses apiconnect.ExpenseServiceClient
	payments apiconnect.PaymentServiceClient
	public   apiconnect.PublicServiceClient
	insight  apiconnect.InsightServiceClient
	uploader *receipts.Uploader
}

// setupTestServer serves every service over httptest with the production
// interceptor chain. assistantURL may be empty.
func setupTestServer(t *testing.T, assistantURL string) *testServer {
	t.Helper()

	store, err := sqlstore.New(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	blobs, err := receipts.NewLocalStore(filepath.Join(t.TempDir(), "receipts"))
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	uploader := receipts.NewUploader(blobs, store, m, 5*time.Second)
	t.Cleanup(uploader.Close)

	tenants := tenant.NewDirectory(store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	budgets := ledger.NewBudgets(store)
	surface := public.NewSurface(store, tenants)

	mux := http.NewServeMux()
	Mount(mux, Handlers{
		Auth:    NewAuthService(auth.NewPasswordAuthenticator(store, tenants), jwtManager, tenants, slog.Default()),
		Budget:  NewBudgetService(budgets),
		Expense: NewExpenseService(ledger.NewWorkflow(store, ledger.WithReceipts(uploader), ledger.WithMetrics(m))),
		Payment: NewPaymentService(ledger.NewPayments(store)),
		Public:  NewPublicService(surface),
		Insight: NewInsightService(
			assistant.NewClient(assistantURL, 5*time.Second, surface),
			report.NewStatements(budgets, tenants),
		),
	}, jwtManager, store, m)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{
		auth:     apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		budgets:  apiconnect.NewBudgetServiceClient(http.DefaultClient, server.URL),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		payments: apiconnect.NewPaymentServiceClient(http.DefaultClient, server.URL),
		public:   apiconnect.NewPublicServiceClient(http.DefaultClient, server.URL),
		insight:  apiconnect.NewInsightServiceClient(http.DefaultClient, server.URL),
		uploader: uploader,
	}
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

type tenantTokens struct {
	institutionID string
	admin         string
	reviewer      string
	public        string
}

// registerInstitution signs up an Admin and creates a Reviewer and a Public
// user, returning a token for each.
func (s *testServer) registerInstitution(t *testing.T, name, domain string) tenantTokens {
	t.Helper()
	ctx := context.Background()

	reg, err := s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Name:            "Admin",
		Email:           "admin@" + domain,
		Password:        "password123",
		InstitutionName: name,
	}))
	require.NoError(t, err)
	require.Equal(t, "Admin", reg.Msg.User.Role)

	tokens := tenantTokens{institutionID: reg.Msg.User.InstitutionID, admin: reg.Msg.Token}
	login := func(email, role string) string {
		_, err := s.auth.CreateUser(ctx, withToken(&api.CreateUserRequest{
			Name: role, Email: email, Password: "password123", Role: role,
		}, tokens.admin))
		require.NoError(t, err)

		resp, err := s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: email, Password: "password123"}))
		require.NoError(t, err)
		return resp.Msg.Token
	}
	tokens.reviewer = login("reviewer@"+domain, "Reviewer")
	tokens.public = login("public@"+domain, "Public")
	return tokens
}

func (s *testServer) createBudget(t *testing.T, token, department string, allocated int64) *api.Budget {
	t.Helper()
	resp, err := s.budgets.CreateBudget(context.Background(), withToken(&api.CreateBudgetRequest{
		Title: department + " Fund", Department: department, Allocated: allocated,
	}, token))
	require.NoError(t, err)
	return resp.Msg.Budget
}

func (s *testServer) createExpense(t *testing.T, token, budgetID string, amount int64) *api.Expense {
	t.Helper()
	resp, err := s.expenses.CreateExpense(context.Background(), withToken(&api.CreateExpenseRequest{
		BudgetID:    budgetID,
		Title:       "Microscopes",
		Vendor:      "OptiCorp",
		Category:    "Equipment",
		Amount:      amount,
		Date:        "2024-03-15",
		PaymentMode: "Cash",
	}, token))
	require.NoError(t, err)
	return resp.Msg.Expense
}

func (s *testServer) decide(t *testing.T, token, expenseID, decision, comments string, force bool) (*api.DecideExpenseResponse, error) {
	t.Helper()
	resp, err := s.expenses.DecideExpense(context.Background(), withToken(&api.DecideExpenseRequest{
		ExpenseID:     expenseID,
		Decision:      decision,
		Comments:      comments,
		ForceOverride: force,
	}, token))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func assertRPCError(t *testing.T, err error, code connect.Code, kind string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, connect.CodeOf(err))
	assert.Equal(t, kind, KindOf(err))
}

func TestRegisterAndGetCurrentUser(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")

	resp, err := s.auth.GetCurrentUser(ctx, withToken(&api.GetCurrentUserRequest{}, tokens.reviewer))
	require.NoError(t, err)
	assert.Equal(t, "Reviewer", resp.Msg.User.Role)
	assert.Equal(t, tokens.institutionID, resp.Msg.User.InstitutionID)
	assert.Equal(t, "Clarity University", resp.Msg.Institution.Name)

	_, err = s.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertRPCError(t, err, connect.CodeUnauthenticated, KindUnauthenticated)

	_, err = s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Name: "Again", Email: "ADMIN@clarity.edu", Password: "password123", InstitutionName: "Other",
	}))
	assertRPCError(t, err, connect.CodeAlreadyExists, KindAlreadyExists)

	_, err = s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "admin@clarity.edu", Password: "wrong-password"}))
	assertRPCError(t, err, connect.CodeUnauthenticated, KindUnauthenticated)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	s := setupTestServer(t, "")
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")

	_, err := s.auth.CreateUser(context.Background(), withToken(&api.CreateUserRequest{
		Name: "Eve", Email: "eve@clarity.edu", Password: "password123", Role: "Admin",
	}, tokens.reviewer))
	assertRPCError(t, err, connect.CodePermissionDenied, KindDenied)

	_, err = s.auth.CreateUser(context.Background(), withToken(&api.CreateUserRequest{
		Name: "Eve", Email: "eve@clarity.edu", Password: "password123", Role: "Owner",
	}, tokens.admin))
	assertRPCError(t, err, connect.CodeInvalidArgument, KindValidation)
}

func TestProtectedServicesRequireToken(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()

	_, err := s.budgets.ListBudgets(ctx, connect.NewRequest(&api.ListBudgetsRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = s.budgets.ListBudgets(ctx, withToken(&api.ListBudgetsRequest{}, "not-a-token"))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = s.public.GetSnapshot(ctx, withToken(&api.GetSnapshotRequest{InstitutionID: "x"}, "not-a-token"))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestBudgetRoles(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")

	_, err := s.budgets.CreateBudget(ctx, withToken(&api.CreateBudgetRequest{
		Title: "Books", Department: "Library", Allocated: 5000,
	}, tokens.reviewer))
	assertRPCError(t, err, connect.CodePermissionDenied, KindDenied)

	_, err = s.budgets.CreateBudget(ctx, withToken(&api.CreateBudgetRequest{
		Title: "Books", Department: "Astrology", Allocated: 5000,
	}, tokens.admin))
	assertRPCError(t, err, connect.CodeInvalidArgument, KindValidation)

	budget := s.createBudget(t, tokens.admin, "Library", 5000)

	list, err := s.budgets.ListBudgets(ctx, withToken(&api.ListBudgetsRequest{}, tokens.public))
	require.NoError(t, err)
	require.Len(t, list.Msg.Budgets, 1)
	assert.Equal(t, budget.ID, list.Msg.Budgets[0].ID)

	_, err = s.budgets.GetBudgetSummaries(ctx, withToken(&api.GetBudgetSummariesRequest{}, tokens.public))
	assertRPCError(t, err, connect.CodePermissionDenied, KindDenied)
}

func TestExpenseOverrunFlow(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")
	budget := s.createBudget(t, tokens.admin, "Lab", 100000)

	first := s.createExpense(t, tokens.admin, budget.ID, 60000)
	assert.Equal(t, "Submitted", first.Status)
	require.Len(t, first.AuditTrail, 1)
	assert.Equal(t, "Created", first.AuditTrail[0].Action)
	assert.Equal(t, "Expense submitted", first.AuditTrail[0].Comments)

	resp, err := s.decide(t, tokens.reviewer, first.ID, "Approve", "", false)
	require.NoError(t, err)
	assert.Equal(t, "Approved", resp.Expense.Status)
	assert.Nil(t, resp.OverrunWarning)

	second := s.createExpense(t, tokens.admin, budget.ID, 50000)

	resp, err = s.decide(t, tokens.reviewer, second.ID, "Approve", "", false)
	require.NoError(t, err)
	assert.Nil(t, resp.Expense)
	require.NotNil(t, resp.OverrunWarning)
	assert.Equal(t, second.ID, resp.OverrunWarning.ExpenseID)
	assert.Equal(t, int64(40000), resp.OverrunWarning.Remaining)
	assert.Equal(t, int64(10000), resp.OverrunWarning.Shortfall)

	got, err := s.expenses.GetExpense(ctx, withToken(&api.GetExpenseRequest{ExpenseID: second.ID}, tokens.reviewer))
	require.NoError(t, err)
	assert.Equal(t, "Submitted", got.Msg.Expense.Status)
	assert.Len(t, got.Msg.Expense.AuditTrail, 1)

	resp, err = s.decide(t, tokens.reviewer, second.ID, "Approve", "Urgent", true)
	require.NoError(t, err)
	require.NotNil(t, resp.Expense)
	assert.Equal(t, "Approved", resp.Expense.Status)
	require.Len(t, resp.Expense.AuditTrail, 2)
	assert.Contains(t, resp.Expense.AuditTrail[1].Comments, "Budget override: exceeds remaining by")

	summaries, err := s.budgets.GetBudgetSummaries(ctx, withToken(&api.GetBudgetSummariesRequest{}, tokens.reviewer))
	require.NoError(t, err)
	require.Len(t, summaries.Msg.Summaries, 1)
	assert.Equal(t, int64(110000), summaries.Msg.Summaries[0].Spent)
	assert.Equal(t, int64(-10000), summaries.Msg.Summaries[0].Remaining)
	assert.InDelta(t, 110.0, summaries.Msg.Summaries[0].Utilization, 0.001)
	assert.Equal(t, int64(110000), summaries.Msg.Totals.TotalSpent)
}

func TestDecideExpenseErrors(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")
	budget := s.createBudget(t, tokens.admin, "Sports", 10000)
	exp := s.createExpense(t, tokens.admin, budget.ID, 2000)

	_, err := s.decide(t, tokens.reviewer, exp.ID, "Maybe", "", false)
	assertRPCError(t, err, connect.CodeInvalidArgument, KindValidation)

	_, err = s.decide(t, tokens.reviewer, exp.ID, "Reject", "  ", false)
	assertRPCError(t, err, connect.CodeInvalidArgument, KindValidation)

	_, err = s.decide(t, tokens.public, exp.ID, "Approve", "", false)
	assertRPCError(t, err, connect.CodePermissionDenied, KindDenied)

	resp, err := s.decide(t, tokens.reviewer, exp.ID, "Reject", "Duplicate invoice", false)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", resp.Expense.Status)

	_, err = s.decide(t, tokens.reviewer, exp.ID, "Approve", "", false)
	assertRPCError(t, err, connect.CodeFailedPrecondition, KindInvalidTransition)

	_, err = s.decide(t, tokens.reviewer, "missing", "Approve", "", false)
	assertRPCError(t, err, connect.CodeNotFound, KindNotFound)

	list, err := s.expenses.ListExpenses(ctx, withToken(&api.ListExpensesRequest{Status: "Rejected"}, tokens.admin))
	require.NoError(t, err)
	require.Len(t, list.Msg.Expenses, 1)
	assert.Equal(t, exp.ID, list.Msg.Expenses[0].ID)

	_, err = s.expenses.ListExpenses(ctx, withToken(&api.ListExpensesRequest{Status: "Paid"}, tokens.admin))
	assertRPCError(t, err, connect.CodeInvalidArgument, KindValidation)
}

func TestTenantIsolation(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	a := s.registerInstitution(t, "Clarity University", "clarity.edu")
	b := s.registerInstitution(t, "Other College", "other.edu")

	budget := s.createBudget(t, a.admin, "Library", 5000)
	exp := s.createExpense(t, a.admin, budget.ID, 1000)

	_, err := s.budgets.GetBudget(ctx, withToken(&api.GetBudgetRequest{BudgetID: budget.ID}, b.admin))
	assertRPCError(t, err, connect.CodeNotFound, KindNotFound)

	_, err = s.expenses.CreateExpense(ctx, withToken(&api.CreateExpenseRequest{
		BudgetID: budget.ID, Title: "Books", Vendor: "Shop", Category: "Supplies",
		Amount: 100, Date: "2024-03-15", PaymentMode: "Cash",
	}, b.admin))
	assertRPCError(t, err, connect.CodeFailedPrecondition, KindCrossTenantReference)

	_, err = s.decide(t, b.reviewer, exp.ID, "Approve", "", false)
	assertRPCError(t, err, connect.CodeNotFound, KindNotFound)

	list, err := s.expenses.ListExpenses(ctx, withToken(&api.ListExpensesRequest{}, b.admin))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Expenses)
}

func TestReceiptUpload(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")
	budget := s.createBudget(t, tokens.admin, "Maintenance", 50000)

	resp, err := s.expenses.CreateExpense(ctx, withToken(&api.CreateExpenseRequest{
		BudgetID: budget.ID, Title: "Paint", Vendor: "Hardware Co", Category: "Supplies",
		Amount: 1500, Date: "2024-04-01", PaymentMode: "UPI", TransactionReference: "UPI-991",
		Receipt: &api.Receipt{Name: "paint.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
	}, tokens.admin))
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptPending, resp.Msg.Expense.ReceiptRef)

	s.uploader.Wait()

	got, err := s.expenses.GetExpense(ctx, withToken(&api.GetExpenseRequest{ExpenseID: resp.Msg.Expense.ID}, tokens.admin))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Msg.Expense.ReceiptRef, "file://"), got.Msg.Expense.ReceiptRef)
	require.Len(t, got.Msg.Expense.AuditTrail, 2)
	assert.Equal(t, "Updated", got.Msg.Expense.AuditTrail[1].Action)
	assert.Equal(t, "Submitted", got.Msg.Expense.Status)
}

func TestPublicSnapshotShowsApprovedOnly(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")
	lab := s.createBudget(t, tokens.admin, "Lab", 100000)
	library := s.createBudget(t, tokens.admin, "Library", 20000)

	approved1 := s.createExpense(t, tokens.admin, lab.ID, 30000)
	approved2 := s.createExpense(t, tokens.admin, library.ID, 5000)
	rejected := s.createExpense(t, tokens.admin, lab.ID, 7000)
	s.createExpense(t, tokens.admin, lab.ID, 9000)

	for _, id := range []string{approved1.ID, approved2.ID} {
		_, err := s.decide(t, tokens.reviewer, id, "Approve", "", false)
		require.NoError(t, err)
	}
	_, err := s.decide(t, tokens.reviewer, rejected.ID, "Reject", "Not needed", false)
	require.NoError(t, err)

	snap, err := s.public.GetSnapshot(ctx, connect.NewRequest(&api.GetSnapshotRequest{InstitutionID: tokens.institutionID}))
	require.NoError(t, err)
	assert.Equal(t, "Clarity University", snap.Msg.Institution.Name)
	assert.Len(t, snap.Msg.Budgets, 2)
	require.Len(t, snap.Msg.Expenses, 2)
	assert.Equal(t, int64(120000), snap.Msg.Totals.TotalAllocated)
	assert.Equal(t, int64(35000), snap.Msg.Totals.TotalSpent)
	assert.Equal(t, int64(85000), snap.Msg.Totals.Remaining)

	filtered, err := s.public.GetSnapshot(ctx, connect.NewRequest(&api.GetSnapshotRequest{
		InstitutionID: tokens.institutionID,
		Department:    "Library",
	}))
	require.NoError(t, err)
	require.Len(t, filtered.Msg.Expenses, 1)
	assert.Equal(t, approved2.ID, filtered.Msg.Expenses[0].ID)
	assert.Equal(t, int64(35000), filtered.Msg.Totals.TotalSpent)

	_, err = s.public.GetSnapshot(ctx, connect.NewRequest(&api.GetSnapshotRequest{
		InstitutionID: tokens.institutionID,
		From:          "15/03/2024",
	}))
	assertRPCError(t, err, connect.CodeInvalidArgument, KindValidation)

	_, err = s.public.GetSnapshot(ctx, connect.NewRequest(&api.GetSnapshotRequest{InstitutionID: "nowhere"}))
	assertRPCError(t, err, connect.CodeNotFound, KindNotFound)
}

func TestFeedback(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")
	budget := s.createBudget(t, tokens.admin, "Food", 8000)

	anon, err := s.public.SubmitFeedback(ctx, connect.NewRequest(&api.SubmitFeedbackRequest{
		InstitutionID: tokens.institutionID,
		BudgetID:      budget.ID,
		Comment:       "Canteen prices went up",
	}))
	require.NoError(t, err)
	assert.Empty(t, anon.Msg.Feedback.UserID)

	signed, err := s.public.SubmitFeedback(ctx, withToken(&api.SubmitFeedbackRequest{
		BudgetID: budget.ID,
		Comment:  "Thanks for the new menu",
	}, tokens.public))
	require.NoError(t, err)
	assert.NotEmpty(t, signed.Msg.Feedback.UserID)
	assert.Equal(t, tokens.institutionID, signed.Msg.Feedback.InstitutionID)

	_, err = s.public.SubmitFeedback(ctx, connect.NewRequest(&api.SubmitFeedbackRequest{
		InstitutionID: tokens.institutionID,
		BudgetID:      budget.ID,
	}))
	assertRPCError(t, err, connect.CodeInvalidArgument, KindValidation)

	_, err = s.public.ListFeedback(ctx, connect.NewRequest(&api.ListFeedbackRequest{}))
	assertRPCError(t, err, connect.CodeUnauthenticated, KindUnauthenticated)

	list, err := s.public.ListFeedback(ctx, withToken(&api.ListFeedbackRequest{}, tokens.admin))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Feedback, 2)
}

func TestPayments(t *testing.T) {
	s := setupTestServer(t, "")
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")

	_, err := s.payments.RecordPayment(ctx, withToken(&api.RecordPaymentRequest{
		PayerName: "Asha", Amount: 250000, PaymentMode: "Bank Transfer",
	}, tokens.admin))
	assertRPCError(t, err, connect.CodeInvalidArgument, KindValidation)

	resp, err := s.payments.RecordPayment(ctx, withToken(&api.RecordPaymentRequest{
		PayerName: "Asha", StudentID: "S-42", Amount: 250000,
		PaymentMode: "Bank Transfer", TransactionReference: "NEFT-1234",
	}, tokens.admin))
	require.NoError(t, err)
	assert.Equal(t, "Asha", resp.Msg.Payment.PayerName)

	_, err = s.payments.ListPayments(ctx, withToken(&api.ListPaymentsRequest{}, tokens.public))
	assertRPCError(t, err, connect.CodePermissionDenied, KindDenied)

	list, err := s.payments.ListPayments(ctx, withToken(&api.ListPaymentsRequest{}, tokens.admin))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Payments, 1)
}

func TestUtilizationStatement(t *testing.T) {
	s := setupTestServer(t, "")
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")
	s.createBudget(t, tokens.admin, "Events", 40000)

	resp, err := s.insight.GetUtilizationStatement(context.Background(), withToken(&api.GetUtilizationStatementRequest{}, tokens.reviewer))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(resp.Msg.Pdf), "%PDF"))
	assert.Contains(t, resp.Msg.Filename, tokens.institutionID)
}

func TestAsk(t *testing.T) {
	var received map[string]any
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"The Lab budget has Rs. 1,000.00 left."}`))
	}))
	defer backend.Close()

	s := setupTestServer(t, backend.URL)
	ctx := context.Background()
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")

	resp, err := s.insight.Ask(ctx, withToken(&api.AskRequest{Question: "How much is left?"}, tokens.admin))
	require.NoError(t, err)
	assert.Equal(t, assistant.NoDataAnswer, resp.Msg.Answer)
	assert.Nil(t, received)

	s.createBudget(t, tokens.admin, "Lab", 100000)

	resp, err = s.insight.Ask(ctx, withToken(&api.AskRequest{Question: "How much is left?"}, tokens.admin))
	require.NoError(t, err)
	assert.Equal(t, "The Lab budget has Rs. 1,000.00 left.", resp.Msg.Answer)
	require.NotNil(t, received)
	assert.Equal(t, "How much is left?", received["query"])

	_, err = s.insight.Ask(ctx, withToken(&api.AskRequest{Question: "Hi"}, tokens.public))
	assertRPCError(t, err, connect.CodePermissionDenied, KindDenied)
}

func TestAskUnavailable(t *testing.T) {
	s := setupTestServer(t, "")
	tokens := s.registerInstitution(t, "Clarity University", "clarity.edu")
	s.createBudget(t, tokens.admin, "Lab", 100000)

	_, err := s.insight.Ask(context.Background(), withToken(&api.AskRequest{Question: "Anything?"}, tokens.admin))
	assertRPCError(t, err, connect.CodeUnavailable, KindUnavailable)
}
