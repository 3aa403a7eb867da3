package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

// seedBudget creates an institution with one admin and one budget.
func seedBudget(t *testing.T, store *Store, allocated int64) (*models.Institution, *models.User, *models.Budget) {
	t.Helper()
	ctx := context.Background()

	inst := &models.Institution{Name: "Test School"}
	require.NoError(t, store.CreateInstitution(ctx, inst))

	admin := models.NewUser(inst.ID, inst.ID+"@example.com", "Admin", "hash", models.RoleAdmin)
	require.NoError(t, store.CreateUser(ctx, admin))

	budget := &models.Budget{
		InstitutionID: inst.ID,
		Title:         "Lab Equipment",
		Department:    "Science",
		Allocated:     allocated,
	}
	require.NoError(t, store.CreateBudget(ctx, budget))

	return inst, admin, budget
}

func newExpense(inst *models.Institution, admin *models.User, budget *models.Budget, amount int64) *models.Expense {
	return &models.Expense{
		InstitutionID: inst.ID,
		BudgetID:      budget.ID,
		Title:         "Microscopes",
		Vendor:        "OptiCorp",
		Category:      "Equipment",
		Amount:        amount,
		Date:          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		PaymentMode:   models.PaymentCash,
		Status:        models.StatusSubmitted,
		SubmittedBy:   admin.ID,
		AuditTrail: []models.AuditEntry{
			{Timestamp: time.Now(), UserID: admin.ID, Action: models.ActionCreated, Comments: "Expense submitted"},
		},
	}
}

func approve(userID string) storage.TransitionFunc {
	return func(exp *models.Expense, _ *models.Budget, _ []*models.Expense) (*storage.Transition, error) {
		if exp.Status != models.StatusSubmitted {
			return nil, errors.New("already decided")
		}
		return &storage.Transition{
			To:    models.StatusApproved,
			Entry: models.AuditEntry{UserID: userID, Action: models.ActionApproved, Comments: "ok"},
		}, nil
	}
}

func TestInstitutionsAndUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateInstitution assigns ID and timestamp", func(t *testing.T) {
		inst := &models.Institution{Name: "Clarity University"}
		require.NoError(t, store.CreateInstitution(ctx, inst))
		assert.NotEmpty(t, inst.ID)
		assert.NotZero(t, inst.CreatedAt)

		got, err := store.GetInstitution(ctx, inst.ID)
		require.NoError(t, err)
		assert.Equal(t, "Clarity University", got.Name)
	})

	t.Run("GetInstitution unknown ID", func(t *testing.T) {
		_, err := store.GetInstitution(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("users round trip with role", func(t *testing.T) {
		inst := &models.Institution{Name: "Role School"}
		require.NoError(t, store.CreateInstitution(ctx, inst))

		user := models.NewUser(inst.ID, "reviewer@example.com", "Rita", "hash", models.RoleReviewer)
		require.NoError(t, store.CreateUser(ctx, user))

		byEmail, err := store.GetUserByEmail(ctx, "reviewer@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, models.RoleReviewer, byEmail.Role)
		assert.Equal(t, inst.ID, byEmail.InstitutionID)

		byID, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rita", byID.Name)
	})

	t.Run("duplicate email", func(t *testing.T) {
		inst := &models.Institution{Name: "Dup School"}
		require.NoError(t, store.CreateInstitution(ctx, inst))

		require.NoError(t, store.CreateUser(ctx, models.NewUser(inst.ID, "dup@example.com", "A", "h", models.RoleAdmin)))
		err := store.CreateUser(ctx, models.NewUser(inst.ID, "dup@example.com", "B", "h", models.RoleAdmin))
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetUserByID(ctx, "nobody")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("CreateInstitutionWithAdmin links the admin", func(t *testing.T) {
		inst := &models.Institution{Name: "Atomic School"}
		admin := models.NewUser("", "atomic@example.com", "Ada", "hash", models.RoleAdmin)
		require.NoError(t, store.CreateInstitutionWithAdmin(ctx, inst, admin))
		assert.Equal(t, inst.ID, admin.InstitutionID)

		got, err := store.GetUserByEmail(ctx, "atomic@example.com")
		require.NoError(t, err)
		assert.Equal(t, inst.ID, got.InstitutionID)
	})

	t.Run("CreateInstitutionWithAdmin rolls back on duplicate email", func(t *testing.T) {
		inst := &models.Institution{Name: "Orphan School"}
		admin := models.NewUser("", "atomic@example.com", "Eve", "hash", models.RoleAdmin)
		err := store.CreateInstitutionWithAdmin(ctx, inst, admin)
		assert.ErrorIs(t, err, storage.ErrDuplicate)
		require.NotEmpty(t, inst.ID)

		_, err = store.GetInstitution(ctx, inst.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestBudgetsAreTenantScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	instA, _, budgetA := seedBudget(t, store, 100000)
	instB, _, _ := seedBudget(t, store, 5000)

	got, err := store.GetBudget(ctx, instA.ID, budgetA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), got.Allocated)
	assert.Equal(t, "Science", got.Department)

	_, err = store.GetBudget(ctx, instB.ID, budgetA.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	budgets, err := store.ListBudgets(ctx, instB.ID)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, instB.ID, budgets[0].InstitutionID)
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inst, admin, budget := seedBudget(t, store, 100000)

	t.Run("CreateExpense stores expense and initial audit entry", func(t *testing.T) {
		exp := newExpense(inst, admin, budget, 40000)
		require.NoError(t, store.CreateExpense(ctx, exp))
		assert.NotEmpty(t, exp.ID)
		assert.Equal(t, int64(1), exp.Version)

		got, err := store.GetExpense(ctx, inst.ID, exp.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSubmitted, got.Status)
		assert.Equal(t, int64(40000), got.Amount)
		assert.Equal(t, "2024-03-15", got.Date.Format(models.DateLayout))
		require.Len(t, got.AuditTrail, 1)
		assert.Equal(t, 1, got.AuditTrail[0].Seq)
		assert.Equal(t, models.ActionCreated, got.AuditTrail[0].Action)
		assert.Equal(t, "Expense submitted", got.AuditTrail[0].Comments)
	})

	t.Run("CreateExpense rejects budget of another institution", func(t *testing.T) {
		other, otherAdmin, _ := seedBudget(t, store, 1000)
		exp := newExpense(other, otherAdmin, budget, 100)
		err := store.CreateExpense(ctx, exp)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		expenses, err := store.ListExpenses(ctx, other.ID, storage.ExpenseFilter{})
		require.NoError(t, err)
		assert.Empty(t, expenses)
	})

	t.Run("GetExpense is scoped by institution", func(t *testing.T) {
		exp := newExpense(inst, admin, budget, 100)
		require.NoError(t, store.CreateExpense(ctx, exp))

		_, err := store.GetExpense(ctx, "another-institution", exp.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DecideExpense commits status and appends audit", func(t *testing.T) {
		exp := newExpense(inst, admin, budget, 500)
		require.NoError(t, store.CreateExpense(ctx, exp))

		got, err := store.DecideExpense(ctx, inst.ID, exp.ID, approve(admin.ID))
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)
		assert.Equal(t, int64(2), got.Version)
		require.Len(t, got.AuditTrail, 2)
		assert.Equal(t, 2, got.AuditTrail[1].Seq)
		assert.Equal(t, models.ActionApproved, got.AuditTrail[1].Action)
	})

	t.Run("DecideExpense passes budget and sibling expenses", func(t *testing.T) {
		exp := newExpense(inst, admin, budget, 700)
		require.NoError(t, store.CreateExpense(ctx, exp))

		var sawBudget *models.Budget
		var sawSiblings int
		_, err := store.DecideExpense(ctx, inst.ID, exp.ID,
			func(e *models.Expense, b *models.Budget, siblings []*models.Expense) (*storage.Transition, error) {
				sawBudget = b
				sawSiblings = len(siblings)
				return approve(admin.ID)(e, b, siblings)
			})
		require.NoError(t, err)
		require.NotNil(t, sawBudget)
		assert.Equal(t, budget.ID, sawBudget.ID)
		assert.GreaterOrEqual(t, sawSiblings, 1)
	})

	t.Run("DecideExpense aborts without writing on error", func(t *testing.T) {
		exp := newExpense(inst, admin, budget, 900)
		require.NoError(t, store.CreateExpense(ctx, exp))

		boom := errors.New("boom")
		_, err := store.DecideExpense(ctx, inst.ID, exp.ID,
			func(*models.Expense, *models.Budget, []*models.Expense) (*storage.Transition, error) {
				return nil, boom
			})
		assert.ErrorIs(t, err, boom)

		got, err := store.GetExpense(ctx, inst.ID, exp.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSubmitted, got.Status)
		assert.Len(t, got.AuditTrail, 1)
	})

	t.Run("ListExpenses filters by status", func(t *testing.T) {
		approved, err := store.ListExpenses(ctx, inst.ID, storage.ExpenseFilter{Status: models.StatusApproved})
		require.NoError(t, err)
		require.NotEmpty(t, approved)
		for _, e := range approved {
			assert.Equal(t, models.StatusApproved, e.Status)
			assert.NotEmpty(t, e.AuditTrail)
		}
	})

	t.Run("SetReceiptRef updates reference and appends audit", func(t *testing.T) {
		exp := newExpense(inst, admin, budget, 300)
		exp.ReceiptRef = models.ReceiptPending
		require.NoError(t, store.CreateExpense(ctx, exp))

		err := store.SetReceiptRef(ctx, inst.ID, exp.ID, "file:///tmp/r.pdf",
			models.AuditEntry{UserID: admin.ID, Action: models.ActionUpdated, Comments: "Receipt attached"})
		require.NoError(t, err)

		got, err := store.GetExpense(ctx, inst.ID, exp.ID)
		require.NoError(t, err)
		assert.Equal(t, "file:///tmp/r.pdf", got.ReceiptRef)
		require.Len(t, got.AuditTrail, 2)
		assert.Equal(t, models.ActionUpdated, got.AuditTrail[1].Action)

		err = store.SetReceiptRef(ctx, "another-institution", exp.ID, "x", models.AuditEntry{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestConcurrentDecisions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inst, admin, budget := seedBudget(t, store, 100000)
	exp := newExpense(inst, admin, budget, 1000)
	require.NoError(t, store.CreateExpense(ctx, exp))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.DecideExpense(ctx, inst.ID, exp.ID, approve(admin.ID)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	got, err := store.GetExpense(ctx, inst.ID, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Len(t, got.AuditTrail, 2)
}

func TestPaymentsAndFeedback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inst, admin, budget := seedBudget(t, store, 100000)

	t.Run("payments round trip", func(t *testing.T) {
		p := &models.Payment{
			InstitutionID:        inst.ID,
			PayerName:            "Asha",
			StudentID:            "S-101",
			Amount:               250000,
			PaymentMode:          models.PaymentUPI,
			TransactionReference: "UPI-889",
			RecordedBy:           admin.ID,
		}
		require.NoError(t, store.CreatePayment(ctx, p))

		payments, err := store.ListPayments(ctx, inst.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, models.PaymentUPI, payments[0].PaymentMode)
		assert.Equal(t, int64(250000), payments[0].Amount)
	})

	t.Run("feedback requires budget in institution", func(t *testing.T) {
		require.NoError(t, store.CreateFeedback(ctx, &models.Feedback{
			InstitutionID: inst.ID, BudgetID: budget.ID, Comment: "Great lab",
		}))

		err := store.CreateFeedback(ctx, &models.Feedback{
			InstitutionID: inst.ID, BudgetID: "missing", Comment: "?",
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)

		feedback, err := store.ListFeedback(ctx, inst.ID)
		require.NoError(t, err)
		require.Len(t, feedback, 1)
		assert.Equal(t, "Great lab", feedback[0].Comment)
	})
}
