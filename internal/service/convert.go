package service

import (
	"time"

	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/projector"
	"github.com/mmynk/clarity/internal/public"
	"github.com/mmynk/clarity/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role.String(),
		InstitutionID: u.InstitutionID,
		CreatedAt:     u.CreatedAt,
	}
}

func toAPIInstitution(inst *models.Institution) *api.Institution {
	return &api.Institution{ID: inst.ID, Name: inst.Name, CreatedAt: inst.CreatedAt}
}

func toAPIBudget(b *models.Budget) *api.Budget {
	return &api.Budget{
		ID:            b.ID,
		InstitutionID: b.InstitutionID,
		Title:         b.Title,
		Department:    b.Department,
		Allocated:     b.Allocated,
		CreatedAt:     b.CreatedAt,
	}
}

func toAPIBudgets(budgets []*models.Budget) []*api.Budget {
	out := make([]*api.Budget, len(budgets))
	for i, b := range budgets {
		out[i] = toAPIBudget(b)
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	trail := make([]*api.AuditEntry, len(e.AuditTrail))
	for i, a := range e.AuditTrail {
		trail[i] = &api.AuditEntry{
			Seq:       a.Seq,
			Timestamp: a.Timestamp.UTC().Format(time.RFC3339Nano),
			UserID:    a.UserID,
			Action:    string(a.Action),
			Comments:  a.Comments,
		}
	}
	return &api.Expense{
		ID:                   e.ID,
		InstitutionID:        e.InstitutionID,
		BudgetID:             e.BudgetID,
		Title:                e.Title,
		Vendor:               e.Vendor,
		Category:             e.Category,
		Amount:               e.Amount,
		Date:                 e.Date.Format(models.DateLayout),
		PaymentMode:          string(e.PaymentMode),
		TransactionReference: e.TransactionReference,
		ReceiptRef:           e.ReceiptRef,
		Status:               string(e.Status),
		SubmittedBy:          e.SubmittedBy,
		Version:              e.Version,
		CreatedAt:            e.CreatedAt,
		AuditTrail:           trail,
	}
}

func toAPIPublicExpense(e public.Expense) *api.PublicExpense {
	return &api.PublicExpense{
		ID:          e.ID,
		BudgetID:    e.BudgetID,
		Department:  e.Department,
		Title:       e.Title,
		Vendor:      e.Vendor,
		Category:    e.Category,
		Amount:      e.Amount,
		Date:        e.Date.Format(models.DateLayout),
		PaymentMode: string(e.PaymentMode),
		ReceiptURL:  e.ReceiptURL,
	}
}

func toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:                   p.ID,
		InstitutionID:        p.InstitutionID,
		PayerName:            p.PayerName,
		StudentID:            p.StudentID,
		Amount:               p.Amount,
		PaymentMode:          string(p.PaymentMode),
		TransactionReference: p.TransactionReference,
		ReceiptRef:           p.ReceiptRef,
		RecordedBy:           p.RecordedBy,
		CreatedAt:            p.CreatedAt,
	}
}

func toAPIFeedback(f *models.Feedback) *api.Feedback {
	return &api.Feedback{
		ID:            f.ID,
		InstitutionID: f.InstitutionID,
		BudgetID:      f.BudgetID,
		Comment:       f.Comment,
		UserID:        f.UserID,
		CreatedAt:     f.CreatedAt,
	}
}

func toAPITotals(t projector.Totals) *api.Totals {
	return &api.Totals{TotalAllocated: t.TotalAllocated, TotalSpent: t.TotalSpent, Remaining: t.Remaining}
}

func toAPIDepartments(rows []projector.DepartmentRow) []*api.DepartmentRow {
	out := make([]*api.DepartmentRow, len(rows))
	for i, r := range rows {
		out[i] = &api.DepartmentRow{
			Department:  r.Department,
			Allocated:   r.Allocated,
			Spent:       r.Spent,
			Utilization: r.Utilization,
		}
	}
	return out
}

func toAPISummaries(rows []projector.BudgetRow) []*api.BudgetSummary {
	out := make([]*api.BudgetSummary, len(rows))
	for i, r := range rows {
		out[i] = &api.BudgetSummary{
			Budget:      toAPIBudget(r.Budget),
			Spent:       r.Spent,
			Remaining:   r.Remaining,
			Utilization: r.Utilization,
		}
	}
	return out
}

func toAPIOverrun(w *ledger.OverrunWarning) *api.OverrunWarning {
	return &api.OverrunWarning{ExpenseID: w.ExpenseID, Remaining: w.Remaining, Shortfall: w.Shortfall}
}
