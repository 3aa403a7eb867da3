// Package projector computes derived budget views: spent, remaining and
// utilization per budget, per department and in aggregate.
//
// Every function is pure: it reads only its arguments, never mutates them,
// and returns the same result for the same snapshot. Authorization belongs
// to whoever assembles the snapshot.
package projector

import (
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/money"
)

// DepartmentRow is one line of a department breakdown.
type DepartmentRow struct {
	Department  string
	Allocated   int64
	Spent       int64
	Utilization float64
}

// Totals aggregates every supplied budget and Approved expense.
type Totals struct {
	TotalAllocated int64
	TotalSpent     int64
	Remaining      int64
}

// BudgetRow is a budget with its derived figures.
type BudgetRow struct {
	Budget      *models.Budget
	Spent       int64
	Remaining   int64
	Utilization float64
}

// SpentFor sums the Approved expenses charged to budget.
func SpentFor(budget *models.Budget, expenses []*models.Expense) int64 {
	var spent int64
	for _, e := range expenses {
		if e.BudgetID == budget.ID && e.Status == models.StatusApproved {
			spent = money.Add(spent, e.Amount)
		}
	}
	return spent
}

// RemainingFor is allocated minus spent. Negative when the budget is overrun.
func RemainingFor(budget *models.Budget, expenses []*models.Expense) int64 {
	return budget.Allocated - SpentFor(budget, expenses)
}

// UtilizationFor is spent as a percentage of allocated, or 0 when nothing
// was allocated.
func UtilizationFor(budget *models.Budget, expenses []*models.Expense) float64 {
	return percent(SpentFor(budget, expenses), budget.Allocated)
}

// DepartmentBreakdown groups budgets by department in the order of
// departments. Departments with nothing allocated and nothing spent are
// omitted.
func DepartmentBreakdown(budgets []*models.Budget, expenses []*models.Expense, departments []string) []DepartmentRow {
	deptOf := make(map[string]string, len(budgets))
	allocated := make(map[string]int64)
	for _, b := range budgets {
		deptOf[b.ID] = b.Department
		allocated[b.Department] = money.Add(allocated[b.Department], b.Allocated)
	}

	spent := make(map[string]int64)
	for _, e := range expenses {
		if e.Status != models.StatusApproved {
			continue
		}
		if dept, ok := deptOf[e.BudgetID]; ok {
			spent[dept] = money.Add(spent[dept], e.Amount)
		}
	}

	rows := make([]DepartmentRow, 0, len(departments))
	for _, dept := range departments {
		a, s := allocated[dept], spent[dept]
		if a == 0 && s == 0 {
			continue
		}
		rows = append(rows, DepartmentRow{
			Department:  dept,
			Allocated:   a,
			Spent:       s,
			Utilization: percent(s, a),
		})
	}
	return rows
}

// AggregateTotals sums allocation over budgets and Approved spend over
// expenses.
func AggregateTotals(budgets []*models.Budget, expenses []*models.Expense) Totals {
	var t Totals
	for _, b := range budgets {
		t.TotalAllocated = money.Add(t.TotalAllocated, b.Allocated)
	}
	for _, e := range expenses {
		if e.Status == models.StatusApproved {
			t.TotalSpent = money.Add(t.TotalSpent, e.Amount)
		}
	}
	t.Remaining = t.TotalAllocated - t.TotalSpent
	return t
}

// Summaries returns one row per budget, in the order given.
func Summaries(budgets []*models.Budget, expenses []*models.Expense) []BudgetRow {
	rows := make([]BudgetRow, len(budgets))
	for i, b := range budgets {
		spent := SpentFor(b, expenses)
		rows[i] = BudgetRow{
			Budget:      b,
			Spent:       spent,
			Remaining:   b.Allocated - spent,
			Utilization: percent(spent, b.Allocated),
		}
	}
	return rows
}

// ApprovedOnly returns the Approved expenses, preserving order.
func ApprovedOnly(expenses []*models.Expense) []*models.Expense {
	out := make([]*models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Status == models.StatusApproved {
			out = append(out, e)
		}
	}
	return out
}

func percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
