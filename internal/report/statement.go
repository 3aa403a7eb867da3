// Package report renders budget utilization statements as PDF.
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/money"
	"github.com/mmynk/clarity/internal/tenant"
)

// Statements builds utilization statements for an institution.
type Statements struct {
	budgets *ledger.Budgets
	tenants *tenant.Directory
	now     func() time.Time
}

// NewStatements creates a statement builder.
func NewStatements(budgets *ledger.Budgets, tenants *tenant.Directory) *Statements {
	return &Statements{budgets: budgets, tenants: tenants, now: time.Now}
}

// UtilizationStatement renders the actor's institution's budget figures.
// Authorization follows BudgetSummaries.
func (s *Statements) UtilizationStatement(ctx context.Context, actor *models.User) ([]byte, error) {
	dash, err := s.budgets.BudgetSummaries(ctx, actor)
	if err != nil {
		return nil, err
	}
	inst, err := s.tenants.ResolveInstitution(ctx, actor.InstitutionID)
	if err != nil {
		return nil, err
	}
	return BuildUtilizationPDF(inst.Name, s.now(), dash)
}

// BuildUtilizationPDF lays out totals, the department breakdown and one row
// per budget.
func BuildUtilizationPDF(institution string, generated time.Time, dash *ledger.Dashboard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(institution+" Budget Utilization", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, institution)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, "Budget Utilization Statement")
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", generated.Format("02 Jan 2006 15:04 MST")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Totals")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(60, 7, "Allocated")
	pdf.Cell(50, 7, "Rs. "+money.Format(dash.Totals.TotalAllocated))
	pdf.Ln(7)
	pdf.Cell(60, 7, "Spent (approved)")
	pdf.Cell(50, 7, "Rs. "+money.Format(dash.Totals.TotalSpent))
	pdf.Ln(7)
	pdf.Cell(60, 7, "Remaining")
	pdf.Cell(50, 7, "Rs. "+money.Format(dash.Totals.Remaining))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "By Department")
	pdf.Ln(8)
	header(pdf, []float64{70, 40, 40, 30}, "Department", "Allocated", "Spent", "%")
	pdf.SetFont("Helvetica", "", 10)
	for _, d := range dash.Departments {
		pdf.Cell(70, 7, d.Department)
		pdf.Cell(40, 7, money.Format(d.Allocated))
		pdf.Cell(40, 7, money.Format(d.Spent))
		pdf.Cell(30, 7, fmt.Sprintf("%.1f%%", d.Utilization))
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Budgets")
	pdf.Ln(8)
	header(pdf, []float64{60, 32, 32, 32, 24}, "Budget", "Allocated", "Spent", "Remaining", "%")
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range dash.Rows {
		pdf.Cell(60, 7, r.Budget.Title)
		pdf.Cell(32, 7, money.Format(r.Budget.Allocated))
		pdf.Cell(32, 7, money.Format(r.Spent))
		pdf.Cell(32, 7, money.Format(r.Remaining))
		pdf.Cell(24, 7, fmt.Sprintf("%.1f%%", r.Utilization))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}
	return buf.Bytes(), nil
}

func header(pdf *gofpdf.Fpdf, widths []float64, cols ...string) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, c := range cols {
		pdf.Cell(widths[i], 7, c)
	}
	pdf.Ln(7)
}
