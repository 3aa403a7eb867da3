package models

import "slices"

// Departments is the fixed vocabulary for Budget.Department.
var Departments = []string{
	"Library",
	"Sports",
	"Food",
	"Maintenance",
	"Lab",
	"Events",
	"Transport",
	"IT Services",
	"Student Welfare",
	"Administration",
	"Hostel",
	"Academics",
	"Research & Development",
	"Infrastructure & Construction",
}

// ExpenseCategories is the fixed vocabulary for Expense.Category.
var ExpenseCategories = []string{
	"Supplies",
	"Services",
	"Equipment",
	"Travel",
	"Utilities",
	"Miscellaneous",
}

// IsDepartment reports whether s is in Departments.
func IsDepartment(s string) bool {
	return slices.Contains(Departments, s)
}

// IsExpenseCategory reports whether s is in ExpenseCategories.
func IsExpenseCategory(s string) bool {
	return slices.Contains(ExpenseCategories, s)
}
