package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/money"
	"github.com/mmynk/clarity/internal/tenant"
)

type seedBudget struct {
	title      string
	department string
	rupees     float64
}

var sampleBudgets = []seedBudget{
	{"Annual Library Fund", "Library", 500000},
	{"University Sports Budget", "Sports", 1200000},
	{"Campus Food Services", "Food", 800000},
	{"Lab Equipment & Supplies", "Lab", 2500000},
	{`Annual Tech Fest "Innovate"`, "Events", 750000},
	{"New Building Construction Phase 1", "Infrastructure & Construction", 50000000},
	{"Faculty Development Programs", "Academics", 600000},
	{"Administrative Overhead", "Administration", 1500000},
}

var (
	flagSeedInstitution string
	flagSeedAdminEmail  string
	flagSeedReviewer    string
	flagSeedPassword    string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a sample institution with an Admin, a Reviewer and budgets",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&flagSeedInstitution, "institution", "Clarity University", "Institution name")
	seedCmd.Flags().StringVar(&flagSeedAdminEmail, "admin-email", "admin@clarity.edu", "Admin login")
	seedCmd.Flags().StringVar(&flagSeedReviewer, "reviewer-email", "evelyn.reed@clarity.edu", "Reviewer login")
	seedCmd.Flags().StringVar(&flagSeedPassword, "password", "clarity-demo", "Password for both seeded accounts")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	authenticator := auth.NewPasswordAuthenticator(store, tenant.NewDirectory(store))

	admin, err := authenticator.Register(ctx, "Administrator", flagSeedAdminEmail, flagSeedPassword, flagSeedInstitution)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := authenticator.CreateUser(ctx, admin, "Dr. Evelyn Reed", flagSeedReviewer, flagSeedPassword, models.RoleReviewer); err != nil {
		return fmt.Errorf("seed reviewer: %w", err)
	}

	budgets := ledger.NewBudgets(store)
	for _, b := range sampleBudgets {
		allocated, err := money.ToMinor(b.rupees)
		if err != nil {
			return err
		}
		if _, err := budgets.CreateBudget(ctx, admin, ledger.BudgetInput{
			Title:      b.title,
			Department: b.department,
			Allocated:  allocated,
		}); err != nil {
			return fmt.Errorf("seed budget %q: %w", b.title, err)
		}
	}

	slog.Info("Seed complete",
		"institution_id", admin.InstitutionID,
		"admin", flagSeedAdminEmail,
		"reviewer", flagSeedReviewer,
		"budgets", len(sampleBudgets),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s (institution %s)\n", flagSeedInstitution, admin.InstitutionID)
	return nil
}
