// Package assistant forwards free-form questions to an external
// text-generation service together with a read-only snapshot of budgets and
// Approved expenses. The service never receives anything it could use to
// change the ledger.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/ledger"
	"github.com/mmynk/clarity/internal/models"
	"github.com/mmynk/clarity/internal/money"
	"github.com/mmynk/clarity/internal/public"
)

// NoDataAnswer is returned without calling the service when the institution
// has neither budgets nor Approved expenses.
const NoDataAnswer = "I can't answer questions because there is no financial data available yet."

// ErrUnavailable means no assistant endpoint is configured or it failed.
var ErrUnavailable = errors.New("assistant unavailable")

// SnapshotSource supplies the Approved-only view of an institution.
type SnapshotSource interface {
	Snapshot(ctx context.Context, institutionID string, filter public.Filter) (*public.Snapshot, error)
}

type budgetView struct {
	Title      string `json:"title"`
	Department string `json:"department"`
	Allocated  string `json:"allocated"`
}

type expenseView struct {
	Title       string `json:"title"`
	Vendor      string `json:"vendor"`
	Category    string `json:"category"`
	Department  string `json:"department"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	PaymentMode string `json:"payment_mode"`
}

type queryRequest struct {
	Budgets  []budgetView  `json:"budgets"`
	Expenses []expenseView `json:"expenses"`
	Query    string        `json:"query"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

// Client calls the assistant endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	source   SnapshotSource
}

// NewClient creates a client posting to endpoint. An empty endpoint makes
// every question with data fail with ErrUnavailable.
func NewClient(endpoint string, timeout time.Duration, source SnapshotSource) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		source:   source,
	}
}

// Ask answers question from the actor's institution's Approved data.
func (c *Client) Ask(ctx context.Context, actor *models.User, question string) (string, error) {
	if err := auth.Authorize(actor, models.RoleAdmin, models.RoleReviewer); err != nil {
		return "", err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", ledger.ErrValidation)
	}

	snap, err := c.source.Snapshot(ctx, actor.InstitutionID, public.Filter{})
	if err != nil {
		return "", err
	}
	if len(snap.Budgets) == 0 && len(snap.Expenses) == 0 {
		return NoDataAnswer, nil
	}
	if c.endpoint == "" {
		return "", fmt.Errorf("%w: no endpoint configured", ErrUnavailable)
	}

	body, err := json.Marshal(buildRequest(snap, question))
	if err != nil {
		return "", fmt.Errorf("failed to encode assistant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build assistant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Assistant request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("Assistant returned error", "status", resp.StatusCode, "body", string(msg))
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: bad response: %v", ErrUnavailable, err)
	}

	slog.Info("Assistant answered", "user_id", actor.ID, "institution_id", actor.InstitutionID)
	return out.Answer, nil
}

func buildRequest(snap *public.Snapshot, question string) queryRequest {
	req := queryRequest{
		Budgets:  make([]budgetView, 0, len(snap.Budgets)),
		Expenses: make([]expenseView, 0, len(snap.Expenses)),
		Query:    question,
	}
	for _, b := range snap.Budgets {
		req.Budgets = append(req.Budgets, budgetView{
			Title:      b.Title,
			Department: b.Department,
			Allocated:  money.Format(b.Allocated),
		})
	}
	for _, e := range snap.Expenses {
		req.Expenses = append(req.Expenses, expenseView{
			Title:       e.Title,
			Vendor:      e.Vendor,
			Category:    e.Category,
			Department:  e.Department,
			Amount:      money.Format(e.Amount),
			Date:        e.Date.Format(models.DateLayout),
			PaymentMode: string(e.PaymentMode),
		})
	}
	return req
}
