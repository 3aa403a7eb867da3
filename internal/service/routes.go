package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/internal/auth"
	"github.com/mmynk/clarity/internal/metrics"
	"github.com/mmynk/clarity/internal/middleware"
	"github.com/mmynk/clarity/pkg/api/apiconnect"
)

// Handlers are the services served by one mux.
type Handlers struct {
	Auth    *AuthService
	Budget  *BudgetService
	Expense *ExpenseService
	Payment *PaymentService
	Public  *PublicService
	Insight *InsightService
}

// Mount registers every service on mux. Metrics wrap authentication, which
// wraps request logging. AuthService and PublicService accept anonymous
// calls; the rest require a bearer token.
func Mount(mux *http.ServeMux, h Handlers, jwtManager *auth.JWTManager, users middleware.UserResolver, m *metrics.Metrics) {
	metricsInterceptor := middleware.MetricsInterceptor(m)
	loggingInterceptor := middleware.LoggingInterceptor()

	open := connect.WithInterceptors(metricsInterceptor, middleware.OptionalAuth(jwtManager, users), loggingInterceptor)
	closed := connect.WithInterceptors(metricsInterceptor, middleware.RequireAuth(jwtManager, users), loggingInterceptor)

	mux.Handle(apiconnect.NewAuthServiceHandler(h.Auth, open))
	mux.Handle(apiconnect.NewPublicServiceHandler(h.Public, open))
	mux.Handle(apiconnect.NewBudgetServiceHandler(h.Budget, closed))
	mux.Handle(apiconnect.NewExpenseServiceHandler(h.Expense, closed))
	mux.Handle(apiconnect.NewPaymentServiceHandler(h.Payment, closed))
	mux.Handle(apiconnect.NewInsightServiceHandler(h.Insight, closed))
}
