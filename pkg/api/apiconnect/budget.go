package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/pkg/api"
)

// BudgetServiceName is the fully-qualified name of the service.
const BudgetServiceName = "ledger.v1.BudgetService"

// Procedure paths of the BudgetService RPCs.
const (
	BudgetServiceCreateBudgetProcedure       = "/ledger.v1.BudgetService/CreateBudget"
	BudgetServiceGetBudgetProcedure          = "/ledger.v1.BudgetService/GetBudget"
	BudgetServiceListBudgetsProcedure        = "/ledger.v1.BudgetService/ListBudgets"
	BudgetServiceGetBudgetSummariesProcedure = "/ledger.v1.BudgetService/GetBudgetSummaries"
)

// BudgetServiceHandler is implemented by the server side of BudgetService, which
// creates and reads budgets and their projected figures.
type BudgetServiceHandler interface {
	CreateBudget(context.Context, *connect.Request[api.CreateBudgetRequest]) (*connect.Response[api.CreateBudgetResponse], error)
	GetBudget(context.Context, *connect.Request[api.GetBudgetRequest]) (*connect.Response[api.GetBudgetResponse], error)
	ListBudgets(context.Context, *connect.Request[api.ListBudgetsRequest]) (*connect.Response[api.ListBudgetsResponse], error)
	GetBudgetSummaries(context.Context, *connect.Request[api.GetBudgetSummariesRequest]) (*connect.Response[api.GetBudgetSummariesResponse], error)
}

// NewBudgetServiceHandler builds an HTTP handler serving every BudgetService procedure.
// Mount it on the returned path prefix.
func NewBudgetServiceHandler(svc BudgetServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	handlers := map[string]http.Handler{
		BudgetServiceCreateBudgetProcedure:       connect.NewUnaryHandler(BudgetServiceCreateBudgetProcedure, svc.CreateBudget, opts...),
		BudgetServiceGetBudgetProcedure:          connect.NewUnaryHandler(BudgetServiceGetBudgetProcedure, svc.GetBudget, opts...),
		BudgetServiceListBudgetsProcedure:        connect.NewUnaryHandler(BudgetServiceListBudgetsProcedure, svc.ListBudgets, opts...),
		BudgetServiceGetBudgetSummariesProcedure: connect.NewUnaryHandler(BudgetServiceGetBudgetSummariesProcedure, svc.GetBudgetSummaries, opts...),
	}
	return "/" + BudgetServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// BudgetServiceClient is a client for BudgetService.
type BudgetServiceClient interface {
	CreateBudget(context.Context, *connect.Request[api.CreateBudgetRequest]) (*connect.Response[api.CreateBudgetResponse], error)
	GetBudget(context.Context, *connect.Request[api.GetBudgetRequest]) (*connect.Response[api.GetBudgetResponse], error)
	ListBudgets(context.Context, *connect.Request[api.ListBudgetsRequest]) (*connect.Response[api.ListBudgetsResponse], error)
	GetBudgetSummaries(context.Context, *connect.Request[api.GetBudgetSummariesRequest]) (*connect.Response[api.GetBudgetSummariesResponse], error)
}

// NewBudgetServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080).
func NewBudgetServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BudgetServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &budgetServiceClient{
		createBudget:       connect.NewClient[api.CreateBudgetRequest, api.CreateBudgetResponse](httpClient, baseURL+BudgetServiceCreateBudgetProcedure, opts...),
		getBudget:          connect.NewClient[api.GetBudgetRequest, api.GetBudgetResponse](httpClient, baseURL+BudgetServiceGetBudgetProcedure, opts...),
		listBudgets:        connect.NewClient[api.ListBudgetsRequest, api.ListBudgetsResponse](httpClient, baseURL+BudgetServiceListBudgetsProcedure, opts...),
		getBudgetSummaries: connect.NewClient[api.GetBudgetSummariesRequest, api.GetBudgetSummariesResponse](httpClient, baseURL+BudgetServiceGetBudgetSummariesProcedure, opts...),
	}
}

type budgetServiceClient struct {
	createBudget       *connect.Client[api.CreateBudgetRequest, api.CreateBudgetResponse]
	getBudget          *connect.Client[api.GetBudgetRequest, api.GetBudgetResponse]
	listBudgets        *connect.Client[api.ListBudgetsRequest, api.ListBudgetsResponse]
	getBudgetSummaries *connect.Client[api.GetBudgetSummariesRequest, api.GetBudgetSummariesResponse]
}

func (c *budgetServiceClient) CreateBudget(ctx context.Context, req *connect.Request[api.CreateBudgetRequest]) (*connect.Response[api.CreateBudgetResponse], error) {
	return c.createBudget.CallUnary(ctx, req)
}

func (c *budgetServiceClient) GetBudget(ctx context.Context, req *connect.Request[api.GetBudgetRequest]) (*connect.Response[api.GetBudgetResponse], error) {
	return c.getBudget.CallUnary(ctx, req)
}

func (c *budgetServiceClient) ListBudgets(ctx context.Context, req *connect.Request[api.ListBudgetsRequest]) (*connect.Response[api.ListBudgetsResponse], error) {
	return c.listBudgets.CallUnary(ctx, req)
}

func (c *budgetServiceClient) GetBudgetSummaries(ctx context.Context, req *connect.Request[api.GetBudgetSummariesRequest]) (*connect.Response[api.GetBudgetSummariesResponse], error) {
	return c.getBudgetSummaries.CallUnary(ctx, req)
}
