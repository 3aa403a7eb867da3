package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/pkg/api"
)

// InsightServiceName is the fully-qualified name of the service.
const InsightServiceName = "ledger.v1.InsightService"

// Procedure paths of the InsightService RPCs.
const (
	InsightServiceAskProcedure                     = "/ledger.v1.InsightService/Ask"
	InsightServiceGetUtilizationStatementProcedure = "/ledger.v1.InsightService/GetUtilizationStatement"
)

// InsightServiceHandler is implemented by the server side of InsightService, which
// answers questions and renders statements over Approved data.
type InsightServiceHandler interface {
	Ask(context.Context, *connect.Request[api.AskRequest]) (*connect.Response[api.AskResponse], error)
	GetUtilizationStatement(context.Context, *connect.Request[api.GetUtilizationStatementRequest]) (*connect.Response[api.GetUtilizationStatementResponse], error)
}

// NewInsightServiceHandler builds an HTTP handler serving every InsightService procedure.
// Mount it on the returned path prefix.
func NewInsightServiceHandler(svc InsightServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	handlers := map[string]http.Handler{
		InsightServiceAskProcedure:                     connect.NewUnaryHandler(InsightServiceAskProcedure, svc.Ask, opts...),
		InsightServiceGetUtilizationStatementProcedure: connect.NewUnaryHandler(InsightServiceGetUtilizationStatementProcedure, svc.GetUtilizationStatement, opts...),
	}
	return "/" + InsightServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// InsightServiceClient is a client for InsightService.
type InsightServiceClient interface {
	Ask(context.Context, *connect.Request[api.AskRequest]) (*connect.Response[api.AskResponse], error)
	GetUtilizationStatement(context.Context, *connect.Request[api.GetUtilizationStatementRequest]) (*connect.Response[api.GetUtilizationStatementResponse], error)
}

// NewInsightServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080).
func NewInsightServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) InsightServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &insightServiceClient{
		ask:                     connect.NewClient[api.AskRequest, api.AskResponse](httpClient, baseURL+InsightServiceAskProcedure, opts...),
		getUtilizationStatement: connect.NewClient[api.GetUtilizationStatementRequest, api.GetUtilizationStatementResponse](httpClient, baseURL+InsightServiceGetUtilizationStatementProcedure, opts...),
	}
}

type insightServiceClient struct {
	ask                     *connect.Client[api.AskRequest, api.AskResponse]
	getUtilizationStatement *connect.Client[api.GetUtilizationStatementRequest, api.GetUtilizationStatementResponse]
}

func (c *insightServiceClient) Ask(ctx context.Context, req *connect.Request[api.AskRequest]) (*connect.Response[api.AskResponse], error) {
	return c.ask.CallUnary(ctx, req)
}

func (c *insightServiceClient) GetUtilizationStatement(ctx context.Context, req *connect.Request[api.GetUtilizationStatementRequest]) (*connect.Response[api.GetUtilizationStatementResponse], error) {
	return c.getUtilizationStatement.CallUnary(ctx, req)
}
