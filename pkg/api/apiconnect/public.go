package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/pkg/api"
)

// PublicServiceName is the fully-qualified name of the service.
const PublicServiceName = "ledger.v1.PublicService"

// Procedure paths of the PublicService RPCs.
const (
	PublicServiceGetSnapshotProcedure    = "/ledger.v1.PublicService/GetSnapshot"
	PublicServiceSubmitFeedbackProcedure = "/ledger.v1.PublicService/SubmitFeedback"
	PublicServiceListFeedbackProcedure   = "/ledger.v1.PublicService/ListFeedback"
)

// PublicServiceHandler is implemented by the server side of PublicService, which
// serves the Approved-only transparency view and takes feedback.
type PublicServiceHandler interface {
	GetSnapshot(context.Context, *connect.Request[api.GetSnapshotRequest]) (*connect.Response[api.GetSnapshotResponse], error)
	SubmitFeedback(context.Context, *connect.Request[api.SubmitFeedbackRequest]) (*connect.Response[api.SubmitFeedbackResponse], error)
	ListFeedback(context.Context, *connect.Request[api.ListFeedbackRequest]) (*connect.Response[api.ListFeedbackResponse], error)
}

// NewPublicServiceHandler builds an HTTP handler serving every PublicService procedure.
// Mount it on the returned path prefix.
func NewPublicServiceHandler(svc PublicServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	handlers := map[string]http.Handler{
		PublicServiceGetSnapshotProcedure:    connect.NewUnaryHandler(PublicServiceGetSnapshotProcedure, svc.GetSnapshot, opts...),
		PublicServiceSubmitFeedbackProcedure: connect.NewUnaryHandler(PublicServiceSubmitFeedbackProcedure, svc.SubmitFeedback, opts...),
		PublicServiceListFeedbackProcedure:   connect.NewUnaryHandler(PublicServiceListFeedbackProcedure, svc.ListFeedback, opts...),
	}
	return "/" + PublicServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// PublicServiceClient is a client for PublicService.
type PublicServiceClient interface {
	GetSnapshot(context.Context, *connect.Request[api.GetSnapshotRequest]) (*connect.Response[api.GetSnapshotResponse], error)
	SubmitFeedback(context.Context, *connect.Request[api.SubmitFeedbackRequest]) (*connect.Response[api.SubmitFeedbackResponse], error)
	ListFeedback(context.Context, *connect.Request[api.ListFeedbackRequest]) (*connect.Response[api.ListFeedbackResponse], error)
}

// NewPublicServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080).
func NewPublicServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PublicServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &publicServiceClient{
		getSnapshot:    connect.NewClient[api.GetSnapshotRequest, api.GetSnapshotResponse](httpClient, baseURL+PublicServiceGetSnapshotProcedure, opts...),
		submitFeedback: connect.NewClient[api.SubmitFeedbackRequest, api.SubmitFeedbackResponse](httpClient, baseURL+PublicServiceSubmitFeedbackProcedure, opts...),
		listFeedback:   connect.NewClient[api.ListFeedbackRequest, api.ListFeedbackResponse](httpClient, baseURL+PublicServiceListFeedbackProcedure, opts...),
	}
}

type publicServiceClient struct {
	getSnapshot    *connect.Client[api.GetSnapshotRequest, api.GetSnapshotResponse]
	submitFeedback *connect.Client[api.SubmitFeedbackRequest, api.SubmitFeedbackResponse]
	listFeedback   *connect.Client[api.ListFeedbackRequest, api.ListFeedbackResponse]
}

func (c *publicServiceClient) GetSnapshot(ctx context.Context, req *connect.Request[api.GetSnapshotRequest]) (*connect.Response[api.GetSnapshotResponse], error) {
	return c.getSnapshot.CallUnary(ctx, req)
}

func (c *publicServiceClient) SubmitFeedback(ctx context.Context, req *connect.Request[api.SubmitFeedbackRequest]) (*connect.Response[api.SubmitFeedbackResponse], error) {
	return c.submitFeedback.CallUnary(ctx, req)
}

func (c *publicServiceClient) ListFeedback(ctx context.Context, req *connect.Request[api.ListFeedbackRequest]) (*connect.Response[api.ListFeedbackResponse], error) {
	return c.listFeedback.CallUnary(ctx, req)
}
