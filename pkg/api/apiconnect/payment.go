package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clarity/pkg/api"
)

// PaymentServiceName is the fully-qualified name of the service.
const PaymentServiceName = "ledger.v1.PaymentService"

// Procedure paths of the PaymentService RPCs.
const (
	PaymentServiceRecordPaymentProcedure = "/ledger.v1.PaymentService/RecordPayment"
	PaymentServiceListPaymentsProcedure  = "/ledger.v1.PaymentService/ListPayments"
)

// PaymentServiceHandler is implemented by the server side of PaymentService, which
// records funds received by an institution.
type PaymentServiceHandler interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
}

// NewPaymentServiceHandler builds an HTTP handler serving every PaymentService procedure.
// Mount it on the returned path prefix.
func NewPaymentServiceHandler(svc PaymentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	handlers := map[string]http.Handler{
		PaymentServiceRecordPaymentProcedure: connect.NewUnaryHandler(PaymentServiceRecordPaymentProcedure, svc.RecordPayment, opts...),
		PaymentServiceListPaymentsProcedure:  connect.NewUnaryHandler(PaymentServiceListPaymentsProcedure, svc.ListPayments, opts...),
	}
	return "/" + PaymentServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// PaymentServiceClient is a client for PaymentService.
type PaymentServiceClient interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
}

// NewPaymentServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080).
func NewPaymentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PaymentServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &paymentServiceClient{
		recordPayment: connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+PaymentServiceRecordPaymentProcedure, opts...),
		listPayments:  connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+PaymentServiceListPaymentsProcedure, opts...),
	}
}

type paymentServiceClient struct {
	recordPayment *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	listPayments  *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
}

func (c *paymentServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}
