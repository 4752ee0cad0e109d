package paypal

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	"github.com/edulopespp/paypal-smart-payment-buttons/providers/devkit"
	goerrors "github.com/goliatone/go-errors"
)

func newTestClients(t *testing.T, scripts ...devkit.TransportScript) (*Clients, *devkit.FakeTransportAdapter) {
	t.Helper()
	adapter := devkit.NewFakeTransportAdapter("rest", scripts...)
	clients, err := NewClients(ClientConfig{
		BaseURL:         "https://api.paypal.test",
		SmartAPIBaseURL: "https://www.paypal.test",
		Transport:       adapter,
	})
	if err != nil {
		t.Fatalf("new clients: %v", err)
	}
	return clients, adapter
}

func TestClientConfig_NormalizesEnvironmentDefaults(t *testing.T) {
	live, err := ClientConfig{Environment: "LIVE"}.normalized()
	if err != nil {
		t.Fatalf("normalize live config: %v", err)
	}
	if live.BaseURL != liveAPIBaseURL || live.SmartAPIBaseURL != liveSmartBaseURL {
		t.Fatalf("expected live base urls, got %q %q", live.BaseURL, live.SmartAPIBaseURL)
	}
	if live.Transport == nil || live.Logger == nil {
		t.Fatalf("expected default transport and logger")
	}

	sandbox, err := ClientConfig{}.normalized()
	if err != nil {
		t.Fatalf("normalize sandbox config: %v", err)
	}
	if sandbox.BaseURL != sandboxAPIBaseURL || sandbox.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("expected sandbox defaults, got %#v", sandbox)
	}

	if _, err := (ClientConfig{Environment: "staging"}).normalized(); err == nil {
		t.Fatalf("expected unsupported environment error")
	}
	if _, err := (ClientConfig{BaseURL: "not a url"}).normalized(); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}

func TestAccessTokenClient_UsesClientCredentialsGrant(t *testing.T) {
	clients, adapter := newTestClients(t, devkit.AccessTokenScript("A21AA-token"))

	token, err := clients.AccessTokens.CreateAccessToken(context.Background(), " client-abc ")
	if err != nil {
		t.Fatalf("create access token: %v", err)
	}
	if token != "A21AA-token" {
		t.Fatalf("expected token A21AA-token, got %q", token)
	}

	requests := adapter.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	req := requests[0]
	if req.Method != http.MethodPost || req.URL != "https://api.paypal.test/v1/oauth2/token" {
		t.Fatalf("unexpected token request %s %s", req.Method, req.URL)
	}
	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-abc:"))
	if req.Headers["Authorization"] != expectedAuth {
		t.Fatalf("expected basic auth %q, got %q", expectedAuth, req.Headers["Authorization"])
	}
	if string(req.Body) != "grant_type=client_credentials" {
		t.Fatalf("expected client credentials form, got %q", string(req.Body))
	}
	if req.Timeout != defaultRequestTimeout {
		t.Fatalf("expected default request timeout, got %s", req.Timeout)
	}
}

func TestAccessTokenClient_RejectsMissingInputsAndTokens(t *testing.T) {
	clients, adapter := newTestClients(t, devkit.JSONScript(http.StatusOK, map[string]any{"token_type": "Bearer"}))

	if _, err := clients.AccessTokens.CreateAccessToken(context.Background(), "  "); !errors.Is(err, ErrClientIDRequired) {
		t.Fatalf("expected client id required, got %v", err)
	}
	if len(adapter.Requests()) != 0 {
		t.Fatalf("expected no upstream call without client id")
	}
	if _, err := clients.AccessTokens.CreateAccessToken(context.Background(), "client-abc"); !errors.Is(err, ErrAccessTokenMissing) {
		t.Fatalf("expected missing access token error, got %v", err)
	}
}

func TestOrderClient_PostsOrderWithAttributionHeaders(t *testing.T) {
	clients, adapter := newTestClients(t, devkit.CreatedOrderScript("5O190127TN364715T"))

	order := core.Order{
		Intent: "CAPTURE",
		PurchaseUnits: []core.PurchaseUnit{{
			Amount: core.Amount{CurrencyCode: "USD", Value: "0.01"},
		}},
		ApplicationContext: map[string]any{},
	}
	orderID, err := clients.Orders.CreateOrderID(context.Background(), order, core.CreateOrderIDOptions{
		FacilitatorAccessToken: "A21AA-token",
		PartnerAttributionID:   "PARTNER_BN",
	})
	if err != nil {
		t.Fatalf("create order id: %v", err)
	}
	if orderID != "5O190127TN364715T" {
		t.Fatalf("expected order id, got %q", orderID)
	}

	req := adapter.Requests()[0]
	if req.URL != "https://api.paypal.test/v2/checkout/orders" {
		t.Fatalf("unexpected order url %q", req.URL)
	}
	if req.Headers["Authorization"] != "Bearer A21AA-token" {
		t.Fatalf("expected bearer header, got %q", req.Headers["Authorization"])
	}
	if req.Headers[partnerAttributionIDHeader] != "PARTNER_BN" {
		t.Fatalf("expected partner attribution header, got %#v", req.Headers)
	}
	if req.Headers["Prefer"] != "return=minimal" {
		t.Fatalf("expected minimal representation header, got %#v", req.Headers)
	}

	var body map[string]any
	if err := adapter.DecodeRequestBody(0, &body); err != nil {
		t.Fatalf("decode order body: %v", err)
	}
	if body["intent"] != "CAPTURE" {
		t.Fatalf("expected intent CAPTURE in body, got %#v", body)
	}
}

func TestOrderClient_OmitsEmptyAttributionAndRequiresToken(t *testing.T) {
	clients, adapter := newTestClients(t, devkit.CreatedOrderScript("EC-1"))

	if _, err := clients.Orders.CreateOrderID(context.Background(), core.Order{}, core.CreateOrderIDOptions{}); !errors.Is(err, ErrAccessTokenRequired) {
		t.Fatalf("expected access token required, got %v", err)
	}
	if _, err := clients.Orders.CreateOrderID(context.Background(), core.Order{}, core.CreateOrderIDOptions{FacilitatorAccessToken: "tok"}); err != nil {
		t.Fatalf("create order id: %v", err)
	}
	if _, ok := adapter.Requests()[0].Headers[partnerAttributionIDHeader]; ok {
		t.Fatalf("expected no partner attribution header when unset")
	}
}

func TestOrderClient_MapsPayPalErrorBody(t *testing.T) {
	clients, _ := newTestClients(t, devkit.APIErrorScript(
		http.StatusUnprocessableEntity,
		"UNPROCESSABLE_ENTITY",
		"The requested action could not be performed.",
		"f1a2b3c4",
	))

	_, err := clients.Orders.CreateOrderID(context.Background(), core.Order{}, core.CreateOrderIDOptions{FacilitatorAccessToken: "tok"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error, got %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Name != "UNPROCESSABLE_ENTITY" || apiErr.DebugID != "f1a2b3c4" {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected request failed cause")
	}

	mapped := core.MapError(err)
	if mapped.Category != goerrors.CategoryBadInput || mapped.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected bad input 422 mapping, got %s %d", mapped.Category, mapped.Code)
	}
	if mapped.TextCode != core.ButtonErrorBadInput {
		t.Fatalf("expected bad input text code, got %q", mapped.TextCode)
	}
	if mapped.Metadata["debug_id"] != "f1a2b3c4" {
		t.Fatalf("expected debug id metadata, got %#v", mapped.Metadata)
	}
}

func TestAPIError_MapsUpstreamFailureToBadGateway(t *testing.T) {
	apiErr := &APIError{Operation: "create order", StatusCode: http.StatusServiceUnavailable, Cause: ErrRequestFailed}
	mapped := apiErr.ToServiceError()
	if mapped.Category != goerrors.CategoryExternal || mapped.Code != http.StatusBadGateway {
		t.Fatalf("expected external 502 mapping, got %s %d", mapped.Category, mapped.Code)
	}
	if mapped.TextCode != core.ButtonErrorUpstreamFailure {
		t.Fatalf("expected upstream failure text code, got %q", mapped.TextCode)
	}
}

func TestSmartAPIClients_ReadAcknowledgedToken(t *testing.T) {
	clients, adapter := newTestClients(t,
		devkit.SmartTokenScript("EC-BILLING"),
		devkit.SmartTokenScript("EC-CART"),
	)

	orderID, err := clients.BillingAgreements.BillingTokenToOrderID(context.Background(), "BA-123")
	if err != nil {
		t.Fatalf("billing token to order id: %v", err)
	}
	if orderID != "EC-BILLING" {
		t.Fatalf("expected EC-BILLING, got %q", orderID)
	}
	cartID, err := clients.Subscriptions.SubscriptionIDToCartID(context.Background(), "I-SUB/1")
	if err != nil {
		t.Fatalf("subscription id to cart id: %v", err)
	}
	if cartID != "EC-CART" {
		t.Fatalf("expected EC-CART, got %q", cartID)
	}

	requests := adapter.Requests()
	if requests[0].URL != "https://www.paypal.test/smart/api/payment/BA-123/ectoken" {
		t.Fatalf("unexpected billing url %q", requests[0].URL)
	}
	if requests[1].URL != "https://www.paypal.test/smart/api/subscription/I-SUB%2F1/cartid" {
		t.Fatalf("unexpected subscription url %q", requests[1].URL)
	}
}

func TestSmartAPIClients_RejectUnacknowledgedEnvelope(t *testing.T) {
	clients, _ := newTestClients(t,
		devkit.SmartErrorScript(),
		devkit.JSONScript(http.StatusOK, map[string]any{"ack": "success", "data": map[string]any{}}),
	)

	if _, err := clients.BillingAgreements.BillingTokenToOrderID(context.Background(), "BA-1"); !errors.Is(err, ErrSmartAPINotAcked) {
		t.Fatalf("expected not acked error, got %v", err)
	}
	if _, err := clients.Subscriptions.SubscriptionIDToCartID(context.Background(), "I-1"); !errors.Is(err, ErrSmartAPITokenAbsent) {
		t.Fatalf("expected token absent error, got %v", err)
	}
	if _, err := clients.Subscriptions.SubscriptionIDToCartID(context.Background(), ""); !errors.Is(err, ErrIdentifierRequired) {
		t.Fatalf("expected identifier required, got %v", err)
	}
}

func TestClients_ResolveOrderOverHTTP(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Paypal-Debug-Id", "dbg-1")
		switch r.URL.Path {
		case accessTokenPath:
			if !strings.Contains(string(body), "grant_type=client_credentials") {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"A21AA-http","token_type":"Bearer"}`))
		case ordersPath:
			if r.Header.Get("Authorization") != "Bearer A21AA-http" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"name":"AUTHENTICATION_FAILURE","message":"bad token"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"EC-HTTP","status":"CREATED"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	clients, err := NewClients(ClientConfig{
		BaseURL:         server.URL,
		SmartAPIBaseURL: server.URL,
		HTTPClient:      server.Client(),
	})
	if err != nil {
		t.Fatalf("new clients: %v", err)
	}

	cfg := core.DefaultConfig()
	cfg.ClientID = "client-http"
	resolver, err := core.NewOrderResolver(cfg, clients.ResolverOptions()...)
	if err != nil {
		t.Fatalf("new order resolver: %v", err)
	}
	orderID, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve order: %v", err)
	}
	if orderID != "EC-HTTP" {
		t.Fatalf("expected EC-HTTP, got %q", orderID)
	}
	if len(paths) != 2 || paths[0] != accessTokenPath || paths[1] != ordersPath {
		t.Fatalf("unexpected upstream paths %#v", paths)
	}
}
