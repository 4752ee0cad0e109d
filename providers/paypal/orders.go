package paypal

import (
	"context"
	"net/http"
	"strings"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
)

const (
	ordersPath                 = "/v2/checkout/orders"
	partnerAttributionIDHeader = "PayPal-Partner-Attribution-Id"
)

// OrderClient submits normalized orders to the checkout orders api.
type OrderClient struct {
	api apiClient
}

func NewOrderClient(cfg ClientConfig) (*OrderClient, error) {
	api, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OrderClient{api: api}, nil
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *OrderClient) CreateOrderID(ctx context.Context, order core.Order, opts core.CreateOrderIDOptions) (string, error) {
	accessToken := strings.TrimSpace(opts.FacilitatorAccessToken)
	if accessToken == "" {
		return "", ErrAccessTokenRequired
	}
	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
		"Prefer":        "return=minimal",
	}
	if partnerID := strings.TrimSpace(opts.PartnerAttributionID); partnerID != "" {
		headers[partnerAttributionIDHeader] = partnerID
	}
	req, err := jsonRequest(http.MethodPost, c.api.config.BaseURL+ordersPath, order, headers)
	if err != nil {
		return "", &APIError{Operation: "create order", Message: "encode order", Cause: err}
	}

	var payload createOrderResponse
	if err := c.api.send(ctx, "create order", req, &payload); err != nil {
		return "", err
	}
	orderID := strings.TrimSpace(payload.ID)
	if orderID == "" {
		return "", &APIError{Operation: "create order", Cause: ErrOrderIDMissing}
	}
	return orderID, nil
}

var _ core.OrderIDCreator = (*OrderClient)(nil)
