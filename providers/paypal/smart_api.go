package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
)

const smartAPIAckSuccess = "success"

type smartAPIEnvelope struct {
	Ack  string          `json:"ack"`
	Data json.RawMessage `json:"data"`
}

type smartAPITokenData struct {
	Token string `json:"token"`
}

// callSmartTokenAPI posts to a smart api path and returns data.token.
func callSmartTokenAPI(ctx context.Context, api apiClient, operation string, path string) (string, error) {
	req, err := jsonRequest(http.MethodPost, api.config.SmartAPIBaseURL+path, nil, nil)
	if err != nil {
		return "", err
	}
	var envelope smartAPIEnvelope
	if err := api.send(ctx, operation, req, &envelope); err != nil {
		return "", err
	}
	if !strings.EqualFold(strings.TrimSpace(envelope.Ack), smartAPIAckSuccess) {
		return "", &APIError{Operation: operation, Name: envelope.Ack, Cause: ErrSmartAPINotAcked}
	}
	var data smartAPITokenData
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return "", &APIError{Operation: operation, Message: "decode data", Cause: err}
		}
	}
	token := strings.TrimSpace(data.Token)
	if token == "" {
		return "", &APIError{Operation: operation, Cause: ErrSmartAPITokenAbsent}
	}
	return token, nil
}

// BillingAgreementClient exchanges a billing agreement token for the EC token
// used as order id.
type BillingAgreementClient struct {
	api apiClient
}

func NewBillingAgreementClient(cfg ClientConfig) (*BillingAgreementClient, error) {
	api, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &BillingAgreementClient{api: api}, nil
}

func (c *BillingAgreementClient) BillingTokenToOrderID(ctx context.Context, billingToken string) (string, error) {
	billingToken = strings.TrimSpace(billingToken)
	if billingToken == "" {
		return "", ErrIdentifierRequired
	}
	path := "/smart/api/payment/" + url.PathEscape(billingToken) + "/ectoken"
	return callSmartTokenAPI(ctx, c.api, "billing token to order id", path)
}

// SubscriptionClient exchanges a subscription id for its cart id.
type SubscriptionClient struct {
	api apiClient
}

func NewSubscriptionClient(cfg ClientConfig) (*SubscriptionClient, error) {
	api, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &SubscriptionClient{api: api}, nil
}

func (c *SubscriptionClient) SubscriptionIDToCartID(ctx context.Context, subscriptionID string) (string, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return "", ErrIdentifierRequired
	}
	path := "/smart/api/subscription/" + url.PathEscape(subscriptionID) + "/cartid"
	return callSmartTokenAPI(ctx, c.api, "subscription id to cart id", path)
}

var (
	_ core.BillingTokenTranslator = (*BillingAgreementClient)(nil)
	_ core.SubscriptionTranslator = (*SubscriptionClient)(nil)
)
