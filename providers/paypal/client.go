package paypal

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
)

type apiClient struct {
	config ClientConfig
}

func newAPIClient(cfg ClientConfig) (apiClient, error) {
	normalized, err := cfg.normalized()
	if err != nil {
		return apiClient{}, err
	}
	return apiClient{config: normalized}, nil
}

// send executes req and decodes a 2xx body into out. Other statuses become an
// APIError carrying the PayPal error body.
func (c apiClient) send(ctx context.Context, operation string, req core.TransportRequest, out any) error {
	if req.Timeout <= 0 {
		req.Timeout = c.config.RequestTimeout
	}
	if req.MaxResponseBodyBytes <= 0 {
		req.MaxResponseBodyBytes = c.config.MaxResponseBodyBytes
	}
	res, err := c.config.Transport.Do(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		apiErr := newAPIError(operation, res)
		c.config.Logger.Warn("paypal call rejected",
			"operation", operation,
			"status_code", res.StatusCode,
			"debug_id", apiErr.DebugID,
		)
		return apiErr
	}
	if out == nil || len(res.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return &APIError{
			Operation:  operation,
			StatusCode: res.StatusCode,
			Message:    "decode response",
			Cause:      err,
		}
	}
	return nil
}

func jsonRequest(method string, url string, payload any, headers map[string]string) (core.TransportRequest, error) {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return core.TransportRequest{}, err
		}
		body = encoded
	}
	allHeaders := map[string]string{"Content-Type": "application/json"}
	for key, value := range headers {
		allHeaders[key] = value
	}
	return core.TransportRequest{
		Method:  method,
		URL:     url,
		Headers: allHeaders,
		Body:    body,
	}, nil
}
