package paypal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	"github.com/edulopespp/paypal-smart-payment-buttons/transport"
	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrRequestFailed       = errors.New("providers/paypal: request failed")
	ErrAccessTokenMissing  = errors.New("providers/paypal: response missing access token")
	ErrOrderIDMissing      = errors.New("providers/paypal: response missing order id")
	ErrSmartAPINotAcked    = errors.New("providers/paypal: smart api call was not acknowledged")
	ErrSmartAPITokenAbsent = errors.New("providers/paypal: smart api response missing token")
	ErrClientIDRequired    = errors.New("providers/paypal: client id is required")
	ErrAccessTokenRequired = errors.New("providers/paypal: facilitator access token is required")
	ErrIdentifierRequired  = errors.New("providers/paypal: identifier is required")
)

// APIError describes a failed PayPal call. Name and Message come from the PayPal
// error body when one was returned.
type APIError struct {
	Operation  string
	StatusCode int
	Name       string
	Message    string
	DebugID    string
	Cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return ErrRequestFailed.Error()
	}
	base := "providers/paypal: " + strings.TrimSpace(e.Operation)
	if strings.TrimSpace(e.Name) != "" {
		base += ": " + strings.TrimSpace(e.Name)
	}
	if strings.TrimSpace(e.Message) != "" {
		base += ": " + strings.TrimSpace(e.Message)
	}
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if strings.TrimSpace(e.DebugID) != "" {
		base += " debug_id=" + strings.TrimSpace(e.DebugID)
	}
	if e.Cause != nil {
		base += ": " + e.Cause.Error()
	}
	return base
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *APIError) ToServiceError() *goerrors.Error {
	if e == nil {
		return nil
	}
	category := goerrors.CategoryExternal
	code := http.StatusBadGateway
	if e.StatusCode > 0 {
		category = transport.StatusCategory(e.StatusCode)
		if category != goerrors.CategoryExternal {
			code = e.StatusCode
		}
	}
	metadata := map[string]any{"operation": e.Operation}
	if e.StatusCode > 0 {
		metadata["upstream_status"] = e.StatusCode
	}
	if e.Name != "" {
		metadata["paypal_error"] = e.Name
	}
	if e.DebugID != "" {
		metadata["debug_id"] = e.DebugID
	}
	return goerrors.Wrap(e, category, e.Error()).
		WithCode(code).
		WithTextCode(transport.TextCode(category)).
		WithMetadata(metadata)
}

type errorBody struct {
	Name             string `json:"name"`
	Message          string `json:"message"`
	DebugID          string `json:"debug_id"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func newAPIError(operation string, res core.TransportResponse) *APIError {
	apiErr := &APIError{
		Operation:  operation,
		StatusCode: res.StatusCode,
		Cause:      ErrRequestFailed,
	}
	if debugID, ok := res.Metadata["debug_id"].(string); ok {
		apiErr.DebugID = debugID
	}
	var body errorBody
	if len(res.Body) > 0 && json.Unmarshal(res.Body, &body) == nil {
		apiErr.Name = firstNonEmpty(body.Name, body.Error)
		apiErr.Message = firstNonEmpty(body.Message, body.ErrorDescription)
		apiErr.DebugID = firstNonEmpty(body.DebugID, apiErr.DebugID)
	}
	return apiErr
}
