package transport

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	goerrors "github.com/goliatone/go-errors"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(TextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(TextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// StatusCategory classifies an upstream HTTP status.
func StatusCategory(status int) goerrors.Category {
	switch {
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status >= 400 && status < 500:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryExternal
	}
}

// StatusError returns nil for 2xx responses and a go-errors envelope carrying
// the upstream status otherwise.
func StatusError(operation string, res core.TransportResponse) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "request"
	}
	category := StatusCategory(res.StatusCode)
	code := res.StatusCode
	if category == goerrors.CategoryExternal || code == 0 {
		code = http.StatusBadGateway
	}
	metadata := map[string]any{
		"operation":       operation,
		"upstream_status": res.StatusCode,
	}
	if debugID, ok := res.Metadata["debug_id"].(string); ok && debugID != "" {
		metadata["debug_id"] = debugID
	}
	return transportError(
		fmt.Sprintf("transport: %s returned status %d", operation, res.StatusCode),
		category,
		code,
		metadata,
	)
}

// TextCode maps an error category to its stable text code.
func TextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.ButtonErrorBadInput
	case goerrors.CategoryAuth:
		return core.ButtonErrorUnauthorized
	case goerrors.CategoryAuthz:
		return core.ButtonErrorForbidden
	case goerrors.CategoryRateLimit:
		return core.ButtonErrorRateLimited
	case goerrors.CategoryExternal:
		return core.ButtonErrorUpstreamFailure
	default:
		return core.ButtonErrorInternal
	}
}
