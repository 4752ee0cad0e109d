package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ButtonErrorBadInput          = "BUTTON_BAD_INPUT"
	ButtonErrorIntentMismatch    = "BUTTON_INTENT_MISMATCH"
	ButtonErrorCurrencyMismatch  = "BUTTON_CURRENCY_MISMATCH"
	ButtonErrorMerchantIDMissing = "BUTTON_MERCHANT_ID_REQUIRED"
	ButtonErrorPayeeMismatch     = "BUTTON_PAYEE_MISMATCH"
	ButtonErrorOrderIDInvalid    = "BUTTON_ORDER_ID_INVALID"
	ButtonErrorUnauthorized      = "BUTTON_UNAUTHORIZED"
	ButtonErrorForbidden         = "BUTTON_FORBIDDEN"
	ButtonErrorRateLimited       = "BUTTON_RATE_LIMITED"
	ButtonErrorUpstreamFailure   = "BUTTON_UPSTREAM_FAILURE"
	ButtonErrorInternal          = "BUTTON_INTERNAL_ERROR"
)

var (
	ErrUnexpectedIntent      = errors.New("core: unexpected intent")
	ErrUnexpectedCurrency    = errors.New("core: unexpected currency")
	ErrMerchantIDRequired    = errors.New("core: merchant id must be configured")
	ErrPayeeMismatch         = errors.New("core: payee merchant id mismatch")
	ErrPurchaseUnitsRequired = errors.New("core: purchase units are required")

	ErrOrderIDMissing       = errors.New("core: expected an order id")
	ErrApprovedPaymentToken = errors.New("core: approved payment token passed as order id")
)

type NormalizationErrorKind string

const (
	NormalizationIntentMismatch        NormalizationErrorKind = "intent_mismatch"
	NormalizationCurrencyMismatch      NormalizationErrorKind = "currency_mismatch"
	NormalizationMerchantIDRequired    NormalizationErrorKind = "merchant_id_required"
	NormalizationPayeeMismatch         NormalizationErrorKind = "payee_mismatch"
	NormalizationPurchaseUnitsRequired NormalizationErrorKind = "purchase_units_required"
)

// NormalizationError reports an integrator misconfiguration found while pinning
// an order draft to the merchant configuration. Error returns the message meant
// for the integrator.
type NormalizationError struct {
	Kind     NormalizationErrorKind
	Unit     int
	Value    string
	Expected string
}

func (e *NormalizationError) Error() string {
	if e == nil {
		return ErrPurchaseUnitsRequired.Error()
	}
	switch e.Kind {
	case NormalizationIntentMismatch:
		return fmt.Sprintf(
			"Unexpected intent: %s passed to order.create. Please ensure you are passing /sdk/js?%s=%s in the paypal script tag.",
			e.Value, QueryKeyIntent, strings.ToLower(e.Value),
		)
	case NormalizationCurrencyMismatch:
		return fmt.Sprintf(
			"Unexpected currency: %s passed to order.create. Please ensure you are passing /sdk/js?%s=%s in the paypal script tag.",
			e.Value, QueryKeyCurrency, e.Value,
		)
	case NormalizationMerchantIDRequired:
		return fmt.Sprintf("Pass %s=XYZ in the paypal script tag.", QueryKeyMerchantID)
	case NormalizationPayeeMismatch:
		return fmt.Sprintf("Expected payee.merchant_id to be %q", e.Expected)
	case NormalizationPurchaseUnitsRequired:
		return "Expected purchase_units to be passed to order.create"
	default:
		return "core: invalid order draft"
	}
}

func (e *NormalizationError) Unwrap() error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case NormalizationIntentMismatch:
		return ErrUnexpectedIntent
	case NormalizationCurrencyMismatch:
		return ErrUnexpectedCurrency
	case NormalizationMerchantIDRequired:
		return ErrMerchantIDRequired
	case NormalizationPayeeMismatch:
		return ErrPayeeMismatch
	case NormalizationPurchaseUnitsRequired:
		return ErrPurchaseUnitsRequired
	default:
		return nil
	}
}

func (e *NormalizationError) ToServiceError() *goerrors.Error {
	if e == nil {
		return nil
	}
	textCode := ButtonErrorBadInput
	switch e.Kind {
	case NormalizationIntentMismatch:
		textCode = ButtonErrorIntentMismatch
	case NormalizationCurrencyMismatch:
		textCode = ButtonErrorCurrencyMismatch
	case NormalizationMerchantIDRequired:
		textCode = ButtonErrorMerchantIDMissing
	case NormalizationPayeeMismatch:
		textCode = ButtonErrorPayeeMismatch
	}
	metadata := map[string]any{"kind": string(e.Kind)}
	if e.Value != "" {
		metadata["value"] = e.Value
	}
	if e.Expected != "" {
		metadata["expected"] = e.Expected
	}
	if e.Kind != NormalizationIntentMismatch && e.Kind != NormalizationPurchaseUnitsRequired {
		metadata["purchase_unit"] = e.Unit
	}
	return goerrors.Wrap(e, goerrors.CategoryBadInput, e.Error()).
		WithCode(http.StatusBadRequest).
		WithTextCode(textCode).
		WithMetadata(metadata)
}

// OrderIDError reports an upstream source that produced something other than an
// order token.
type OrderIDError struct {
	OrderID string
	Cause   error
}

func (e *OrderIDError) Error() string {
	if e == nil || e.Cause == nil {
		return "Expected an order id to be passed"
	}
	if errors.Is(e.Cause, ErrApprovedPaymentToken) {
		return "Do not pass PAY-XXX or PAYID-XXX directly into createOrder. Pass the EC-XXX token instead"
	}
	return "Expected an order id to be passed"
}

func (e *OrderIDError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *OrderIDError) ToServiceError() *goerrors.Error {
	if e == nil {
		return nil
	}
	err := goerrors.Wrap(e, goerrors.CategoryBadInput, e.Error()).
		WithCode(http.StatusUnprocessableEntity).
		WithTextCode(ButtonErrorOrderIDInvalid)
	if e.OrderID != "" {
		err.WithMetadata(map[string]any{"order_id": e.OrderID})
	}
	return err
}

// MapError converts err into a go-errors envelope with a stable text code. The
// resolver never calls it; it exists for hosting surfaces that render errors.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var normalizationErr *NormalizationError
	if errors.As(err, &normalizationErr) {
		return normalizationErr.ToServiceError()
	}
	var orderIDErr *OrderIDError
	if errors.As(err, &orderIDErr) {
		return orderIDErr.ToServiceError()
	}
	var mapper interface{ ToServiceError() *goerrors.Error }
	if errors.As(err, &mapper) {
		if mapped := mapper.ToServiceError(); mapped != nil {
			return ensureButtonErrorEnvelope(mapped)
		}
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureButtonErrorEnvelope(richErr)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureButtonErrorEnvelope(mapped)
}

func ensureButtonErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = buttonHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultButtonTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultButtonTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ButtonErrorBadInput
	case goerrors.CategoryAuth:
		return ButtonErrorUnauthorized
	case goerrors.CategoryAuthz:
		return ButtonErrorForbidden
	case goerrors.CategoryRateLimit:
		return ButtonErrorRateLimited
	case goerrors.CategoryExternal:
		return ButtonErrorUpstreamFailure
	default:
		return ButtonErrorInternal
	}
}

func buttonHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
