package core

import "strings"

// Prefixes of approved payment tokens. They are never valid order ids.
const (
	PaymentTokenPrefix   = "PAY-"
	PaymentIDTokenPrefix = "PAYID-"
)

// ValidateOrderID rejects empty ids and approved payment tokens.
func ValidateOrderID(orderID string) error {
	if orderID == "" {
		return &OrderIDError{Cause: ErrOrderIDMissing}
	}
	if strings.HasPrefix(orderID, PaymentTokenPrefix) || strings.HasPrefix(orderID, PaymentIDTokenPrefix) {
		return &OrderIDError{OrderID: orderID, Cause: ErrApprovedPaymentToken}
	}
	return nil
}
