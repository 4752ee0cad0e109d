package query

import (
	"github.com/edulopespp/paypal-smart-payment-buttons/core"
)

const (
	TypeNormalizeOrder      = "buttons.query.order.normalize"
	TypeListTelemetryEvents = "buttons.query.telemetry.list"
)

type NormalizeOrderMessage struct {
	Request core.NormalizeOrderRequest
}

func (NormalizeOrderMessage) Type() string { return TypeNormalizeOrder }

// Validate accepts any draft; normalization reports its own errors.
func (NormalizeOrderMessage) Validate() error { return nil }

type ListTelemetryEventsMessage struct {
	Filter core.TelemetryEventFilter
}

func (ListTelemetryEventsMessage) Type() string { return TypeListTelemetryEvents }

func (m ListTelemetryEventsMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("page", "page must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return queryValidationError("per_page", "per_page must be >= 0")
	}
	if m.Filter.From != nil && m.Filter.To != nil && m.Filter.To.Before(*m.Filter.From) {
		return queryValidationError("to", "to must not be before from")
	}
	return nil
}
