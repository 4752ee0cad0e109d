package command

import (
	"strings"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
)

const (
	TypeResolveOrder   = "buttons.command.order.resolve"
	TypeFlushTelemetry = "buttons.command.telemetry.flush"
)

type ResolveOrderMessage struct {
	Request core.ResolveOrderRequest
}

func (ResolveOrderMessage) Type() string { return TypeResolveOrder }

// Validate checks the fields carried by the message itself. Dispatched
// requests must name a client id.
func (m ResolveOrderMessage) Validate() error {
	cfg := m.Request.Config
	if strings.TrimSpace(cfg.ClientID) == "" {
		return commandValidationError("client_id", "client id is required")
	}
	if cfg.Intent != "" && !cfg.Intent.Normalize().Valid() {
		return commandValidationError("intent", "unsupported intent "+string(cfg.Intent))
	}
	if cfg.Currency != "" && !cfg.Currency.Normalize().Valid() {
		return commandValidationError("currency", "unsupported currency "+string(cfg.Currency))
	}
	return nil
}

type FlushTelemetryMessage struct{}

func (FlushTelemetryMessage) Type() string { return TypeFlushTelemetry }

func (FlushTelemetryMessage) Validate() error { return nil }
