package sqlstore

import "github.com/edulopespp/paypal-smart-payment-buttons/core"

var (
	_ core.TelemetryEventStore = (*TelemetryEventStore)(nil)
)
