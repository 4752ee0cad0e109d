package query

import (
	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[NormalizeOrderMessage, core.Order]                    = (*NormalizeOrderQuery)(nil)
	_ gocmd.Querier[ListTelemetryEventsMessage, core.TelemetryEventPage] = (*ListTelemetryEventsQuery)(nil)
)
