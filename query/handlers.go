package query

import (
	"context"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
)

type OrderNormalizer func(draft core.Order, merchant core.MerchantConfig) (core.Order, error)

type TelemetryEventReader interface {
	List(ctx context.Context, filter core.TelemetryEventFilter) (core.TelemetryEventPage, error)
}

// NormalizeOrderQuery previews the order a draft normalizes to without
// submitting it.
type NormalizeOrderQuery struct {
	normalize OrderNormalizer
}

func NewNormalizeOrderQuery(normalize OrderNormalizer) *NormalizeOrderQuery {
	if normalize == nil {
		normalize = core.NormalizeOrder
	}
	return &NormalizeOrderQuery{normalize: normalize}
}

func (q *NormalizeOrderQuery) Query(ctx context.Context, msg NormalizeOrderMessage) (core.Order, error) {
	if q == nil || q.normalize == nil {
		return core.Order{}, queryDependencyError("query: order normalizer is required")
	}
	if err := ctx.Err(); err != nil {
		return core.Order{}, err
	}
	return q.normalize(msg.Request.Draft, msg.Request.Merchant)
}

type ListTelemetryEventsQuery struct {
	reader TelemetryEventReader
}

func NewListTelemetryEventsQuery(reader TelemetryEventReader) *ListTelemetryEventsQuery {
	return &ListTelemetryEventsQuery{reader: reader}
}

func (q *ListTelemetryEventsQuery) Query(
	ctx context.Context,
	msg ListTelemetryEventsMessage,
) (core.TelemetryEventPage, error) {
	if q == nil || q.reader == nil {
		return core.TelemetryEventPage{}, queryDependencyError("query: telemetry event reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.TelemetryEventPage{}, err
	}
	return q.reader.List(ctx, msg.Filter)
}
