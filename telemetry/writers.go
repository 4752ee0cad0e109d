package telemetry

import (
	"context"
	"errors"
	"sort"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
)

// LogWriter emits one info line per event.
type LogWriter struct {
	Logger core.Logger
}

func (w LogWriter) Write(ctx context.Context, events []core.TelemetryEvent) error {
	if w.Logger == nil {
		return nil
	}
	logger := w.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	for _, event := range events {
		logger.Info("telemetry event", eventFields(event)...)
	}
	return nil
}

// MultiWriter writes to every writer and joins their errors.
type MultiWriter []Writer

func (m MultiWriter) Write(ctx context.Context, events []core.TelemetryEvent) error {
	var errs []error
	for _, writer := range m {
		if writer == nil {
			continue
		}
		if err := writer.Write(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func eventFields(event core.TelemetryEvent) []any {
	payload := event.Payload()
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]any, 0, len(keys)*2+4)
	fields = append(fields, "event_id", event.ID, "occurred_at", event.OccurredAt)
	for _, key := range keys {
		fields = append(fields, key, payload[key])
	}
	return fields
}
