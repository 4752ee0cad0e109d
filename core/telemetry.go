package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tracking keys and values reported when an order id is received.
const (
	TelemetryKeyState           = "state_name"
	TelemetryKeyTransition      = "transition_name"
	TelemetryKeyContextType     = "context_type"
	TelemetryKeyContextID       = "context_id"
	TelemetryKeyButtonSessionID = "button_session_id"

	TelemetryStateButton        = "smart_button"
	TelemetryTransitionReceive  = "process_receive_order"
	TelemetryContextTypeOrderID = "EC-Token"
)

type TelemetryEvent struct {
	ID              string
	State           string
	Transition      string
	ContextType     string
	ContextID       string
	ButtonSessionID string
	OccurredAt      time.Time
}

// NewOrderReceivedEvent builds the event emitted after an order id passed
// validation.
func NewOrderReceivedEvent(orderID string, buttonSessionID string, occurredAt time.Time) TelemetryEvent {
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return TelemetryEvent{
		ID:              uuid.NewString(),
		State:           TelemetryStateButton,
		Transition:      TelemetryTransitionReceive,
		ContextType:     TelemetryContextTypeOrderID,
		ContextID:       orderID,
		ButtonSessionID: buttonSessionID,
		OccurredAt:      occurredAt.UTC(),
	}
}

// Payload renders the event with the tracking key names.
func (e TelemetryEvent) Payload() map[string]string {
	return map[string]string{
		TelemetryKeyState:           e.State,
		TelemetryKeyTransition:      e.Transition,
		TelemetryKeyContextType:     e.ContextType,
		TelemetryKeyContextID:       e.ContextID,
		TelemetryKeyButtonSessionID: e.ButtonSessionID,
	}
}

func TelemetryEventFromPayload(payload map[string]string) TelemetryEvent {
	return TelemetryEvent{
		State:           strings.TrimSpace(payload[TelemetryKeyState]),
		Transition:      strings.TrimSpace(payload[TelemetryKeyTransition]),
		ContextType:     strings.TrimSpace(payload[TelemetryKeyContextType]),
		ContextID:       strings.TrimSpace(payload[TelemetryKeyContextID]),
		ButtonSessionID: strings.TrimSpace(payload[TelemetryKeyButtonSessionID]),
	}
}

type TelemetryFlusherFunc func(ctx context.Context) error

func (f TelemetryFlusherFunc) Flush(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

type nopFlusher struct{}

func (nopFlusher) Flush(context.Context) error { return nil }

type NopTelemetrySink struct{}

func (NopTelemetrySink) Track(context.Context, TelemetryEvent) TelemetryFlusher {
	return nopFlusher{}
}

// LoggerTelemetrySink writes each event as an info line. Flush is a no-op.
type LoggerTelemetrySink struct {
	Logger Logger
}

func (s LoggerTelemetrySink) Track(ctx context.Context, event TelemetryEvent) TelemetryFlusher {
	if s.Logger == nil {
		return nopFlusher{}
	}
	logger := s.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	fields := map[string]any{"event_id": event.ID}
	for key, value := range event.Payload() {
		fields[key] = value
	}
	logger.Info("telemetry event tracked", flattenFields(fields)...)
	return nopFlusher{}
}

var (
	_ TelemetrySink    = NopTelemetrySink{}
	_ TelemetrySink    = LoggerTelemetrySink{}
	_ TelemetryFlusher = TelemetryFlusherFunc(nil)
)
