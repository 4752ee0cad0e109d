package sqlstore

import (
	"strings"
	"time"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	"github.com/uptrace/bun"
)

type telemetryEventRecord struct {
	bun.BaseModel `bun:"table:button_telemetry_events,alias:bte"`

	ID              string         `bun:"id,pk"`
	ButtonSessionID string         `bun:"button_session_id,notnull"`
	State           string         `bun:"state_name,notnull"`
	Transition      string         `bun:"transition_name,notnull"`
	ContextType     string         `bun:"context_type,notnull"`
	ContextID       string         `bun:"context_id,notnull"`
	Payload         map[string]any `bun:"payload,type:jsonb,notnull"`
	OccurredAt      time.Time      `bun:"occurred_at,notnull"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func newTelemetryEventRecord(event core.TelemetryEvent, now time.Time) *telemetryEventRecord {
	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = now
	}
	payload := make(map[string]any, 5)
	for key, value := range event.Payload() {
		payload[key] = value
	}
	return &telemetryEventRecord{
		ID:              strings.TrimSpace(event.ID),
		ButtonSessionID: strings.TrimSpace(event.ButtonSessionID),
		State:           strings.TrimSpace(event.State),
		Transition:      strings.TrimSpace(event.Transition),
		ContextType:     strings.TrimSpace(event.ContextType),
		ContextID:       strings.TrimSpace(event.ContextID),
		Payload:         payload,
		OccurredAt:      occurredAt,
		CreatedAt:       now,
	}
}

func (r *telemetryEventRecord) toDomain() core.TelemetryEvent {
	if r == nil {
		return core.TelemetryEvent{}
	}
	return core.TelemetryEvent{
		ID:              strings.TrimSpace(r.ID),
		State:           strings.TrimSpace(r.State),
		Transition:      strings.TrimSpace(r.Transition),
		ContextType:     strings.TrimSpace(r.ContextType),
		ContextID:       strings.TrimSpace(r.ContextID),
		ButtonSessionID: strings.TrimSpace(r.ButtonSessionID),
		OccurredAt:      r.OccurredAt.UTC(),
	}
}
