package command

import (
	"context"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	gocmd "github.com/goliatone/go-command"
)

type OrderResolutionService interface {
	ResolveOrder(ctx context.Context, req core.ResolveOrderRequest) (core.ResolveOrderResult, error)
}

type TelemetryFlushService interface {
	FlushTelemetry(ctx context.Context) error
}

type ResolveOrderCommand struct {
	service OrderResolutionService
}

func NewResolveOrderCommand(service OrderResolutionService) *ResolveOrderCommand {
	return &ResolveOrderCommand{service: service}
}

func (c *ResolveOrderCommand) Execute(ctx context.Context, msg ResolveOrderMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: order resolution service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.ResolveOrder(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type FlushTelemetryCommand struct {
	service TelemetryFlushService
}

func NewFlushTelemetryCommand(service TelemetryFlushService) *FlushTelemetryCommand {
	return &FlushTelemetryCommand{service: service}
}

func (c *FlushTelemetryCommand) Execute(ctx context.Context, _ FlushTelemetryMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: telemetry flush service is required")
	}
	return c.service.FlushTelemetry(ctx)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
