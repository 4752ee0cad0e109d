package gocommand

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	buttoncommand "github.com/edulopespp/paypal-smart-payment-buttons/command"
	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	"github.com/edulopespp/paypal-smart-payment-buttons/query"
	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

var errRegistryMissing = errors.New("gocommand: button registry is not configured")

// ButtonService is the command side of the smart button runtime.
type ButtonService interface {
	buttoncommand.OrderResolutionService
	buttoncommand.TelemetryFlushService
}

// ButtonRegistry registers the button handlers in a go-command registry and
// subscribes them on the global dispatcher. Close releases every
// subscription it made.
type ButtonRegistry struct {
	registry *command.Registry

	mu            sync.Mutex
	subscriptions []commanddispatcher.Subscription
}

func NewButtonRegistry(registry *command.Registry) *ButtonRegistry {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &ButtonRegistry{registry: registry}
}

func (r *ButtonRegistry) Registry() *command.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// MirrorToQueue exposes the registered commands as go-job queue jobs once
// Initialize runs.
func (r *ButtonRegistry) MirrorToQueue(key string, queueRegistry *jobqueuecommand.Registry) error {
	if r == nil || r.registry == nil {
		return errRegistryMissing
	}
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("gocommand: queue resolver key is required")
	}
	return r.registry.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (r *ButtonRegistry) Initialize() error {
	if r == nil || r.registry == nil {
		return errRegistryMissing
	}
	return r.registry.Initialize()
}

// Register adds the resolve and flush commands and the button queries.
// Telemetry listing is skipped when reader is nil.
func (r *ButtonRegistry) Register(service ButtonService, reader query.TelemetryEventReader, runnerOpts ...runner.Option) error {
	if err := r.RegisterCommands(service, runnerOpts...); err != nil {
		return err
	}
	return r.RegisterQueries(reader, runnerOpts...)
}

func (r *ButtonRegistry) RegisterCommands(service ButtonService, runnerOpts ...runner.Option) error {
	if r == nil || r.registry == nil {
		return errRegistryMissing
	}
	if service == nil {
		return fmt.Errorf("gocommand: button service is required")
	}
	batch := registration{registry: r.registry, runnerOpts: runnerOpts}
	registerCommand(&batch, buttoncommand.NewResolveOrderCommand(service))
	registerCommand(&batch, buttoncommand.NewFlushTelemetryCommand(service))
	return r.commit(&batch)
}

func (r *ButtonRegistry) RegisterQueries(reader query.TelemetryEventReader, runnerOpts ...runner.Option) error {
	if r == nil || r.registry == nil {
		return errRegistryMissing
	}
	batch := registration{registry: r.registry, runnerOpts: runnerOpts}
	registerQuery(&batch, query.NewNormalizeOrderQuery(nil))
	if reader != nil {
		registerQuery(&batch, query.NewListTelemetryEventsQuery(reader))
	}
	return r.commit(&batch)
}

// Subscriptions reports how many dispatcher subscriptions are live.
func (r *ButtonRegistry) Subscriptions() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscriptions)
}

func (r *ButtonRegistry) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	subscriptions := r.subscriptions
	r.subscriptions = nil
	r.mu.Unlock()
	unsubscribe(subscriptions)
}

func (r *ButtonRegistry) commit(batch *registration) error {
	if batch.err != nil {
		unsubscribe(batch.subscriptions)
		return batch.err
	}
	r.mu.Lock()
	r.subscriptions = append(r.subscriptions, batch.subscriptions...)
	r.mu.Unlock()
	return nil
}

// registration collects the subscriptions of one Register call; the first
// failure stops the batch.
type registration struct {
	registry      *command.Registry
	runnerOpts    []runner.Option
	subscriptions []commanddispatcher.Subscription
	err           error
}

func registerCommand[T any](batch *registration, cmd command.Commander[T]) {
	if batch.err != nil {
		return
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, batch.runnerOpts...)
	batch.add(subscription, batch.registry.RegisterCommand(cmd), cmd)
}

func registerQuery[T any, R any](batch *registration, qry command.Querier[T, R]) {
	if batch.err != nil {
		return
	}
	subscription := commanddispatcher.SubscribeQuery(qry, batch.runnerOpts...)
	batch.add(subscription, batch.registry.RegisterCommand(qry), qry)
}

func (b *registration) add(subscription commanddispatcher.Subscription, err error, handler any) {
	if err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		b.err = fmt.Errorf("gocommand: register %T: %w", handler, err)
		return
	}
	if subscription != nil {
		b.subscriptions = append(b.subscriptions, subscription)
	}
}

func unsubscribe(subscriptions []commanddispatcher.Subscription) {
	for _, subscription := range subscriptions {
		subscription.Unsubscribe()
	}
}

// DispatchResolveOrder sends a ResolveOrderMessage through the global
// dispatcher and reads the handler's result back from the context collector.
func DispatchResolveOrder(ctx context.Context, req core.ResolveOrderRequest) (core.ResolveOrderResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	collector := command.NewResult[core.ResolveOrderResult]()
	msg := buttoncommand.ResolveOrderMessage{Request: req}
	if err := commanddispatcher.Dispatch(command.ContextWithResult(ctx, collector), msg); err != nil {
		return core.ResolveOrderResult{}, err
	}
	result, ok := collector.Load()
	if !ok {
		return core.ResolveOrderResult{}, fmt.Errorf("gocommand: resolve order produced no result")
	}
	return result, nil
}

func DispatchFlushTelemetry(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return commanddispatcher.Dispatch(ctx, buttoncommand.FlushTelemetryMessage{})
}

func QueryNormalizeOrder(ctx context.Context, req core.NormalizeOrderRequest) (core.Order, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return commanddispatcher.Query[query.NormalizeOrderMessage, core.Order](ctx, query.NormalizeOrderMessage{Request: req})
}

func QueryTelemetryEvents(ctx context.Context, filter core.TelemetryEventFilter) (core.TelemetryEventPage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return commanddispatcher.Query[query.ListTelemetryEventsMessage, core.TelemetryEventPage](ctx, query.ListTelemetryEventsMessage{Filter: filter})
}
