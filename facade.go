package buttons

import (
	"context"
	"fmt"
	"reflect"
	"time"

	buttoncommand "github.com/edulopespp/paypal-smart-payment-buttons/command"
	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	"github.com/edulopespp/paypal-smart-payment-buttons/providers/paypal"
	buttonquery "github.com/edulopespp/paypal-smart-payment-buttons/query"
	"github.com/edulopespp/paypal-smart-payment-buttons/telemetry"
	glog "github.com/goliatone/go-logger/glog"
)

const defaultResolveTimeout = 30 * time.Second

type Commands struct {
	ResolveOrder   *buttoncommand.ResolveOrderCommand
	FlushTelemetry *buttoncommand.FlushTelemetryCommand
}

type Queries struct {
	NormalizeOrder      *buttonquery.NormalizeOrderQuery
	ListTelemetryEvents *buttonquery.ListTelemetryEventsQuery
}

// Facade builds one order resolver per button render from a shared set of
// collaborators and exposes the command and query handlers over it.
type Facade struct {
	options        []core.Option
	flusher        core.TelemetryFlusher
	events         buttonquery.TelemetryEventReader
	resolveTimeout time.Duration
	logger         core.Logger

	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	resolverOptions   []core.Option
	flusher           core.TelemetryFlusher
	events            buttonquery.TelemetryEventReader
	repositoryFactory any
	resolveTimeout    time.Duration
	logger            core.Logger
	normalizer        buttonquery.OrderNormalizer
}

// WithResolverOptions adds options applied to every resolver the facade
// builds. Request options are applied after them.
func WithResolverOptions(opts ...core.Option) FacadeOption {
	return func(options *facadeOptions) {
		options.resolverOptions = append(options.resolverOptions, opts...)
	}
}

func WithPayPalClients(clients *paypal.Clients) FacadeOption {
	return func(options *facadeOptions) {
		options.resolverOptions = append(options.resolverOptions, clients.ResolverOptions()...)
	}
}

// WithTelemetryTracker routes resolver telemetry through tracker and lets
// FlushTelemetry drain it.
func WithTelemetryTracker(tracker *telemetry.BufferedTracker) FacadeOption {
	return func(options *facadeOptions) {
		if tracker == nil {
			return
		}
		options.resolverOptions = append(options.resolverOptions, core.WithTelemetrySink(tracker))
		options.flusher = tracker
	}
}

func WithTelemetryFlusher(flusher core.TelemetryFlusher) FacadeOption {
	return func(options *facadeOptions) {
		options.flusher = flusher
	}
}

func WithTelemetryEventReader(reader buttonquery.TelemetryEventReader) FacadeOption {
	return func(options *facadeOptions) {
		options.events = reader
	}
}

// WithRepositoryFactory supplies a factory exposing TelemetryEventStore(). It
// is used only when no reader was set.
func WithRepositoryFactory(factory any) FacadeOption {
	return func(options *facadeOptions) {
		options.repositoryFactory = factory
	}
}

func WithResolveTimeout(timeout time.Duration) FacadeOption {
	return func(options *facadeOptions) {
		options.resolveTimeout = timeout
	}
}

func WithFacadeLogger(logger core.Logger) FacadeOption {
	return func(options *facadeOptions) {
		options.logger = logger
	}
}

func WithOrderNormalizer(normalizer buttonquery.OrderNormalizer) FacadeOption {
	return func(options *facadeOptions) {
		options.normalizer = normalizer
	}
}

func NewFacade(opts ...FacadeOption) (*Facade, error) {
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.resolveTimeout < 0 {
		return nil, fmt.Errorf("buttons: resolve timeout must be >= 0")
	}
	if cfg.resolveTimeout == 0 {
		cfg.resolveTimeout = defaultResolveTimeout
	}

	events := cfg.events
	if events == nil {
		events = resolveTelemetryEventReader(cfg.repositoryFactory)
	}

	facade := &Facade{
		options:        append([]core.Option{}, cfg.resolverOptions...),
		flusher:        cfg.flusher,
		events:         events,
		resolveTimeout: cfg.resolveTimeout,
		logger:         glog.Ensure(cfg.logger),
	}
	facade.commands = Commands{
		ResolveOrder:   buttoncommand.NewResolveOrderCommand(facade),
		FlushTelemetry: buttoncommand.NewFlushTelemetryCommand(facade),
	}
	facade.queries = Queries{
		NormalizeOrder:      buttonquery.NewNormalizeOrderQuery(cfg.normalizer),
		ListTelemetryEvents: buttonquery.NewListTelemetryEventsQuery(events),
	}
	return facade, nil
}

// ResolveOrder resolves the order id for one button render. The wait is
// bounded by the resolve timeout; the resolution itself is not cancelled.
func (f *Facade) ResolveOrder(ctx context.Context, req core.ResolveOrderRequest) (core.ResolveOrderResult, error) {
	if f == nil {
		return core.ResolveOrderResult{}, fmt.Errorf("buttons: facade is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	opts := make([]core.Option, 0, len(f.options)+len(req.Options))
	opts = append(opts, f.options...)
	opts = append(opts, req.Options...)

	resolver, err := core.NewOrderResolver(req.Config, opts...)
	if err != nil {
		return core.ResolveOrderResult{}, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, f.resolveTimeout)
	defer cancel()

	orderID, err := resolver.Resolve(waitCtx)
	if err != nil {
		return core.ResolveOrderResult{}, err
	}
	return core.ResolveOrderResult{
		OrderID:         orderID,
		ButtonSessionID: resolver.Config().ButtonSessionID,
		Branch:          resolver.Branch(),
	}, nil
}

// FlushTelemetry drains buffered telemetry. Without a flusher it is a no-op.
func (f *Facade) FlushTelemetry(ctx context.Context) error {
	if f == nil || f.flusher == nil {
		return nil
	}
	if err := f.flusher.Flush(ctx); err != nil {
		f.logger.Warn("telemetry flush failed", "error", err.Error())
		return err
	}
	return nil
}

func (f *Facade) NormalizeOrder(ctx context.Context, req core.NormalizeOrderRequest) (core.Order, error) {
	return f.Queries().NormalizeOrder.Query(ctx, buttonquery.NormalizeOrderMessage{Request: req})
}

func (f *Facade) ListTelemetryEvents(ctx context.Context, filter core.TelemetryEventFilter) (core.TelemetryEventPage, error) {
	return f.Queries().ListTelemetryEvents.Query(ctx, buttonquery.ListTelemetryEventsMessage{Filter: filter})
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func resolveTelemetryEventReader(factory any) buttonquery.TelemetryEventReader {
	if factory == nil {
		return nil
	}
	if reader, ok := factory.(buttonquery.TelemetryEventReader); ok {
		return reader
	}

	factoryValue := reflect.ValueOf(factory)
	if factoryValue.Kind() == reflect.Ptr && factoryValue.IsNil() {
		return nil
	}
	method := factoryValue.MethodByName("TelemetryEventStore")
	if !method.IsValid() || method.Type().NumIn() != 0 || method.Type().NumOut() != 1 {
		return nil
	}

	results, ok := safeReflectCall(method)
	if !ok || len(results) != 1 {
		return nil
	}
	candidate := results[0]
	if !candidate.IsValid() {
		return nil
	}
	if (candidate.Kind() == reflect.Ptr || candidate.Kind() == reflect.Interface) && candidate.IsNil() {
		return nil
	}
	reader, ok := candidate.Interface().(buttonquery.TelemetryEventReader)
	if !ok {
		return nil
	}
	return reader
}

func safeReflectCall(method reflect.Value) (_ []reflect.Value, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return method.Call(nil), true
}

var (
	_ buttoncommand.OrderResolutionService = (*Facade)(nil)
	_ buttoncommand.TelemetryFlushService  = (*Facade)(nil)
)
