package adapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/edulopespp/paypal-smart-payment-buttons/adapters/gocommand"
	"github.com/edulopespp/paypal-smart-payment-buttons/adapters/gojob"
	"github.com/edulopespp/paypal-smart-payment-buttons/adapters/gologger"
	buttoncommand "github.com/edulopespp/paypal-smart-payment-buttons/command"
	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	"github.com/edulopespp/paypal-smart-payment-buttons/telemetry"
	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	glog "github.com/goliatone/go-logger/glog"
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	logger := &compatLogger{}
	provider := &compatProvider{logger: logger}

	_, _, jobProvider, jobLogger := gologger.ResolveForJob("buttons", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	registry := gocommand.NewButtonRegistry(command.NewRegistry())
	if err := registry.MirrorToQueue("queue", queueRegistry); err != nil {
		t.Fatalf("mirror to queue: %v", err)
	}
	if err := registry.RegisterCommands(&compatButtonService{}); err != nil {
		t.Fatalf("register button commands: %v", err)
	}
	defer registry.Close()
	if err := registry.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get(buttoncommand.TypeFlushTelemetry); !ok {
		t.Fatalf("expected flush command to be mirrored into go-job queue registry")
	}
}

func TestRuntimeCompatibility_ResolvedOrderTelemetryReachesStore(t *testing.T) {
	ctx := context.Background()
	jobQueue := &compatQueue{}
	tracker, err := telemetry.NewBufferedTracker(
		gojob.JobWriter{Enqueuer: jobQueue},
		telemetry.DefaultTrackerConfig(),
	)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	svc := &compatButtonService{
		options: append(gologger.ResolverOptions("buttons", nil, &compatLogger{}),
			core.WithTelemetrySink(tracker),
			core.WithAccessTokenCreator(core.AccessTokenCreatorFunc(func(context.Context, string) (string, error) {
				return "access-token", nil
			})),
			core.WithOrderIDCreator(core.OrderIDCreatorFunc(func(context.Context, core.Order, core.CreateOrderIDOptions) (string, error) {
				return "EC-COMPAT", nil
			})),
		),
		tracker: tracker,
	}

	registry := gocommand.NewButtonRegistry(command.NewRegistry())
	if err := registry.Register(svc, nil); err != nil {
		t.Fatalf("register button handlers: %v", err)
	}
	defer registry.Close()

	result, err := gocommand.DispatchResolveOrder(ctx, core.ResolveOrderRequest{
		Config: core.Config{ClientID: "client-1", ButtonSessionID: "session-compat"},
	})
	if err != nil {
		t.Fatalf("dispatch resolve order: %v", err)
	}
	if result.OrderID != "EC-COMPAT" || result.Branch != core.BranchDefaultOrder {
		t.Fatalf("expected default branch order id, got %#v", result)
	}
	deadline := time.Now().Add(2 * time.Second)
	for jobQueue.lastMessage() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("expected telemetry job to be enqueued after resolution")
		}
		time.Sleep(5 * time.Millisecond)
	}

	store := &compatStore{}
	consumer, err := gojob.NewTelemetryConsumer(
		jobQueue,
		store,
		gojob.TelemetryConsumerConfig{
			Policy: gojob.RetryPolicy{MaxAttempts: 3},
			Hook:   gojob.LoggingWorkerHook{Logger: &compatLogger{}},
		},
	)
	if err != nil {
		t.Fatalf("new telemetry consumer: %v", err)
	}
	if err := consumer.ProcessNext(ctx); err != nil {
		t.Fatalf("process telemetry job: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("expected one stored event, got %d", len(store.events))
	}
	event := store.events[0]
	if event.ContextID != "EC-COMPAT" || event.ButtonSessionID != "session-compat" {
		t.Fatalf("unexpected stored event %#v", event)
	}
	if event.Transition != core.TelemetryTransitionReceive {
		t.Fatalf("expected receive transition, got %q", event.Transition)
	}
}

type compatButtonService struct {
	options []core.Option
	tracker *telemetry.BufferedTracker
}

func (s *compatButtonService) ResolveOrder(ctx context.Context, req core.ResolveOrderRequest) (core.ResolveOrderResult, error) {
	opts := append(append([]core.Option{}, s.options...), req.Options...)
	resolver, err := core.NewOrderResolver(req.Config, opts...)
	if err != nil {
		return core.ResolveOrderResult{}, err
	}
	resolveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	orderID, err := resolver.Resolve(resolveCtx)
	if err != nil {
		return core.ResolveOrderResult{}, err
	}
	return core.ResolveOrderResult{
		OrderID:         orderID,
		ButtonSessionID: req.Config.ButtonSessionID,
		Branch:          resolver.Branch(),
	}, nil
}

func (s *compatButtonService) FlushTelemetry(ctx context.Context) error {
	if s.tracker == nil {
		return nil
	}
	return s.tracker.Flush(ctx)
}

type compatQueue struct {
	mu   sync.Mutex
	last *job.ExecutionMessage
}

func (q *compatQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.last = msg
	return nil
}

func (q *compatQueue) Dequeue(context.Context) (queue.Delivery, error) {
	return &compatDelivery{msg: q.lastMessage()}, nil
}

func (q *compatQueue) lastMessage() *job.ExecutionMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.last
}

type compatDelivery struct {
	msg *job.ExecutionMessage
}

func (d *compatDelivery) Message() *job.ExecutionMessage                { return d.msg }
func (d *compatDelivery) Ack(context.Context) error                     { return nil }
func (d *compatDelivery) Nack(context.Context, queue.NackOptions) error { return nil }

type compatStore struct {
	events []core.TelemetryEvent
}

func (s *compatStore) Write(_ context.Context, events []core.TelemetryEvent) error {
	s.events = append(s.events, events...)
	return nil
}

func (s *compatStore) List(context.Context, core.TelemetryEventFilter) (core.TelemetryEventPage, error) {
	return core.TelemetryEventPage{Items: s.events, Total: len(s.events)}, nil
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct{}

func (compatLogger) Trace(string, ...any)                    {}
func (compatLogger) Debug(string, ...any)                    {}
func (compatLogger) Info(string, ...any)                     {}
func (compatLogger) Warn(string, ...any)                     {}
func (compatLogger) Error(string, ...any)                    {}
func (compatLogger) Fatal(string, ...any)                    {}
func (compatLogger) WithContext(context.Context) glog.Logger { return compatLogger{} }
