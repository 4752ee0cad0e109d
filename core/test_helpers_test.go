package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
	err    error
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.values, nil
}

type upstreamCalls struct {
	mu    sync.Mutex
	calls []string
}

func (c *upstreamCalls) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

func (c *upstreamCalls) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *upstreamCalls) count(name string) int {
	total := 0
	for _, call := range c.snapshot() {
		if call == name {
			total++
		}
	}
	return total
}

// fakeUpstream records every collaborator call and returns scripted ids.
type fakeUpstream struct {
	calls *upstreamCalls

	accessToken    string
	accessTokenErr error
	orderID        string
	orderIDErr     error
	cartID         string
	ecToken        string

	mu           sync.Mutex
	clientIDs    []string
	orders       []Order
	orderOptions []CreateOrderIDOptions
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		calls:       &upstreamCalls{},
		accessToken: "A21AAtoken",
		orderID:     "5O190127TN364715T",
		cartID:      "EC-CART-1",
		ecToken:     "EC-BA-1",
	}
}

func (f *fakeUpstream) CreateAccessToken(_ context.Context, clientID string) (string, error) {
	f.calls.add("create_access_token")
	f.mu.Lock()
	f.clientIDs = append(f.clientIDs, clientID)
	f.mu.Unlock()
	return f.accessToken, f.accessTokenErr
}

func (f *fakeUpstream) CreateOrderID(_ context.Context, order Order, opts CreateOrderIDOptions) (string, error) {
	f.calls.add("create_order_id")
	f.mu.Lock()
	f.orders = append(f.orders, order)
	f.orderOptions = append(f.orderOptions, opts)
	f.mu.Unlock()
	return f.orderID, f.orderIDErr
}

func (f *fakeUpstream) BillingTokenToOrderID(_ context.Context, billingToken string) (string, error) {
	f.calls.add("billing_token_to_order_id:" + billingToken)
	return f.ecToken, nil
}

func (f *fakeUpstream) SubscriptionIDToCartID(_ context.Context, subscriptionID string) (string, error) {
	f.calls.add("subscription_id_to_cart_id:" + subscriptionID)
	return f.cartID, nil
}

func (f *fakeUpstream) lastOrder() (Order, CreateOrderIDOptions, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.orders) == 0 {
		return Order{}, CreateOrderIDOptions{}, false
	}
	return f.orders[len(f.orders)-1], f.orderOptions[len(f.orderOptions)-1], true
}

type recordingTelemetrySink struct {
	mu       sync.Mutex
	events   []TelemetryEvent
	flushes  int
	flushErr error
}

func (s *recordingTelemetrySink) Track(_ context.Context, event TelemetryEvent) TelemetryFlusher {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return TelemetryFlusherFunc(func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.flushes++
		return s.flushErr
	})
}

func (s *recordingTelemetrySink) snapshot() ([]TelemetryEvent, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TelemetryEvent(nil), s.events...), s.flushes
}

// blockingTelemetrySink holds every flush until release is closed or the
// flush ctx ends.
type blockingTelemetrySink struct {
	release chan struct{}
	tracked atomic.Int32
}

func (s *blockingTelemetrySink) Track(context.Context, TelemetryEvent) TelemetryFlusher {
	s.tracked.Add(1)
	return TelemetryFlusherFunc(func(ctx context.Context) error {
		select {
		case <-s.release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func waitTelemetryFlushed(t *testing.T, resolver *OrderResolver) {
	t.Helper()
	select {
	case <-resolver.TelemetryFlushed():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected telemetry flush to finish")
	}
}

func testResolverConfig() Config {
	return Config{
		ClientID:        "client-abc",
		Intent:          IntentCapture,
		Currency:        CurrencyUSD,
		ButtonSessionID: "session-123",
	}
}

func awaitResolution(future *Future[string]) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return future.Await(ctx)
}

var errUpstreamUnavailable = errors.New("upstream unavailable")

func testClock() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}
