package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	glog "github.com/goliatone/go-logger/glog"
)

const DefaultMaxBuffered = 256

var ErrWriterRequired = errors.New("telemetry: writer is required")

// Writer delivers a batch of tracked events.
type Writer interface {
	Write(ctx context.Context, events []core.TelemetryEvent) error
}

type WriterFunc func(ctx context.Context, events []core.TelemetryEvent) error

func (f WriterFunc) Write(ctx context.Context, events []core.TelemetryEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, events)
}

type TrackerConfig struct {
	// MaxBuffered caps pending events; the oldest are dropped first.
	MaxBuffered int
	Logger      core.Logger
}

func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{MaxBuffered: DefaultMaxBuffered}
}

// BufferedTracker holds tracked events until Flush hands them to the writer.
// Events of a failed flush stay buffered for the next one.
type BufferedTracker struct {
	writer Writer
	config TrackerConfig
	logger core.Logger

	mu      sync.Mutex
	pending []core.TelemetryEvent
	dropped int
}

func NewBufferedTracker(writer Writer, config TrackerConfig) (*BufferedTracker, error) {
	if writer == nil {
		return nil, ErrWriterRequired
	}
	if config.MaxBuffered <= 0 {
		config.MaxBuffered = DefaultTrackerConfig().MaxBuffered
	}
	logger := glog.Ensure(config.Logger)
	return &BufferedTracker{writer: writer, config: config, logger: logger}, nil
}

func (t *BufferedTracker) Track(_ context.Context, event core.TelemetryEvent) core.TelemetryFlusher {
	if t == nil {
		return core.TelemetryFlusherFunc(nil)
	}
	t.mu.Lock()
	t.pending = append(t.pending, event)
	t.trimLocked()
	t.mu.Unlock()
	return core.TelemetryFlusherFunc(t.Flush)
}

func (t *BufferedTracker) Flush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	t.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	if err := t.writer.Write(ctx, batch); err != nil {
		t.mu.Lock()
		t.pending = append(batch, t.pending...)
		t.trimLocked()
		t.mu.Unlock()
		return fmt.Errorf("telemetry: flush %d events: %w", len(batch), err)
	}
	return nil
}

func (t *BufferedTracker) Pending() []core.TelemetryEvent {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]core.TelemetryEvent(nil), t.pending...)
}

// Dropped reports how many events were discarded because the buffer was full.
func (t *BufferedTracker) Dropped() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

func (t *BufferedTracker) trimLocked() {
	excess := len(t.pending) - t.config.MaxBuffered
	if excess <= 0 {
		return
	}
	t.pending = append([]core.TelemetryEvent(nil), t.pending[excess:]...)
	t.dropped += excess
	t.logger.Warn("telemetry buffer full, dropping oldest events",
		"dropped", excess,
		"max_buffered", t.config.MaxBuffered,
	)
}

var _ core.TelemetrySink = (*BufferedTracker)(nil)
