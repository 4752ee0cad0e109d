package gojob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

const (
	JobIDTelemetryDeliver = "buttons.telemetry.deliver"
	JobIDTelemetryFlush   = "buttons.telemetry.flush"

	telemetryScriptPath     = "buttons/telemetry"
	telemetryEventsParam    = "events"
	telemetryDedupPolicy    = job.DeduplicationPolicy("drop")
	defaultTelemetryBackoff = 2 * time.Second
)

var (
	ErrUnsupportedJob      = errors.New("gojob: unsupported job id")
	ErrTelemetryEventsMiss = errors.New("gojob: telemetry job carries no events")
)

// RetryPolicy bounds the requeues of a failing telemetry job. A zero
// MaxAttempts retries forever.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NackFor builds the nack of a failed attempt. Delays grow linearly with the
// attempt and are capped at MaxDelay. Undecodable jobs are dead-lettered at
// once; a job past MaxAttempts is dead-lettered or dropped.
func (p RetryPolicy) NackFor(attempt int, backoff time.Duration, cause error) queue.NackOptions {
	opts := queue.NackOptions{}
	if cause != nil {
		opts.Reason = strings.TrimSpace(cause.Error())
	}
	if permanentJobError(cause) {
		opts.DeadLetter = true
		return opts
	}
	if attempt < 1 {
		attempt = 1
	}
	opts.Delay = time.Duration(attempt) * backoff
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if p.MaxDelay > 0 && opts.Delay > p.MaxDelay {
		opts.Delay = p.MaxDelay
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		opts.DeadLetter = p.DeadLetterOnMax
		return opts
	}
	opts.Requeue = true
	return opts
}

func permanentJobError(err error) bool {
	return errors.Is(err, ErrUnsupportedJob) || errors.Is(err, ErrTelemetryEventsMiss)
}

type telemetryEventParam struct {
	ID              string    `json:"id"`
	State           string    `json:"state_name"`
	Transition      string    `json:"transition_name"`
	ContextType     string    `json:"context_type"`
	ContextID       string    `json:"context_id"`
	ButtonSessionID string    `json:"button_session_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// TelemetryJobMessage packs events into a delivery job. The idempotency key is
// derived from the event ids so a re-enqueued batch is deduplicated.
func TelemetryJobMessage(events []core.TelemetryEvent) (*job.ExecutionMessage, error) {
	if len(events) == 0 {
		return nil, ErrTelemetryEventsMiss
	}
	params := make([]map[string]any, 0, len(events))
	ids := make([]string, 0, len(events))
	for _, event := range events {
		id := strings.TrimSpace(event.ID)
		if id == "" {
			id = uuid.NewString()
		}
		ids = append(ids, id)
		encoded, err := json.Marshal(telemetryEventParam{
			ID:              id,
			State:           event.State,
			Transition:      event.Transition,
			ContextType:     event.ContextType,
			ContextID:       event.ContextID,
			ButtonSessionID: event.ButtonSessionID,
			OccurredAt:      event.OccurredAt.UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("gojob: encode telemetry event %q: %w", id, err)
		}
		var param map[string]any
		if err := json.Unmarshal(encoded, &param); err != nil {
			return nil, fmt.Errorf("gojob: encode telemetry event %q: %w", id, err)
		}
		params = append(params, param)
	}
	sort.Strings(ids)
	key := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(ids, ","))).String()
	return &job.ExecutionMessage{
		JobID:          JobIDTelemetryDeliver,
		ScriptPath:     telemetryScriptPath,
		Parameters:     map[string]any{telemetryEventsParam: params},
		IdempotencyKey: key,
		DedupPolicy:    telemetryDedupPolicy,
	}, nil
}

func TelemetryFlushJobMessage() *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:      JobIDTelemetryFlush,
		ScriptPath: telemetryScriptPath,
		Parameters: map[string]any{},
	}
}

// TelemetryEventsFromMessage decodes the events of a delivery job. Parameters
// may hold typed values or values decoded from a queue backend.
func TelemetryEventsFromMessage(msg *job.ExecutionMessage) ([]core.TelemetryEvent, error) {
	if msg == nil || msg.JobID != JobIDTelemetryDeliver {
		return nil, ErrUnsupportedJob
	}
	raw, ok := msg.Parameters[telemetryEventsParam]
	if !ok || raw == nil {
		return nil, ErrTelemetryEventsMiss
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("gojob: decode telemetry events: %w", err)
	}
	var params []telemetryEventParam
	if err := json.Unmarshal(encoded, &params); err != nil {
		return nil, fmt.Errorf("gojob: decode telemetry events: %w", err)
	}
	if len(params) == 0 {
		return nil, ErrTelemetryEventsMiss
	}
	events := make([]core.TelemetryEvent, 0, len(params))
	for _, param := range params {
		events = append(events, core.TelemetryEvent{
			ID:              param.ID,
			State:           param.State,
			Transition:      param.Transition,
			ContextType:     param.ContextType,
			ContextID:       param.ContextID,
			ButtonSessionID: param.ButtonSessionID,
			OccurredAt:      param.OccurredAt.UTC(),
		})
	}
	return events, nil
}

// JobWriter ships telemetry batches through a go-job queue. It satisfies
// telemetry.Writer.
type JobWriter struct {
	Enqueuer queue.Enqueuer
}

func (w JobWriter) Write(ctx context.Context, events []core.TelemetryEvent) error {
	if w.Enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if len(events) == 0 {
		return nil
	}
	msg, err := TelemetryJobMessage(events)
	if err != nil {
		return err
	}
	return w.Enqueuer.Enqueue(ctx, msg)
}

type TelemetryConsumerConfig struct {
	Policy  RetryPolicy
	Backoff time.Duration
	Hook    worker.Hook
	Logger  core.Logger
	// Flusher handles flush jobs. Flush jobs fail when it is nil.
	Flusher core.TelemetryFlusher
}

// TelemetryConsumer drains telemetry jobs into a store. Failed deliveries are
// nacked with a linear backoff until the retry policy gives up.
type TelemetryConsumer struct {
	dequeuer queue.Dequeuer
	store    core.TelemetryEventStore
	config   TelemetryConsumerConfig
	logger   core.Logger

	mu       sync.Mutex
	attempts map[string]int
}

func NewTelemetryConsumer(
	dequeuer queue.Dequeuer,
	store core.TelemetryEventStore,
	config TelemetryConsumerConfig,
) (*TelemetryConsumer, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	if store == nil {
		return nil, fmt.Errorf("gojob: telemetry event store is required")
	}
	if config.Backoff <= 0 {
		config.Backoff = defaultTelemetryBackoff
	}
	return &TelemetryConsumer{
		dequeuer: dequeuer,
		store:    store,
		config:   config,
		logger:   glog.Ensure(config.Logger),
		attempts: map[string]int{},
	}, nil
}

// ProcessNext handles one delivery and reports the handler error, if any,
// after the delivery was acked or nacked.
func (c *TelemetryConsumer) ProcessNext(ctx context.Context) error {
	if c == nil || c.dequeuer == nil {
		return fmt.Errorf("gojob: telemetry consumer is not configured")
	}
	delivery, err := c.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}
	msg := delivery.Message()
	key := deliveryKey(msg)
	attempt := c.nextAttempt(key)
	startedAt := time.Now().UTC()
	event := worker.Event{Message: msg, Attempt: attempt, StartedAt: startedAt}
	c.hookStart(ctx, event)

	handleErr := c.handle(ctx, msg)
	event.Duration = time.Since(startedAt)
	if handleErr == nil {
		c.clearAttempts(key)
		if err := delivery.Ack(ctx); err != nil {
			return fmt.Errorf("gojob: ack telemetry job: %w", err)
		}
		c.hookSuccess(ctx, event)
		return nil
	}

	event.Err = handleErr
	nack := c.config.Policy.NackFor(attempt, c.config.Backoff, handleErr)
	event.Delay = nack.Delay
	if nack.Requeue {
		c.hookRetry(ctx, event)
	} else {
		c.clearAttempts(key)
		c.hookFailure(ctx, event)
	}
	c.logger.Warn("telemetry job failed",
		"job_id", jobID(msg),
		"attempt", attempt,
		"requeue", nack.Requeue,
		"dead_letter", nack.DeadLetter,
		"error", handleErr.Error(),
	)
	if err := delivery.Nack(ctx, nack); err != nil {
		return errors.Join(handleErr, fmt.Errorf("gojob: nack telemetry job: %w", err))
	}
	return handleErr
}

func (c *TelemetryConsumer) handle(ctx context.Context, msg *job.ExecutionMessage) error {
	if msg != nil && msg.JobID == JobIDTelemetryFlush {
		if c.config.Flusher == nil {
			return fmt.Errorf("%w: %s without flusher", ErrUnsupportedJob, JobIDTelemetryFlush)
		}
		return c.config.Flusher.Flush(ctx)
	}
	events, err := TelemetryEventsFromMessage(msg)
	if err != nil {
		return err
	}
	return c.store.Write(ctx, events)
}

func (c *TelemetryConsumer) nextAttempt(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[key]++
	return c.attempts[key]
}

func (c *TelemetryConsumer) clearAttempts(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attempts, key)
}

func (c *TelemetryConsumer) hookStart(ctx context.Context, event worker.Event) {
	if c.config.Hook != nil {
		c.config.Hook.OnStart(ctx, event)
	}
}

func (c *TelemetryConsumer) hookSuccess(ctx context.Context, event worker.Event) {
	if c.config.Hook != nil {
		c.config.Hook.OnSuccess(ctx, event)
	}
}

func (c *TelemetryConsumer) hookFailure(ctx context.Context, event worker.Event) {
	if c.config.Hook != nil {
		c.config.Hook.OnFailure(ctx, event)
	}
}

func (c *TelemetryConsumer) hookRetry(ctx context.Context, event worker.Event) {
	if c.config.Hook != nil {
		c.config.Hook.OnRetry(ctx, event)
	}
}

func deliveryKey(msg *job.ExecutionMessage) string {
	if msg == nil {
		return ""
	}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return strings.TrimSpace(msg.JobID)
}

func jobID(msg *job.ExecutionMessage) string {
	if msg == nil {
		return ""
	}
	return msg.JobID
}

// LoggingWorkerHook logs go-job worker lifecycle events. It can be handed to a
// go-job worker as well as to TelemetryConsumer.
type LoggingWorkerHook struct {
	Logger core.Logger
}

func (h LoggingWorkerHook) OnStart(ctx context.Context, event worker.Event) {
	h.log(ctx, "debug", "job started", event)
}

func (h LoggingWorkerHook) OnSuccess(ctx context.Context, event worker.Event) {
	h.log(ctx, "info", "job succeeded", event)
}

func (h LoggingWorkerHook) OnFailure(ctx context.Context, event worker.Event) {
	h.log(ctx, "error", "job failed", event)
}

func (h LoggingWorkerHook) OnRetry(ctx context.Context, event worker.Event) {
	h.log(ctx, "warn", "job retry scheduled", event)
}

func (h LoggingWorkerHook) log(ctx context.Context, level string, msg string, event worker.Event) {
	if h.Logger == nil {
		return
	}
	logger := h.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	args := []any{
		"job_id", jobID(message),
		"attempt", event.Attempt,
		"duration_ms", event.Duration.Milliseconds(),
	}
	if event.Delay > 0 {
		args = append(args, "delay_ms", event.Delay.Milliseconds())
	}
	if event.Err != nil {
		args = append(args, "error", event.Err.Error())
	}
	switch level {
	case "debug":
		logger.Debug(msg, args...)
	case "warn":
		logger.Warn(msg, args...)
	case "error":
		logger.Error(msg, args...)
	default:
		logger.Info(msg, args...)
	}
}

var _ worker.Hook = LoggingWorkerHook{}
