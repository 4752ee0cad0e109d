package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

var (
	ErrResolutionPanicked = errors.New("core: order resolution panicked")

	errResolutionSuspended = errors.New("core: order resolution suspended")
)

const DefaultTelemetryFlushTimeout = 10 * time.Second

type ResolutionBranch string

const (
	BranchValidation       ResolutionBranch = "validation"
	BranchBillingAgreement ResolutionBranch = "billing_agreement"
	BranchSubscription     ResolutionBranch = "subscription"
	BranchCustomOrder      ResolutionBranch = "custom_order"
	BranchDefaultOrder     ResolutionBranch = "default_order"
)

// OrderResolver produces the order id of one button instance. The first call
// to Resolve or Future starts the resolution; every caller observes the same
// outcome, failures included.
type OrderResolver struct {
	config                 Config
	merchant               MerchantConfig
	logger                 Logger
	loggerProvider         LoggerProvider
	metricsRecorder        MetricsRecorder
	errorMapper            ErrorMapper
	configProvider         ConfigProvider
	optionsResolver        OptionsResolver
	accessTokenCreator     AccessTokenCreator
	orderIDCreator         OrderIDCreator
	billingTokenTranslator BillingTokenTranslator
	subscriptionTranslator SubscriptionTranslator
	createBillingAgreement CreateBillingAgreementFunc
	createSubscription     CreateSubscriptionFunc
	createOrder            CreateOrderFunc
	validationGate         *Future[bool]
	telemetrySink          TelemetrySink
	telemetryFlushTimeout  time.Duration
	clock                  func() time.Time
	actions                CreateOrderActions

	once           sync.Once
	result         *Future[string]
	telemetryDone  chan struct{}
	telemetryClose sync.Once
}

type ResolverDependencies struct {
	Logger                 Logger
	LoggerProvider         LoggerProvider
	MetricsRecorder        MetricsRecorder
	ErrorMapper            ErrorMapper
	ConfigProvider         ConfigProvider
	OptionsResolver        OptionsResolver
	AccessTokenCreator     AccessTokenCreator
	OrderIDCreator         OrderIDCreator
	BillingTokenTranslator BillingTokenTranslator
	SubscriptionTranslator SubscriptionTranslator
	TelemetrySink          TelemetrySink
}

func NewOrderResolver(cfg Config, opts ...Option) (*OrderResolver, error) {
	builder := defaultResolverBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("buttons", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("buttons.resolver"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.telemetrySink == nil {
		builder.telemetrySink = NopTelemetrySink{}
	}
	if builder.clock == nil {
		builder.clock = time.Now
	}
	if builder.telemetryFlushTimeout <= 0 {
		builder.telemetryFlushTimeout = DefaultTelemetryFlushTimeout
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if strings.TrimSpace(finalConfig.ClientID) == "" {
		return nil, ErrClientIDRequired
	}
	if strings.TrimSpace(finalConfig.ButtonSessionID) == "" {
		finalConfig.ButtonSessionID = uuid.NewString()
	}

	if builder.createBillingAgreement != nil && builder.billingTokenTranslator == nil {
		return nil, ErrBillingTokenTranslatorRequired
	}
	if builder.createSubscription != nil && builder.subscriptionTranslator == nil {
		return nil, ErrSubscriptionTranslatorRequired
	}
	if builder.createBillingAgreement == nil && builder.createSubscription == nil {
		if builder.accessTokenCreator == nil {
			return nil, ErrAccessTokenCreatorRequired
		}
		if builder.orderIDCreator == nil {
			return nil, ErrOrderIDCreatorRequired
		}
	}

	merchant := finalConfig.MerchantConfig()
	return &OrderResolver{
		config:                 finalConfig,
		merchant:               merchant,
		logger:                 logger,
		loggerProvider:         provider,
		metricsRecorder:        builder.metricsRecorder,
		errorMapper:            builder.errorMapper,
		configProvider:         builder.configProvider,
		optionsResolver:        builder.optionsResolver,
		accessTokenCreator:     builder.accessTokenCreator,
		orderIDCreator:         builder.orderIDCreator,
		billingTokenTranslator: builder.billingTokenTranslator,
		subscriptionTranslator: builder.subscriptionTranslator,
		createBillingAgreement: builder.createBillingAgreement,
		createSubscription:     builder.createSubscription,
		createOrder:            builder.createOrder,
		validationGate:         builder.validationGate,
		telemetrySink:          builder.telemetrySink,
		telemetryFlushTimeout:  builder.telemetryFlushTimeout,
		clock:                  builder.clock,
		actions:                BuildCreateOrderActions(merchant, builder.accessTokenCreator, builder.orderIDCreator),
		telemetryDone:          make(chan struct{}),
	}, nil
}

func (r *OrderResolver) Config() Config {
	if r == nil {
		return Config{}
	}
	cfg := r.config
	if cfg.MerchantID != nil {
		cfg.MerchantID = append([]string{}, cfg.MerchantID...)
	}
	return cfg
}

func (r *OrderResolver) MerchantConfig() MerchantConfig {
	if r == nil {
		return MerchantConfig{}
	}
	return r.merchant.clone()
}

func (r *OrderResolver) Dependencies() ResolverDependencies {
	if r == nil {
		return ResolverDependencies{}
	}
	return ResolverDependencies{
		Logger:                 r.logger,
		LoggerProvider:         r.loggerProvider,
		MetricsRecorder:        r.metricsRecorder,
		ErrorMapper:            r.errorMapper,
		ConfigProvider:         r.configProvider,
		OptionsResolver:        r.optionsResolver,
		AccessTokenCreator:     r.accessTokenCreator,
		OrderIDCreator:         r.orderIDCreator,
		BillingTokenTranslator: r.billingTokenTranslator,
		SubscriptionTranslator: r.subscriptionTranslator,
		TelemetrySink:          r.telemetrySink,
	}
}

// Resolve starts the resolution when needed and waits for its outcome. A done
// ctx ends the wait of this caller only.
func (r *OrderResolver) Resolve(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return r.Future(ctx).Await(ctx)
}

// Future starts the resolution when needed and returns the shared result. The
// resolution keeps the values of the first caller ctx but ignores its
// cancellation.
func (r *OrderResolver) Future(ctx context.Context) *Future[string] {
	if ctx == nil {
		ctx = context.Background()
	}
	r.once.Do(func() {
		r.result = NewFuture[string]()
		go r.run(context.WithoutCancel(ctx))
	})
	return r.result
}

type orderBranch struct {
	name    ResolutionBranch
	enabled bool
	run     func(ctx context.Context) (string, error)
}

func (r *OrderResolver) branches() []orderBranch {
	return []orderBranch{
		{name: BranchBillingAgreement, enabled: r.createBillingAgreement != nil, run: r.runBillingAgreement},
		{name: BranchSubscription, enabled: r.createSubscription != nil, run: r.runSubscription},
		{name: BranchCustomOrder, enabled: r.createOrder != nil, run: r.runCustomOrder},
		{name: BranchDefaultOrder, enabled: true, run: r.runDefaultOrder},
	}
}

func (r *OrderResolver) run(ctx context.Context) {
	startedAt := time.Now()
	branch := BranchValidation
	defer func() {
		if recovered := recover(); recovered != nil {
			err := fmt.Errorf("%w: %v", ErrResolutionPanicked, recovered)
			r.observeOperation(ctx, startedAt, "resolve_order", err, r.resolutionFields(branch, ""))
			r.result.Reject(err)
		}
	}()

	orderID, err := r.resolve(ctx, &branch)
	if errors.Is(err, errResolutionSuspended) {
		r.logInfo(ctx, "resolve_order suspended", r.resolutionFields(branch, ""))
		return
	}
	r.observeOperation(ctx, startedAt, "resolve_order", err, r.resolutionFields(branch, orderID))
	if err != nil {
		r.result.Reject(err)
		return
	}
	r.result.Resolve(orderID)
}

func (r *OrderResolver) resolve(ctx context.Context, branch *ResolutionBranch) (string, error) {
	if r.validationGate != nil {
		valid, err := r.validationGate.Await(ctx)
		if err != nil {
			return "", err
		}
		if !valid {
			return "", errResolutionSuspended
		}
	}

	var orderID string
	for _, candidate := range r.branches() {
		if !candidate.enabled {
			continue
		}
		*branch = candidate.name
		id, err := candidate.run(ctx)
		if err != nil {
			return "", err
		}
		orderID = id
		break
	}

	if err := ValidateOrderID(orderID); err != nil {
		return "", err
	}

	event := NewOrderReceivedEvent(orderID, r.config.ButtonSessionID, r.clock())
	flusher := r.telemetrySink.Track(ctx, event)
	if flusher == nil {
		r.markTelemetryDone()
		return orderID, nil
	}
	go r.flushTelemetry(ctx, flusher, r.resolutionFields(*branch, orderID))
	return orderID, nil
}

// flushTelemetry runs off the resolution path; its outcome is only logged.
func (r *OrderResolver) flushTelemetry(ctx context.Context, flusher TelemetryFlusher, fields map[string]any) {
	defer r.markTelemetryDone()
	defer func() {
		if recovered := recover(); recovered != nil {
			fields["error"] = fmt.Sprint(recovered)
			r.logError(ctx, "telemetry flush panicked", fields)
		}
	}()
	flushCtx, cancel := context.WithTimeout(ctx, r.telemetryFlushTimeout)
	defer cancel()
	if err := flusher.Flush(flushCtx); err != nil {
		fields["error"] = err.Error()
		r.logError(ctx, "telemetry flush failed", fields)
	}
}

func (r *OrderResolver) markTelemetryDone() {
	r.telemetryClose.Do(func() { close(r.telemetryDone) })
}

// TelemetryFlushed is closed once the telemetry flush that follows a
// successful resolution has returned. Failed or suspended resolutions never
// close it.
func (r *OrderResolver) TelemetryFlushed() <-chan struct{} {
	if r == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return r.telemetryDone
}

func (r *OrderResolver) runBillingAgreement(ctx context.Context) (string, error) {
	billingToken, err := r.createBillingAgreement(ctx)
	if err != nil {
		return "", err
	}
	return r.billingTokenTranslator.BillingTokenToOrderID(ctx, billingToken)
}

func (r *OrderResolver) runSubscription(ctx context.Context) (string, error) {
	subscriptionID, err := r.createSubscription(ctx)
	if err != nil {
		return "", err
	}
	return r.subscriptionTranslator.SubscriptionIDToCartID(ctx, subscriptionID)
}

func (r *OrderResolver) runCustomOrder(ctx context.Context) (string, error) {
	return r.createOrder(ctx, BuildCreateOrderData(), r.actions)
}

func (r *OrderResolver) runDefaultOrder(ctx context.Context) (string, error) {
	return r.actions.Order.Create(ctx, DefaultOrderDraft())
}

func (r *OrderResolver) resolutionFields(branch ResolutionBranch, orderID string) map[string]any {
	fields := map[string]any{
		"branch":            string(branch),
		"button_session_id": r.config.ButtonSessionID,
	}
	if orderID != "" {
		fields["order_id"] = orderID
	}
	return fields
}

// Branch reports the branch a resolution takes. It is fixed at construction;
// the validation gate can still suspend it.
func (r *OrderResolver) Branch() ResolutionBranch {
	if r == nil {
		return ""
	}
	for _, candidate := range r.branches() {
		if candidate.enabled {
			return candidate.name
		}
	}
	return BranchDefaultOrder
}
