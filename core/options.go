package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type resolverBuilder struct {
	runtimeConfig          Config
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
}

type Option func(*resolverBuilder)

func WithLogger(logger Logger) Option {
	return func(b *resolverBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *resolverBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *resolverBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *resolverBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *resolverBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *resolverBuilder) {
		b.optionsResolver = resolver
	}
}

func WithAccessTokenCreator(creator AccessTokenCreator) Option {
	return func(b *resolverBuilder) {
		b.accessTokenCreator = creator
	}
}

func WithOrderIDCreator(creator OrderIDCreator) Option {
	return func(b *resolverBuilder) {
		b.orderIDCreator = creator
	}
}

func WithBillingTokenTranslator(translator BillingTokenTranslator) Option {
	return func(b *resolverBuilder) {
		b.billingTokenTranslator = translator
	}
}

func WithSubscriptionTranslator(translator SubscriptionTranslator) Option {
	return func(b *resolverBuilder) {
		b.subscriptionTranslator = translator
	}
}

// WithCreateBillingAgreement enables the billing agreement branch.
func WithCreateBillingAgreement(fn CreateBillingAgreementFunc) Option {
	return func(b *resolverBuilder) {
		b.createBillingAgreement = fn
	}
}

// WithCreateSubscription enables the subscription branch.
func WithCreateSubscription(fn CreateSubscriptionFunc) Option {
	return func(b *resolverBuilder) {
		b.createSubscription = fn
	}
}

// WithCreateOrder installs the integrator order builder.
func WithCreateOrder(fn CreateOrderFunc) Option {
	return func(b *resolverBuilder) {
		b.createOrder = fn
	}
}

// WithValidationGate makes every resolution wait on gate first. A gate settled
// with false suspends the resolution for good.
func WithValidationGate(gate *Future[bool]) Option {
	return func(b *resolverBuilder) {
		b.validationGate = gate
	}
}

func WithTelemetrySink(sink TelemetrySink) Option {
	return func(b *resolverBuilder) {
		b.telemetrySink = sink
	}
}

// WithTelemetryFlushTimeout bounds the background flush that follows a
// resolved order id. Zero or less keeps the default.
func WithTelemetryFlushTimeout(timeout time.Duration) Option {
	return func(b *resolverBuilder) {
		b.telemetryFlushTimeout = timeout
	}
}

func WithClock(clock func() time.Time) Option {
	return func(b *resolverBuilder) {
		b.clock = clock
	}
}

func defaultResolverBuilder(runtime Config) resolverBuilder {
	loggerProvider, logger := glog.Resolve("buttons", nil, nil)
	return resolverBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     MapError,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		telemetrySink:   NopTelemetrySink{},
		clock:           time.Now,

		telemetryFlushTimeout: DefaultTelemetryFlushTimeout,
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	setString := func(key string, value string) {
		if includeZero || strings.TrimSpace(value) != "" {
			layer[key] = value
		}
	}
	setString("client_id", cfg.ClientID)
	setString("intent", string(cfg.Intent))
	setString("currency", string(cfg.Currency))
	setString("partner_attribution_id", cfg.PartnerAttributionID)
	setString("button_session_id", cfg.ButtonSessionID)
	if cfg.MerchantID != nil {
		layer["merchant_id"] = append([]string{}, cfg.MerchantID...)
	}
	return layer
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}
