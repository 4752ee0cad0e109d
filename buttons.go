package buttons

import (
	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	"github.com/edulopespp/paypal-smart-payment-buttons/providers/paypal"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type Config = core.Config

type Option = core.Option

type OrderResolver = core.OrderResolver
type ResolutionBranch = core.ResolutionBranch
type Order = core.Order
type MerchantConfig = core.MerchantConfig
type CreateOrderData = core.CreateOrderData
type CreateOrderActions = core.CreateOrderActions
type TelemetryEvent = core.TelemetryEvent
type TelemetryEventFilter = core.TelemetryEventFilter
type TelemetryEventPage = core.TelemetryEventPage

type ResolveOrderRequest = core.ResolveOrderRequest
type ResolveOrderResult = core.ResolveOrderResult
type NormalizeOrderRequest = core.NormalizeOrderRequest

var (
	WithLogger                 = core.WithLogger
	WithLoggerProvider         = core.WithLoggerProvider
	WithMetricsRecorder        = core.WithMetricsRecorder
	WithErrorMapper            = core.WithErrorMapper
	WithConfigProvider         = core.WithConfigProvider
	WithOptionsResolver        = core.WithOptionsResolver
	WithAccessTokenCreator     = core.WithAccessTokenCreator
	WithOrderIDCreator         = core.WithOrderIDCreator
	WithBillingTokenTranslator = core.WithBillingTokenTranslator
	WithSubscriptionTranslator = core.WithSubscriptionTranslator
	WithCreateBillingAgreement = core.WithCreateBillingAgreement
	WithCreateSubscription     = core.WithCreateSubscription
	WithCreateOrder            = core.WithCreateOrder
	WithValidationGate         = core.WithValidationGate
	WithTelemetrySink          = core.WithTelemetrySink
	WithTelemetryFlushTimeout  = core.WithTelemetryFlushTimeout
	WithClock                  = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewOrderResolver(cfg Config, opts ...Option) (*OrderResolver, error) {
	return core.NewOrderResolver(cfg, opts...)
}

func NormalizeOrder(draft Order, merchant MerchantConfig) (Order, error) {
	return core.NormalizeOrder(draft, merchant)
}

// PayPalClients builds the PayPal REST and smart api clients. A non-nil
// tokenCache caches access tokens per client id.
func PayPalClients(cfg paypal.ClientConfig, tokenCache repositorycache.CacheService) (*paypal.Clients, error) {
	clients, err := paypal.NewClients(cfg)
	if err != nil {
		return nil, err
	}
	if tokenCache != nil {
		if err := clients.WithTokenCache(tokenCache); err != nil {
			return nil, err
		}
	}
	return clients, nil
}
