package core

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

func TestNewOrderResolver_DefaultDependencies(t *testing.T) {
	upstream := newFakeUpstream()
	resolver, err := NewOrderResolver(Config{ClientID: "client-abc"},
		WithAccessTokenCreator(upstream),
		WithOrderIDCreator(upstream),
	)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	deps := resolver.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.ErrorMapper == nil {
		t.Fatalf("expected default error mapper")
	}
	if deps.ConfigProvider == nil {
		t.Fatalf("expected default config provider")
	}
	if deps.OptionsResolver == nil {
		t.Fatalf("expected default options resolver")
	}
	if deps.TelemetrySink == nil {
		t.Fatalf("expected default telemetry sink")
	}
	cfg := resolver.Config()
	if cfg.Intent != IntentCapture || cfg.Currency != CurrencyUSD {
		t.Fatalf("expected capture/USD defaults, got %q/%q", cfg.Intent, cfg.Currency)
	}
}

func TestNewOrderResolver_WithXOverrides(t *testing.T) {
	upstream := newFakeUpstream()
	customLogger := stubLogger{}
	customProvider := stubLoggerProvider{logger: customLogger}
	sentinel := errors.New("sentinel")
	customMapper := func(error) *goerrors.Error {
		return goerrors.Wrap(sentinel, goerrors.CategoryOperation, "mapped")
	}
	configProvider := &fixedConfigProvider{cfg: Config{ClientID: "from-provider"}}
	optionsResolver := &fixedOptionsResolver{cfg: Config{
		ClientID:        "resolved",
		Intent:          IntentAuthorize,
		Currency:        CurrencyGBP,
		ButtonSessionID: "session-fixed",
	}}
	sink := &recordingTelemetrySink{}

	resolver, err := NewOrderResolver(Config{ClientID: "runtime"},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorMapper(customMapper),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
		WithAccessTokenCreator(upstream),
		WithOrderIDCreator(upstream),
		WithTelemetrySink(sink),
	)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	deps := resolver.Dependencies()
	if deps.Logger != customLogger {
		t.Fatalf("expected custom logger override")
	}
	if resolved := deps.LoggerProvider.GetLogger("buttons.override"); resolved != customLogger {
		t.Fatalf("expected logger provider to resolve custom logger")
	}
	if deps.ConfigProvider != configProvider {
		t.Fatalf("expected custom config provider override")
	}
	if deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected custom options resolver override")
	}
	if deps.TelemetrySink != sink {
		t.Fatalf("expected custom telemetry sink override")
	}
	merchant := resolver.MerchantConfig()
	if merchant.ClientID != "resolved" || merchant.Intent != IntentAuthorize || merchant.Currency != CurrencyGBP {
		t.Fatalf("expected options resolver output config, got %#v", merchant)
	}
	if resolver.Config().ButtonSessionID != "session-fixed" {
		t.Fatalf("expected resolved button session id")
	}
}

func TestNewOrderResolver_ConfigLayeringPrecedence(t *testing.T) {
	upstream := newFakeUpstream()
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"client_id":              "from-config",
		"currency":               "EUR",
		"merchant_id":            []string{"MERCHANT-CONFIG"},
		"partner_attribution_id": "BN-CONFIG",
	}})

	resolver, err := NewOrderResolver(Config{ClientID: "from-runtime", Intent: IntentAuthorize},
		WithConfigProvider(provider),
		WithAccessTokenCreator(upstream),
		WithOrderIDCreator(upstream),
	)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	cfg := resolver.Config()
	if cfg.ClientID != "from-runtime" {
		t.Fatalf("expected runtime client id to win, got %q", cfg.ClientID)
	}
	if cfg.Intent != IntentAuthorize {
		t.Fatalf("expected runtime intent, got %q", cfg.Intent)
	}
	if cfg.Currency != CurrencyEUR {
		t.Fatalf("expected loaded currency, got %q", cfg.Currency)
	}
	if cfg.PartnerAttributionID != "BN-CONFIG" {
		t.Fatalf("expected loaded partner attribution id, got %q", cfg.PartnerAttributionID)
	}
	if len(cfg.MerchantID) != 1 || cfg.MerchantID[0] != "MERCHANT-CONFIG" {
		t.Fatalf("expected loaded merchant id, got %#v", cfg.MerchantID)
	}
}

func TestNewOrderResolver_RejectsUnsupportedConfig(t *testing.T) {
	upstream := newFakeUpstream()
	_, err := NewOrderResolver(Config{ClientID: "client-abc", Currency: "XYZ"},
		WithAccessTokenCreator(upstream),
		WithOrderIDCreator(upstream),
	)
	if err == nil {
		t.Fatalf("expected unsupported currency to fail")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected mapped go-errors envelope, got %T", err)
	}
}

func TestNewOrderResolver_ConfigProviderErrorIsMapped(t *testing.T) {
	upstream := newFakeUpstream()
	loadErr := errors.New("config source offline")
	_, err := NewOrderResolver(testResolverConfig(),
		WithConfigProvider(NewCfgxConfigProvider(mapRawLoader{err: loadErr})),
		WithAccessTokenCreator(upstream),
		WithOrderIDCreator(upstream),
	)
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected mapped go-errors envelope, got %T (%v)", err, err)
	}
	if rich.TextCode == "" {
		t.Fatalf("expected text code on mapped build error")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if err := (Config{Intent: "sell", Currency: CurrencyUSD}).Validate(); err == nil {
		t.Fatalf("expected unsupported intent to fail")
	}
	if err := (Config{Intent: IntentCapture, Currency: "usd"}).Validate(); err != nil {
		t.Fatalf("expected lower-case currency to validate, got %v", err)
	}
}

func TestConfig_MerchantConfigKeepsNilMerchantID(t *testing.T) {
	merchant := Config{ClientID: " abc ", Intent: "CAPTURE", Currency: "eur"}.MerchantConfig()
	if merchant.MerchantID != nil {
		t.Fatalf("expected nil merchant id list")
	}
	if merchant.ClientID != "abc" || merchant.Intent != IntentCapture || merchant.Currency != CurrencyEUR {
		t.Fatalf("unexpected merchant config %#v", merchant)
	}
	withEmpty := Config{MerchantID: []string{}}.MerchantConfig()
	if withEmpty.MerchantID == nil {
		t.Fatalf("expected empty merchant id list to stay non-nil")
	}
}
