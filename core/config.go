package core

import (
	"fmt"
	"strings"
)

// Config carries the button instance configuration set on the sdk script tag.
type Config struct {
	ClientID             string   `koanf:"client_id" mapstructure:"client_id"`
	Intent               Intent   `koanf:"intent" mapstructure:"intent"`
	Currency             Currency `koanf:"currency" mapstructure:"currency"`
	MerchantID           []string `koanf:"merchant_id" mapstructure:"merchant_id"`
	PartnerAttributionID string   `koanf:"partner_attribution_id" mapstructure:"partner_attribution_id"`
	ButtonSessionID      string   `koanf:"button_session_id" mapstructure:"button_session_id"`
}

func DefaultConfig() Config {
	return Config{
		Intent:   IntentCapture,
		Currency: CurrencyUSD,
	}
}

func (c Config) Validate() error {
	if !c.Intent.Valid() {
		return fmt.Errorf("core: intent %q is not supported", c.Intent)
	}
	if !c.Currency.Valid() {
		return fmt.Errorf("core: currency %q is not supported", c.Currency)
	}
	return nil
}

// MerchantConfig projects the configuration consumed by the order normalizer.
func (c Config) MerchantConfig() MerchantConfig {
	merchant := MerchantConfig{
		ClientID:             strings.TrimSpace(c.ClientID),
		Intent:               c.Intent.Normalize(),
		Currency:             c.Currency.Normalize(),
		PartnerAttributionID: strings.TrimSpace(c.PartnerAttributionID),
	}
	if c.MerchantID != nil {
		merchant.MerchantID = append([]string{}, c.MerchantID...)
	}
	return merchant
}
