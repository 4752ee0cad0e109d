package paypal

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	"github.com/edulopespp/paypal-smart-payment-buttons/transport"
	glog "github.com/goliatone/go-logger/glog"
)

type Environment string

const (
	EnvironmentSandbox Environment = "sandbox"
	EnvironmentLive    Environment = "live"
)

const (
	sandboxAPIBaseURL   = "https://api-m.sandbox.paypal.com"
	liveAPIBaseURL      = "https://api-m.paypal.com"
	sandboxSmartBaseURL = "https://www.sandbox.paypal.com"
	liveSmartBaseURL    = "https://www.paypal.com"

	defaultRequestTimeout = 30 * time.Second
	defaultMaxBodyBytes   = 1 << 20
)

// ClientConfig configures every PayPal client in this package. BaseURL serves
// the REST api; SmartAPIBaseURL serves the checkout smart api.
type ClientConfig struct {
	Environment          Environment
	BaseURL              string
	SmartAPIBaseURL      string
	RequestTimeout       time.Duration
	MaxResponseBodyBytes int64
	Transport            core.TransportAdapter
	HTTPClient           transport.HTTPDoer
	Logger               core.Logger
}

func (c ClientConfig) normalized() (ClientConfig, error) {
	out := c
	out.Environment = Environment(strings.ToLower(strings.TrimSpace(string(c.Environment))))
	if out.Environment == "" {
		out.Environment = EnvironmentSandbox
	}
	switch out.Environment {
	case EnvironmentSandbox:
		out.BaseURL = firstNonEmpty(c.BaseURL, sandboxAPIBaseURL)
		out.SmartAPIBaseURL = firstNonEmpty(c.SmartAPIBaseURL, sandboxSmartBaseURL)
	case EnvironmentLive:
		out.BaseURL = firstNonEmpty(c.BaseURL, liveAPIBaseURL)
		out.SmartAPIBaseURL = firstNonEmpty(c.SmartAPIBaseURL, liveSmartBaseURL)
	default:
		return ClientConfig{}, fmt.Errorf("providers/paypal: unsupported environment %q", c.Environment)
	}
	for _, raw := range []string{out.BaseURL, out.SmartAPIBaseURL} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return ClientConfig{}, fmt.Errorf("providers/paypal: invalid base url %q", raw)
		}
	}
	out.BaseURL = strings.TrimRight(out.BaseURL, "/")
	out.SmartAPIBaseURL = strings.TrimRight(out.SmartAPIBaseURL, "/")
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = defaultRequestTimeout
	}
	if out.MaxResponseBodyBytes <= 0 {
		out.MaxResponseBodyBytes = defaultMaxBodyBytes
	}
	if out.Logger == nil {
		out.Logger = glog.Nop()
	}
	if out.Transport == nil {
		adapter := transport.NewRESTAdapter(out.HTTPClient)
		adapter.Logger = out.Logger
		out.Transport = adapter
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
