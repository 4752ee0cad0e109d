package paypal

import (
	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

// Clients bundles the PayPal implementations of every resolver collaborator.
type Clients struct {
	AccessTokens      core.AccessTokenCreator
	Orders            *OrderClient
	BillingAgreements *BillingAgreementClient
	Subscriptions     *SubscriptionClient
}

func NewClients(cfg ClientConfig) (*Clients, error) {
	normalized, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	api := apiClient{config: normalized}
	return &Clients{
		AccessTokens:      &AccessTokenClient{api: api},
		Orders:            &OrderClient{api: api},
		BillingAgreements: &BillingAgreementClient{api: api},
		Subscriptions:     &SubscriptionClient{api: api},
	}, nil
}

// WithTokenCache wraps the access token client with a per client id cache.
func (c *Clients) WithTokenCache(cacheService repositorycache.CacheService) error {
	cached, err := NewCachedAccessTokenCreator(c.AccessTokens, cacheService)
	if err != nil {
		return err
	}
	c.AccessTokens = cached
	return nil
}

func (c *Clients) ResolverOptions() []core.Option {
	if c == nil {
		return nil
	}
	return []core.Option{
		core.WithAccessTokenCreator(c.AccessTokens),
		core.WithOrderIDCreator(c.Orders),
		core.WithBillingTokenTranslator(c.BillingAgreements),
		core.WithSubscriptionTranslator(c.Subscriptions),
	}
}
