package paypal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const (
	accessTokenCacheKeyPrefix = "buttons::access_token::v1"

	// AccessTokenExpirySkew renews a cached token this long before PayPal
	// would reject it.
	AccessTokenExpirySkew = time.Minute
)

// CachedAccessTokenCreator reuses facilitator access tokens per client id.
// Entries live until the cache TTL or the token expiry, whichever is first.
// Failed requests are not cached.
type CachedAccessTokenCreator struct {
	base  core.AccessTokenCreator
	cache repositorycache.CacheService
	now   func() time.Time
}

// cachedAccessToken is the cache entry; fields are exported so serializing
// cache backends keep them.
type cachedAccessToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t cachedAccessToken) usable(now time.Time) bool {
	if t.Value == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Add(AccessTokenExpirySkew).Before(t.ExpiresAt)
}

func NewCachedAccessTokenCreator(
	base core.AccessTokenCreator,
	cacheService repositorycache.CacheService,
) (*CachedAccessTokenCreator, error) {
	if base == nil {
		return nil, fmt.Errorf("providers/paypal: base access token creator is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("providers/paypal: access token cache service is required")
	}
	return &CachedAccessTokenCreator{base: base, cache: cacheService, now: time.Now}, nil
}

// AccessTokenCacheKey returns buttons::access_token::v1::<client id> with the
// client id URL-path escaped.
func AccessTokenCacheKey(clientID string) (string, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return "", ErrClientIDRequired
	}
	return accessTokenCacheKeyPrefix + "::" + url.PathEscape(clientID), nil
}

func (c *CachedAccessTokenCreator) CreateAccessToken(ctx context.Context, clientID string) (string, error) {
	if c == nil || c.base == nil || c.cache == nil {
		return "", fmt.Errorf("providers/paypal: cached access token creator is not configured")
	}
	cacheKey, err := AccessTokenCacheKey(clientID)
	if err != nil {
		return "", err
	}
	normalized := strings.TrimSpace(clientID)
	fetch := func(ctx context.Context) (cachedAccessToken, error) {
		return c.fetch(ctx, normalized)
	}
	entry, err := repositorycache.GetOrFetch(ctx, c.cache, cacheKey, fetch)
	if err != nil {
		return "", err
	}
	if entry.usable(c.now()) {
		return entry.Value, nil
	}
	if err := c.cache.Delete(ctx, cacheKey); err != nil {
		return "", fmt.Errorf("providers/paypal: drop expired access token: %w", err)
	}
	entry, err = repositorycache.GetOrFetch(ctx, c.cache, cacheKey, fetch)
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (c *CachedAccessTokenCreator) fetch(ctx context.Context, clientID string) (cachedAccessToken, error) {
	if expiring, ok := c.base.(ExpiringAccessTokenCreator); ok {
		token, err := expiring.CreateExpiringAccessToken(ctx, clientID)
		if err != nil {
			return cachedAccessToken{}, err
		}
		return cachedAccessToken{Value: token.Value, ExpiresAt: token.ExpiresAt}, nil
	}
	value, err := c.base.CreateAccessToken(ctx, clientID)
	if err != nil {
		return cachedAccessToken{}, err
	}
	return cachedAccessToken{Value: value}, nil
}

// Invalidate drops the cached token of clientID.
func (c *CachedAccessTokenCreator) Invalidate(ctx context.Context, clientID string) error {
	if c == nil || c.cache == nil {
		return fmt.Errorf("providers/paypal: cached access token creator is not configured")
	}
	cacheKey, err := AccessTokenCacheKey(clientID)
	if err != nil {
		return err
	}
	return c.cache.Delete(ctx, cacheKey)
}

var _ core.AccessTokenCreator = (*CachedAccessTokenCreator)(nil)
