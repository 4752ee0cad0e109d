package paypal

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edulopespp/paypal-smart-payment-buttons/core"
)

const (
	accessTokenPath      = "/v1/oauth2/token"
	clientCredentialsKey = "client_credentials"
)

// AccessTokenClient obtains a facilitator access token for a public client id
// through the client credentials grant.
type AccessTokenClient struct {
	api apiClient
}

func NewAccessTokenClient(cfg ClientConfig) (*AccessTokenClient, error) {
	api, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AccessTokenClient{api: api}, nil
}

type accessTokenResponse struct {
	Scope       string `json:"scope"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	AppID       string `json:"app_id"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AccessToken is a facilitator token and the moment PayPal stops accepting
// it. A zero ExpiresAt means the lifetime is unknown.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// ExpiringAccessTokenCreator reports the lifetime of the tokens it creates.
type ExpiringAccessTokenCreator interface {
	CreateExpiringAccessToken(ctx context.Context, clientID string) (AccessToken, error)
}

func (c *AccessTokenClient) CreateAccessToken(ctx context.Context, clientID string) (string, error) {
	token, err := c.CreateExpiringAccessToken(ctx, clientID)
	if err != nil {
		return "", err
	}
	return token.Value, nil
}

func (c *AccessTokenClient) CreateExpiringAccessToken(ctx context.Context, clientID string) (AccessToken, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return AccessToken{}, ErrClientIDRequired
	}
	form := url.Values{}
	form.Set("grant_type", clientCredentialsKey)
	basic := base64.StdEncoding.EncodeToString([]byte(clientID + ":"))

	req := core.TransportRequest{
		Method: http.MethodPost,
		URL:    c.api.config.BaseURL + accessTokenPath,
		Headers: map[string]string{
			"Authorization": "Basic " + basic,
			"Content-Type":  "application/x-www-form-urlencoded",
		},
		Body: []byte(form.Encode()),
	}
	requestedAt := time.Now()
	var payload accessTokenResponse
	if err := c.api.send(ctx, "create access token", req, &payload); err != nil {
		return AccessToken{}, err
	}
	value := strings.TrimSpace(payload.AccessToken)
	if value == "" {
		return AccessToken{}, &APIError{Operation: "create access token", Cause: ErrAccessTokenMissing}
	}
	token := AccessToken{Value: value}
	if payload.ExpiresIn > 0 {
		token.ExpiresAt = requestedAt.Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return token, nil
}

var (
	_ core.AccessTokenCreator    = (*AccessTokenClient)(nil)
	_ ExpiringAccessTokenCreator = (*AccessTokenClient)(nil)
)
