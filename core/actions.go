package core

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAccessTokenCreatorRequired     = errors.New("core: access token creator is required")
	ErrOrderIDCreatorRequired         = errors.New("core: order id creator is required")
	ErrBillingTokenTranslatorRequired = errors.New("core: billing token translator is required")
	ErrSubscriptionTranslatorRequired = errors.New("core: subscription translator is required")
	ErrClientIDRequired               = errors.New("core: client id is required")
)

// DefaultOrderAmount is the amount of the order created when no other source
// supplies one.
var DefaultOrderAmount = decimal.New(1, -2)

func BuildCreateOrderData() CreateOrderData {
	return CreateOrderData{}
}

// BuildCreateOrderActions returns the actions handed to an integrator order
// builder. Order.Create normalizes the draft, obtains a facilitator access token
// for the client id and submits the order.
func BuildCreateOrderActions(merchant MerchantConfig, tokens AccessTokenCreator, orderIDs OrderIDCreator) CreateOrderActions {
	return CreateOrderActions{
		Order: &orderSubmitter{
			merchant: merchant.clone(),
			tokens:   tokens,
			orderIDs: orderIDs,
		},
	}
}

// DefaultOrderDraft is the one cent order used by the fallback branch. The
// currency is always USD.
func DefaultOrderDraft() Order {
	return Order{
		PurchaseUnits: []PurchaseUnit{
			{
				Amount: Amount{
					CurrencyCode: string(CurrencyUSD),
					Value:        DefaultOrderAmount.StringFixed(2),
				},
			},
		},
	}
}

// Decimal parses the amount value.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(a.Value))
}

type orderSubmitter struct {
	merchant MerchantConfig
	tokens   AccessTokenCreator
	orderIDs OrderIDCreator
}

func (s *orderSubmitter) Create(ctx context.Context, draft Order) (string, error) {
	order, err := NormalizeOrder(draft, s.merchant)
	if err != nil {
		return "", err
	}
	if s.tokens == nil {
		return "", ErrAccessTokenCreatorRequired
	}
	if s.orderIDs == nil {
		return "", ErrOrderIDCreatorRequired
	}
	accessToken, err := s.tokens.CreateAccessToken(ctx, s.merchant.ClientID)
	if err != nil {
		return "", err
	}
	return s.orderIDs.CreateOrderID(ctx, order, CreateOrderIDOptions{
		FacilitatorAccessToken: accessToken,
		PartnerAttributionID:   s.merchant.PartnerAttributionID,
	})
}

var _ OrderCreator = (*orderSubmitter)(nil)
