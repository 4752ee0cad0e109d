package core

import "strings"

// Intent is the payment intent configured on the hosting button. Values are the
// lower-case forms accepted by the sdk query string.
type Intent string

const (
	IntentCapture      Intent = "capture"
	IntentAuthorize    Intent = "authorize"
	IntentOrder        Intent = "order"
	IntentTokenize     Intent = "tokenize"
	IntentSubscription Intent = "subscription"
)

func (i Intent) Normalize() Intent {
	return Intent(strings.ToLower(strings.TrimSpace(string(i))))
}

func (i Intent) Valid() bool {
	switch i.Normalize() {
	case IntentCapture, IntentAuthorize, IntentOrder, IntentTokenize, IntentSubscription:
		return true
	default:
		return false
	}
}

// Currency is an ISO-4217 code supported for button checkout.
type Currency string

const (
	CurrencyAUD Currency = "AUD"
	CurrencyBRL Currency = "BRL"
	CurrencyCAD Currency = "CAD"
	CurrencyCZK Currency = "CZK"
	CurrencyDKK Currency = "DKK"
	CurrencyEUR Currency = "EUR"
	CurrencyHKD Currency = "HKD"
	CurrencyHUF Currency = "HUF"
	CurrencyINR Currency = "INR"
	CurrencyILS Currency = "ILS"
	CurrencyJPY Currency = "JPY"
	CurrencyMYR Currency = "MYR"
	CurrencyMXN Currency = "MXN"
	CurrencyTWD Currency = "TWD"
	CurrencyNZD Currency = "NZD"
	CurrencyNOK Currency = "NOK"
	CurrencyPHP Currency = "PHP"
	CurrencyPLN Currency = "PLN"
	CurrencyGBP Currency = "GBP"
	CurrencyRUB Currency = "RUB"
	CurrencySGD Currency = "SGD"
	CurrencySEK Currency = "SEK"
	CurrencyCHF Currency = "CHF"
	CurrencyTHB Currency = "THB"
	CurrencyUSD Currency = "USD"
)

var supportedCurrencies = map[Currency]struct{}{
	CurrencyAUD: {}, CurrencyBRL: {}, CurrencyCAD: {}, CurrencyCZK: {}, CurrencyDKK: {},
	CurrencyEUR: {}, CurrencyHKD: {}, CurrencyHUF: {}, CurrencyINR: {}, CurrencyILS: {},
	CurrencyJPY: {}, CurrencyMYR: {}, CurrencyMXN: {}, CurrencyTWD: {}, CurrencyNZD: {},
	CurrencyNOK: {}, CurrencyPHP: {}, CurrencyPLN: {}, CurrencyGBP: {}, CurrencyRUB: {},
	CurrencySGD: {}, CurrencySEK: {}, CurrencyCHF: {}, CurrencyTHB: {}, CurrencyUSD: {},
}

func (c Currency) Normalize() Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}

func (c Currency) Valid() bool {
	_, ok := supportedCurrencies[c.Normalize()]
	return ok
}

// Query string keys the integrator sets on the sdk script tag.
const (
	QueryKeyIntent     = "intent"
	QueryKeyCurrency   = "currency"
	QueryKeyMerchantID = "merchant-id"
)
