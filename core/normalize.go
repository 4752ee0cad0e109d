package core

import (
	"maps"
	"strings"
)

// NormalizeOrder pins draft to the merchant configuration and returns a new
// order. The draft is never modified. The first violation found is returned and
// no partial order is produced.
func NormalizeOrder(draft Order, merchant MerchantConfig) (Order, error) {
	intent := merchant.Intent.Normalize()
	if draft.Intent != "" && Intent(strings.ToLower(draft.Intent)) != intent {
		return Order{}, &NormalizationError{Kind: NormalizationIntentMismatch, Value: draft.Intent}
	}
	if draft.PurchaseUnits == nil {
		return Order{}, &NormalizationError{Kind: NormalizationPurchaseUnitsRequired}
	}

	currency := string(merchant.Currency.Normalize())
	units := make([]PurchaseUnit, 0, len(draft.PurchaseUnits))
	for index, unit := range draft.PurchaseUnits {
		normalized, err := normalizePurchaseUnit(index, unit, currency, merchant.MerchantID)
		if err != nil {
			return Order{}, err
		}
		units = append(units, normalized)
	}

	applicationContext := map[string]any{}
	if draft.ApplicationContext != nil {
		applicationContext = cloneAnyMap(draft.ApplicationContext)
	}

	return Order{
		Intent:             strings.ToUpper(string(intent)),
		PurchaseUnits:      units,
		ApplicationContext: applicationContext,
		Payer:              cloneAnyMap(draft.Payer),
		Extra:              cloneAnyMap(draft.Extra),
	}, nil
}

func normalizePurchaseUnit(index int, unit PurchaseUnit, currency string, merchantID []string) (PurchaseUnit, error) {
	if code := unit.Amount.CurrencyCode; code != "" && code != currency {
		return PurchaseUnit{}, &NormalizationError{Kind: NormalizationCurrencyMismatch, Unit: index, Value: code}
	}

	if unit.Payee != nil && len(merchantID) > 0 {
		if merchantID[0] == "" {
			return PurchaseUnit{}, &NormalizationError{Kind: NormalizationMerchantIDRequired, Unit: index}
		}
		if unit.Payee.MerchantID != "" && unit.Payee.MerchantID != merchantID[0] {
			return PurchaseUnit{}, &NormalizationError{
				Kind:     NormalizationPayeeMismatch,
				Unit:     index,
				Value:    unit.Payee.MerchantID,
				Expected: merchantID[0],
			}
		}
	}

	out := unit
	out.Amount = Amount{
		CurrencyCode: currency,
		Value:        unit.Amount.Value,
		Breakdown:    cloneAnyMap(unit.Amount.Breakdown),
	}
	out.Items = cloneMapSlice(unit.Items)
	out.Shipping = cloneAnyMap(unit.Shipping)
	out.Extra = cloneAnyMap(unit.Extra)
	if unit.Payee != nil {
		payee := *unit.Payee
		out.Payee = &payee
	}
	if merchantID != nil {
		payee := Payee{}
		if out.Payee != nil {
			payee = *out.Payee
		}
		payee.MerchantID = ""
		if len(merchantID) > 0 {
			payee.MerchantID = merchantID[0]
		}
		out.Payee = &payee
	}
	return out, nil
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneAnyValue(value)
	}
	return out
}

func cloneAnyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneAnyMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneAnyValue(item)
		}
		return out
	case []map[string]any:
		return cloneMapSlice(typed)
	case []map[string]string:
		out := make([]map[string]string, len(typed))
		for i, item := range typed {
			out[i] = maps.Clone(item)
		}
		return out
	case map[string]string:
		return maps.Clone(typed)
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

func cloneMapSlice(in []map[string]any) []map[string]any {
	if in == nil {
		return nil
	}
	out := make([]map[string]any, len(in))
	for i, item := range in {
		out[i] = cloneAnyMap(item)
	}
	return out
}
