package core

import (
	"encoding/json"
	"fmt"
)

type orderFields Order

type purchaseUnitFields PurchaseUnit

var (
	orderMembers        = []string{"intent", "purchase_units", "application_context", "payer"}
	purchaseUnitMembers = []string{
		"reference_id", "description", "custom_id", "invoice_id",
		"soft_descriptor", "amount", "payee", "items", "shipping",
	}
)

func (o Order) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(orderFields(o), o.Extra)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var fields orderFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unknownMembers(data, orderMembers)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*o = Order(fields)
	return nil
}

func (u PurchaseUnit) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(purchaseUnitFields(u), u.Extra)
}

func (u *PurchaseUnit) UnmarshalJSON(data []byte) error {
	var fields purchaseUnitFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unknownMembers(data, purchaseUnitMembers)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*u = PurchaseUnit(fields)
	return nil
}

func marshalWithExtra(fields any, extra map[string]any) ([]byte, error) {
	encoded, err := json.Marshal(fields)
	if err != nil || len(extra) == 0 {
		return encoded, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, named := merged[key]; named {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("core: encode order member %q: %w", key, err)
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}

func unknownMembers(data []byte, known []string) (map[string]any, error) {
	var members map[string]any
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(members, key)
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}
