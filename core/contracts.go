package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Order is the order payload submitted for creation. A caller supplied draft and
// the normalized result share this shape. Extra carries top level members
// without a field here, such as payment_source; they are merged into the JSON
// form and never override a named field.
type Order struct {
	Intent             string         `json:"intent,omitempty"`
	PurchaseUnits      []PurchaseUnit `json:"purchase_units"`
	ApplicationContext map[string]any `json:"application_context"`
	Payer              map[string]any `json:"payer,omitempty"`
	Extra              map[string]any `json:"-"`
}

type PurchaseUnit struct {
	ReferenceID    string           `json:"reference_id,omitempty"`
	Description    string           `json:"description,omitempty"`
	CustomID       string           `json:"custom_id,omitempty"`
	InvoiceID      string           `json:"invoice_id,omitempty"`
	SoftDescriptor string           `json:"soft_descriptor,omitempty"`
	Amount         Amount           `json:"amount"`
	Payee          *Payee           `json:"payee,omitempty"`
	Items          []map[string]any `json:"items,omitempty"`
	Shipping       map[string]any   `json:"shipping,omitempty"`
	Extra          map[string]any   `json:"-"`
}

type Amount struct {
	CurrencyCode string         `json:"currency_code,omitempty"`
	Value        string         `json:"value"`
	Breakdown    map[string]any `json:"breakdown,omitempty"`
}

type Payee struct {
	MerchantID   string `json:"merchant_id,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
}

// MerchantConfig pins order drafts to the configuration of one button instance.
// A nil MerchantID means no merchant id was configured; the first entry is the
// authoritative payee.
type MerchantConfig struct {
	ClientID             string
	Intent               Intent
	Currency             Currency
	MerchantID           []string
	PartnerAttributionID string
}

func (m MerchantConfig) clone() MerchantConfig {
	out := m
	if m.MerchantID != nil {
		out.MerchantID = append([]string{}, m.MerchantID...)
	}
	return out
}

type CreateOrderIDOptions struct {
	FacilitatorAccessToken string
	PartnerAttributionID   string
}

type AccessTokenCreator interface {
	CreateAccessToken(ctx context.Context, clientID string) (string, error)
}

type OrderIDCreator interface {
	CreateOrderID(ctx context.Context, order Order, opts CreateOrderIDOptions) (string, error)
}

type BillingTokenTranslator interface {
	BillingTokenToOrderID(ctx context.Context, billingToken string) (string, error)
}

type SubscriptionTranslator interface {
	SubscriptionIDToCartID(ctx context.Context, subscriptionID string) (string, error)
}

type AccessTokenCreatorFunc func(ctx context.Context, clientID string) (string, error)

func (f AccessTokenCreatorFunc) CreateAccessToken(ctx context.Context, clientID string) (string, error) {
	return f(ctx, clientID)
}

type OrderIDCreatorFunc func(ctx context.Context, order Order, opts CreateOrderIDOptions) (string, error)

func (f OrderIDCreatorFunc) CreateOrderID(ctx context.Context, order Order, opts CreateOrderIDOptions) (string, error) {
	return f(ctx, order, opts)
}

type BillingTokenTranslatorFunc func(ctx context.Context, billingToken string) (string, error)

func (f BillingTokenTranslatorFunc) BillingTokenToOrderID(ctx context.Context, billingToken string) (string, error) {
	return f(ctx, billingToken)
}

type SubscriptionTranslatorFunc func(ctx context.Context, subscriptionID string) (string, error)

func (f SubscriptionTranslatorFunc) SubscriptionIDToCartID(ctx context.Context, subscriptionID string) (string, error) {
	return f(ctx, subscriptionID)
}

// CreateOrderData is handed to an integrator supplied CreateOrderFunc. It carries
// no fields today.
type CreateOrderData struct{}

type OrderCreator interface {
	Create(ctx context.Context, draft Order) (string, error)
}

type CreateOrderActions struct {
	Order OrderCreator
}

type CreateOrderFunc func(ctx context.Context, data CreateOrderData, actions CreateOrderActions) (string, error)

type CreateBillingAgreementFunc func(ctx context.Context) (string, error)

type CreateSubscriptionFunc func(ctx context.Context) (string, error)

type TelemetryFlusher interface {
	Flush(ctx context.Context) error
}

type TelemetrySink interface {
	Track(ctx context.Context, event TelemetryEvent) TelemetryFlusher
}

type TelemetryEventFilter struct {
	ButtonSessionID string
	ContextID       string
	From            *time.Time
	To              *time.Time
	Page            int
	PerPage         int
}

type TelemetryEventPage struct {
	Items      []TelemetryEvent
	Page       int
	PerPage    int
	Total      int
	HasNext    bool
	NextCursor string
}

// TelemetryEventStore persists delivered events. Writing an event id twice is
// a no-op.
type TelemetryEventStore interface {
	Write(ctx context.Context, events []TelemetryEvent) error
	List(ctx context.Context, filter TelemetryEventFilter) (TelemetryEventPage, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}
