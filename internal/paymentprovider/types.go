package paymentprovider

import (
	"encoding/json"
	"time"
)

// Типы событий webhook, которые обрабатывает сайт.
const (
	EventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionSuspended = "BILLING.SUBSCRIPTION.SUSPENDED"
	EventSubscriptionExpired   = "BILLING.SUBSCRIPTION.EXPIRED"
	EventPaymentSaleCompleted  = "PAYMENT.SALE.COMPLETED"
)

// Money сумма в формате PayPal.
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// Subscription подписка на стороне PayPal.
type Subscription struct {
	ID               string     `json:"id"`
	PlanID           string     `json:"plan_id"`
	Status           string     `json:"status"`
	StatusUpdateTime *time.Time `json:"status_update_time,omitempty"`
	BillingInfo      struct {
		NextBillingTime *time.Time `json:"next_billing_time,omitempty"`
		LastPayment     *struct {
			Amount Money     `json:"amount"`
			Time   time.Time `json:"time"`
		} `json:"last_payment,omitempty"`
	} `json:"billing_info"`
}

// WebhookEvent конверт события webhook.
type WebhookEvent struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	ResourceType string          `json:"resource_type"`
	CreateTime   time.Time       `json:"create_time"`
	Resource     json.RawMessage `json:"resource"`
}

// SubscriptionResource ресурс событий BILLING.SUBSCRIPTION.*.
type SubscriptionResource struct {
	ID     string `json:"id"`
	PlanID string `json:"plan_id"`
	Status string `json:"status"`
}

// SaleResource ресурс события PAYMENT.SALE.COMPLETED.
type SaleResource struct {
	ID                 string    `json:"id"`
	BillingAgreementID string    `json:"billing_agreement_id"`
	CreateTime         time.Time `json:"create_time"`
	Amount             struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"amount"`
}

// WebhookHeaders заголовки, необходимые для проверки подписи webhook.
type WebhookHeaders struct {
	AuthAlgo         string `json:"auth_algo"`
	CertURL          string `json:"cert_url"`
	TransmissionID   string `json:"transmission_id"`
	TransmissionSig  string `json:"transmission_sig"`
	TransmissionTime string `json:"transmission_time"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type verifyRequest struct {
	WebhookHeaders
	WebhookID    string          `json:"webhook_id"`
	WebhookEvent json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}
