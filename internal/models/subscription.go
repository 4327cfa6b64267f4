package models

import "time"

// Subscription связывает пользователя с тарифом и подпиской у платежного провайдера.
type Subscription struct {
	ID                     int64      `json:"id"`
	UserUID                string     `json:"user_uid"`
	PlanChoiceID           int64      `json:"plan_choice_id"`
	PlanCode               string     `json:"plan_code"`
	PlanName               string     `json:"plan_name"`
	Tier                   Tier       `json:"tier"`
	Cost                   int64      `json:"cost"`
	ExternalSubscriptionID string     `json:"external_subscription_id"`
	IsActive               bool       `json:"is_active"`
	DateAdded              time.Time  `json:"date_added"`
	LastPaymentDate        *time.Time `json:"last_payment_date,omitempty"`
	NextPaymentDate        *time.Time `json:"next_payment_date,omitempty"`
}

// IsPremium сообщает, относится ли подписка к премиальному уровню.
func (s *Subscription) IsPremium() bool {
	return s.Tier == TierPremium
}

// SubscriptionStatus состояние подписки пользователя.
type SubscriptionStatus string

const (
	SubscriptionStatusNone     SubscriptionStatus = "none"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)

// SubscriptionSummary сводка для личного кабинета.
type SubscriptionSummary struct {
	HasSubscription  bool          `json:"has_subscription"`
	SubscriptionPlan string        `json:"subscription_plan"`
	SubscriptionName string        `json:"subscription_name"`
	Subscription     *Subscription `json:"subscription,omitempty"`
}

// RenewalInfo данные для напоминания о ближайшем списании.
type RenewalInfo struct {
	Email           string
	Username        string
	PlanName        string
	Cost            int64
	NextPaymentDate time.Time
}

// CreateSubscriptionRequest данные оформления подписки после подтверждения у платежного провайдера.
type CreateSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required,max=64"`
	PlanCode       string `json:"plan_code" validate:"required,max=10"`
}
