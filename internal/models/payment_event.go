package models

import "time"

// PaymentEvent событие webhook платежного провайдера, сохраняется один раз по EventID.
type PaymentEvent struct {
	EventID                string
	EventType              string
	ExternalSubscriptionID string
	Amount                 string
	Currency               string
	ReceivedAt             time.Time
}
