package models

import "time"

// NotificationKind тип уведомления в очереди.
type NotificationKind string

const (
	NotificationSubscriptionActivated NotificationKind = "subscription.activated"
	NotificationSubscriptionCanceled  NotificationKind = "subscription.canceled"
	NotificationRenewalUpcoming       NotificationKind = "renewal.upcoming"
	NotificationSubscriptionLapsed    NotificationKind = "subscription.lapsed"
)

// Notification сообщение, публикуемое в RabbitMQ и отправляемое письмом.
type Notification struct {
	Kind     NotificationKind `json:"kind"`
	Email    string           `json:"email"`
	Username string           `json:"username"`
	PlanName string           `json:"plan_name"`
	Cost     int64            `json:"cost"`
	Date     time.Time        `json:"date"`
}
