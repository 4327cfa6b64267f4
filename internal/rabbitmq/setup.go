package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// Exchange direct exchange уведомлений.
const Exchange = "notifications"

// Ключи маршрутизации и очереди уведомлений.
const (
	RoutingSubscription = "subscription"
	RoutingRenewal      = "renewal"

	QueueSubscription = "notifications.subscription"
	QueueRenewal      = "notifications.renewal"
)

// QueueConfig связка очереди и ключа маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди, которые слушает процесс notifier.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueSubscription, RoutingKey: RoutingSubscription},
		{QueueName: QueueRenewal, RoutingKey: RoutingRenewal},
	}
}

// RoutingKeyFor выбирает ключ маршрутизации для уведомления.
func RoutingKeyFor(kind models.NotificationKind) string {
	switch kind {
	case models.NotificationRenewalUpcoming, models.NotificationSubscriptionLapsed:
		return RoutingRenewal
	default:
		return RoutingSubscription
	}
}

// SetupChannel открывает канал и объявляет exchange, очереди и их привязки.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	if err := ch.ExchangeDeclare(Exchange, "direct", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, Exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
