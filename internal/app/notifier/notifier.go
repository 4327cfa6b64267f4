// Package notifier собирает процесс, который отправляет письма из очередей уведомлений.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/smtp"
	"github.com/magabrotheeeer/contrarian-report/internal/rabbitmq"
	notifierservice "github.com/magabrotheeeer/contrarian-report/internal/services/notifier"
)

// App представляет приложение рассылки.
type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	notifier *notifierservice.Service
	logger   *slog.Logger
}

// New подключается к брокеру и готовит транспорт писем.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.notifier.New"

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Error("failed to close connection", sl.Err(cerr))
		}
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		logger.Warn("failed to set prefetch", sl.Err(err))
	}

	return &App{
		conn:     conn,
		ch:       ch,
		notifier: notifierservice.New(logger, smtp.NewTransport(cfg.SMTP, logger)),
		logger:   logger,
	}, nil
}

// Run слушает все очереди уведомлений до отмены ctx и дожидается
// завершения начатых отправок.
func (a *App) Run(ctx context.Context) error {
	const op = "app.notifier.Run"

	var consumers []<-chan struct{}
	for _, q := range rabbitmq.NotificationQueues() {
		done, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, q.QueueName, a.notifier.Deliver)
		if err != nil {
			a.close()
			return fmt.Errorf("%s: %w", op, err)
		}
		a.logger.Info("consuming queue", slog.String("queue", q.QueueName))
		consumers = append(consumers, done)
	}

	<-ctx.Done()
	a.logger.Info("shutting down notifier service")
	for _, done := range consumers {
		<-done
	}
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
