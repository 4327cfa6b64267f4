// Package notifier превращает уведомления из очереди в письма подписчикам.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/smtp"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// ErrUnknownKind возвращается для уведомлений неизвестного типа. Такие сообщения
// не переотправляются в очередь.
var ErrUnknownKind = errors.New("unknown notification kind")

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(log *slog.Logger, transport smtp.TransportInterface) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// Deliver разбирает тело сообщения из очереди и отправляет соответствующее письмо.
func (s *Service) Deliver(ctx context.Context, body []byte) error {
	const op = "notifier.Deliver"

	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		s.log.Error("failed to unmarshal notification", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if n.Email == "" {
		return fmt.Errorf("%s: empty recipient", op)
	}

	subject, text, err := compose(n)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.sendEmail(ctx, []string{n.Email}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func compose(n models.Notification) (string, string, error) {
	switch n.Kind {
	case models.NotificationSubscriptionActivated:
		return "Welcome to The Contrarian Report",
			fmt.Sprintf("Hello, %s!\n\nYour %s subscription ($%s/month) is now active.\nEnjoy the reading.",
				n.Username, n.PlanName, models.FormatCost(n.Cost)), nil
	case models.NotificationSubscriptionCanceled:
		return "Your subscription has been canceled",
			fmt.Sprintf("Hello, %s!\n\nYour %s subscription has been canceled. You will not be charged again.",
				n.Username, n.PlanName), nil
	case models.NotificationRenewalUpcoming:
		return "Upcoming subscription renewal",
			fmt.Sprintf("Hello, %s!\n\nYour %s subscription renews on %s for $%s.",
				n.Username, n.PlanName, n.Date.Format("January 2, 2006"), models.FormatCost(n.Cost)), nil
	case models.NotificationSubscriptionLapsed:
		return "Your subscription is inactive",
			fmt.Sprintf("Hello, %s!\n\nWe did not receive the payment for your %s subscription, so premium access is paused.\nRenew it from your dashboard to continue reading.",
				n.Username, n.PlanName), nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}
}

func (s *Service) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
