package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PaymentEventTx изменения подписки, выполняемые в транзакции события webhook.
type PaymentEventTx interface {
	SetSubscriptionActive(ctx context.Context, externalID string, active bool) error
	RecordPayment(ctx context.Context, externalID string, paidAt, next time.Time) error
}

type paymentEventTx struct {
	tx *sql.Tx
}

func (p paymentEventTx) SetSubscriptionActive(ctx context.Context, externalID string, active bool) error {
	return setSubscriptionActive(ctx, p.tx, "storage.PaymentEventTx.SetSubscriptionActive", externalID, active)
}

func (p paymentEventTx) RecordPayment(ctx context.Context, externalID string, paidAt, next time.Time) error {
	return recordPayment(ctx, p.tx, "storage.PaymentEventTx.RecordPayment", externalID, paidAt, next)
}

// ApplyPaymentEvent сохраняет событие webhook и в той же транзакции выполняет apply.
// Если событие с таким EventID уже сохранено, apply не вызывается и возвращается false.
// Ошибка apply откатывает транзакцию, событие при этом не сохраняется.
func (s *Storage) ApplyPaymentEvent(ctx context.Context, e models.PaymentEvent,
	apply func(ctx context.Context, tx PaymentEventTx) error) (bool, error) {
	const op = "storage.ApplyPaymentEvent"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	// После Commit вызов Rollback возвращает sql.ErrTxDone.
	defer func() { _ = tx.Rollback() }()

	inserted, err := insertPaymentEvent(ctx, tx, e)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !inserted {
		return false, nil
	}
	if err := apply(ctx, paymentEventTx{tx: tx}); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func insertPaymentEvent(ctx context.Context, db execer, e models.PaymentEvent) (bool, error) {
	const op = "storage.insertPaymentEvent"
	res, err := db.ExecContext(ctx, `INSERT INTO payment_events
		(event_id, event_type, external_subscription_id, amount, currency, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, e.EventType, e.ExternalSubscriptionID, e.Amount, e.Currency, e.ReceivedAt)
	if err != nil {
		return false, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}
