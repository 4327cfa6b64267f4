package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

const subscriptionSelect = `SELECT s.id, s.user_uid, s.plan_choice_id, p.code, p.name, p.tier, s.cost,
		s.external_subscription_id, s.is_active, s.date_added, s.last_payment_date, s.next_payment_date
	FROM subscriptions s
	JOIN plan_choices p ON p.id = s.plan_choice_id`

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var last, next sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.PlanChoiceID, &sub.PlanCode, &sub.PlanName, &sub.Tier,
		&sub.Cost, &sub.ExternalSubscriptionID, &sub.IsActive, &sub.DateAdded, &last, &next); err != nil {
		return nil, err
	}
	sub.LastPaymentDate = nullTime(last)
	sub.NextPaymentDate = nullTime(next)
	return sub, nil
}

// CreateSubscription сохраняет подписку. У пользователя может быть только одна подписка,
// повторная вставка возвращает ErrAlreadyExists.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, plan_choice_id, cost, external_subscription_id,
			      is_active, last_payment_date, next_payment_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query, sub.UserUID, sub.PlanChoiceID, sub.Cost,
		sub.ExternalSubscriptionID, sub.IsActive, sub.LastPaymentDate, sub.NextPaymentDate).Scan(&id); err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// GetSubscription возвращает подписку по ID.
func (s *Storage) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, subscriptionSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return sub, nil
}

// GetSubscriptionByUser возвращает подписку пользователя независимо от ее активности.
func (s *Storage) GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, subscriptionSelect+` WHERE s.user_uid = $1`, userUID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return sub, nil
}

// GetSubscriptionByExternalID возвращает подписку по идентификатору у платежного провайдера.
func (s *Storage) GetSubscriptionByExternalID(ctx context.Context, externalID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByExternalID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		subscriptionSelect+` WHERE s.external_subscription_id = $1`, externalID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return sub, nil
}

// DeleteSubscription удаляет подписку по ID.
func (s *Storage) DeleteSubscription(ctx context.Context, id int64) error {
	const op = "storage.DeleteSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// SetSubscriptionActive меняет флаг активности подписки по внешнему ID.
func (s *Storage) SetSubscriptionActive(ctx context.Context, externalID string, active bool) error {
	const op = "storage.SetSubscriptionActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return setSubscriptionActive(ctx, s.DB, op, externalID, active)
}

// RecordPayment фиксирует успешное списание: даты платежей сдвигаются, подписка активируется.
func (s *Storage) RecordPayment(ctx context.Context, externalID string, paidAt, next time.Time) error {
	const op = "storage.RecordPayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return recordPayment(ctx, s.DB, op, externalID, paidAt, next)
}

func setSubscriptionActive(ctx context.Context, db execer, op, externalID string, active bool) error {
	res, err := db.ExecContext(ctx, `UPDATE subscriptions SET is_active = $1
		WHERE external_subscription_id = $2`, active, externalID)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

func recordPayment(ctx context.Context, db execer, op, externalID string, paidAt, next time.Time) error {
	res, err := db.ExecContext(ctx, `UPDATE subscriptions
		SET last_payment_date = $1, next_payment_date = $2, is_active = TRUE
		WHERE external_subscription_id = $3`, paidAt, next, externalID)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// ListDueForRenewal возвращает активные подписки со списанием в интервале [from, to).
func (s *Storage) ListDueForRenewal(ctx context.Context, from, to time.Time) ([]*models.RenewalInfo, error) {
	const op = "storage.ListDueForRenewal"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT u.email, u.username, p.name, s.cost, s.next_payment_date
		FROM subscriptions s
		JOIN users u ON u.uid = s.user_uid
		JOIN plan_choices p ON p.id = s.plan_choice_id
		WHERE s.is_active AND s.next_payment_date >= $1 AND s.next_payment_date < $2
		ORDER BY s.next_payment_date`, from, to)
	if err != nil {
		return nil, wrap(op, err)
	}
	return scanRenewals(op, rows)
}

// DeactivateLapsed выключает активные подписки, списание по которым не пришло до before,
// и возвращает их для уведомления владельцев.
func (s *Storage) DeactivateLapsed(ctx context.Context, before time.Time) ([]*models.RenewalInfo, error) {
	const op = "storage.DeactivateLapsed"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `UPDATE subscriptions s SET is_active = FALSE
		FROM users u, plan_choices p
		WHERE u.uid = s.user_uid AND p.id = s.plan_choice_id
		  AND s.is_active AND s.next_payment_date < $1
		RETURNING u.email, u.username, p.name, s.cost, s.next_payment_date`, before)
	if err != nil {
		return nil, wrap(op, err)
	}
	return scanRenewals(op, rows)
}

func scanRenewals(op string, rows *sql.Rows) ([]*models.RenewalInfo, error) {
	defer rows.Close()

	var result []*models.RenewalInfo
	for rows.Next() {
		var r models.RenewalInfo
		if err := rows.Scan(&r.Email, &r.Username, &r.PlanName, &r.Cost, &r.NextPaymentDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
