// Package subscription содержит бизнес-логику тарифов и подписок читателей:
// оформление и отмену у платежного провайдера, сводку для личного кабинета
// и обработку webhook провайдера.
package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/contrarian-report/internal/cache"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/month"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/paymentprovider"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

const (
	plansCacheTTL  = 10 * time.Minute
	noSubscription = "No subscription yet"
	cancelReason   = "Canceled by the subscriber"
)

// Repository определяет методы хранилища, нужные сервису подписок.
type Repository interface {
	ListActivePlans(ctx context.Context) ([]*models.PlanChoice, error)
	GetPlanByCode(ctx context.Context, code string) (*models.PlanChoice, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error)
	GetSubscriptionByExternalID(ctx context.Context, externalID string) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	DeleteSubscription(ctx context.Context, id int64) error
	ApplyPaymentEvent(ctx context.Context, e models.PaymentEvent,
		apply func(ctx context.Context, tx storage.PaymentEventTx) error) (bool, error)
}

// Provider описывает платежного провайдера.
type Provider interface {
	GetSubscription(ctx context.Context, id string) (*paymentprovider.Subscription, error)
	CancelSubscription(ctx context.Context, id, reason string) error
	VerifyWebhookSignature(ctx context.Context, headers paymentprovider.WebhookHeaders, body []byte) error
}

// Cache описывает кеш списка тарифов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Publisher публикует уведомления для отправки писем.
type Publisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// Service реализует работу с подписками.
type Service struct {
	repo      Repository
	provider  Provider
	cache     Cache
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewSubscriptionService создает новый экземпляр Service.
func NewSubscriptionService(log *slog.Logger, repo Repository, provider Provider, cache Cache, publisher Publisher) *Service {
	return &Service{
		repo:      repo,
		provider:  provider,
		cache:     cache,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Plans возвращает активные тарифы, список кешируется на 10 минут.
func (s *Service) Plans(ctx context.Context) ([]*models.PlanChoice, error) {
	const op = "subscription.Plans"

	var plans []*models.PlanChoice
	found, err := s.cache.Get(ctx, cache.PlansKey, &plans)
	if err != nil {
		s.log.Warn("plans cache read failed", sl.Err(err))
	}
	if found {
		return plans, nil
	}

	plans, err = s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, cache.PlansKey, plans, plansCacheTTL); err != nil {
		s.log.Warn("failed to cache plans", slog.String("key", cache.PlansKey), sl.Err(err))
	}
	return plans, nil
}

// Summary собирает сводку подписки для личного кабинета.
func (s *Service) Summary(ctx context.Context, userUID string) (*models.SubscriptionSummary, error) {
	const op = "subscription.Summary"

	sub, err := s.userSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	summary := &models.SubscriptionSummary{
		SubscriptionPlan: noSubscription,
		SubscriptionName: noSubscription,
	}
	if sub == nil {
		return summary, nil
	}

	summary.Subscription = sub
	summary.SubscriptionPlan = string(sub.Tier)
	if !sub.IsActive {
		summary.SubscriptionPlan += " (inactive)"
		return summary, nil
	}
	summary.HasSubscription = true
	summary.SubscriptionName = sub.PlanName
	return summary, nil
}

// SubscribePage возвращает тарифы для оформления подписки или
// ErrAlreadySubscribed, если подписка у пользователя уже есть.
func (s *Service) SubscribePage(ctx context.Context, userUID string) ([]*models.PlanChoice, error) {
	const op = "subscription.SubscribePage"

	sub, err := s.userSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub != nil {
		return nil, fmt.Errorf("%s: %w", op, services.ErrAlreadySubscribed)
	}
	plans, err := s.Plans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// Create оформляет подписку по идентификатору подписки у провайдера и коду тарифа.
func (s *Service) Create(ctx context.Context, userUID string, req models.CreateSubscriptionRequest) (*models.Subscription, error) {
	const op = "subscription.Create"

	existing, err := s.userSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", op, services.ErrAlreadySubscribed)
	}

	plan, err := s.repo.GetPlanByCode(ctx, req.PlanCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, services.ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("%s: %w", op, services.ErrPlanNotFound)
	}

	remote, err := s.provider.GetSubscription(ctx, req.SubscriptionID)
	switch {
	case errors.Is(err, paymentprovider.ErrDisabled):
		s.log.Debug("payment provider disabled, skipping subscription lookup")
	case errors.Is(err, paymentprovider.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, services.ErrPlanMismatch)
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	case remote.PlanID != plan.ExternalPlanID:
		return nil, fmt.Errorf("%s: plan %q, got %q: %w", op, plan.ExternalPlanID, remote.PlanID, services.ErrPlanMismatch)
	}

	now := s.now().UTC()
	next := month.AddMonths(now, 1)
	sub := models.Subscription{
		UserUID:                userUID,
		PlanChoiceID:           plan.ID,
		PlanCode:               plan.Code,
		PlanName:               plan.Name,
		Tier:                   plan.Tier,
		Cost:                   plan.Cost,
		ExternalSubscriptionID: req.SubscriptionID,
		IsActive:               true,
		DateAdded:              now,
		NextPaymentDate:        &next,
	}
	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, services.ErrAlreadySubscribed)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.ID = id
	s.log.Info("created new subscription", slog.Int64("id", id), slog.String("plan", plan.Code))

	s.notify(ctx, userUID, models.Notification{
		Kind:     models.NotificationSubscriptionActivated,
		PlanName: plan.Name,
		Cost:     plan.Cost,
		Date:     next,
	})
	return &sub, nil
}

// Cancel отменяет подписку у провайдера и удаляет ее. Чужая или
// несуществующая подписка дает storage.ErrNotFound.
func (s *Service) Cancel(ctx context.Context, userUID string, subscriptionID int64) error {
	const op = "subscription.Cancel"

	sub, err := s.userSubscription(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if sub == nil || sub.ID != subscriptionID {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if err := s.provider.CancelSubscription(ctx, sub.ExternalSubscriptionID, cancelReason); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteSubscription(ctx, sub.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription canceled", slog.Int64("id", sub.ID))

	s.notify(ctx, userUID, models.Notification{
		Kind:     models.NotificationSubscriptionCanceled,
		PlanName: sub.PlanName,
		Cost:     sub.Cost,
		Date:     s.now().UTC(),
	})
	return nil
}

// Status возвращает состояние подписки для проверки доступа.
func (s *Service) Status(ctx context.Context, userUID string) (models.SubscriptionStatus, error) {
	const op = "subscription.Status"

	sub, err := s.userSubscription(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case sub == nil:
		return models.SubscriptionStatusNone, nil
	case sub.IsActive:
		return models.SubscriptionStatusActive, nil
	default:
		return models.SubscriptionStatusInactive, nil
	}
}

// HandleWebhook проверяет подпись события провайдера и применяет его.
// Событие сохраняется в одной транзакции с изменением подписки, поэтому
// повторная доставка события с тем же id ничего не меняет и не шлет уведомлений.
func (s *Service) HandleWebhook(ctx context.Context, headers paymentprovider.WebhookHeaders, body []byte) error {
	const op = "subscription.HandleWebhook"

	if err := s.provider.VerifyWebhookSignature(ctx, headers, body); err != nil {
		return fmt.Errorf("%s: %w: %w", op, services.ErrInvalidWebhook, err)
	}

	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w: %w", op, services.ErrInvalidWebhook, err)
	}
	if event.ID == "" {
		return fmt.Errorf("%s: empty event id: %w", op, services.ErrInvalidWebhook)
	}

	record := models.PaymentEvent{
		EventID:    event.ID,
		EventType:  event.EventType,
		ReceivedAt: s.now().UTC(),
	}
	var (
		notification *models.Notification
		apply        = func(context.Context, storage.PaymentEventTx) error { return nil }
	)

	switch event.EventType {
	case paymentprovider.EventSubscriptionActivated,
		paymentprovider.EventSubscriptionCancelled,
		paymentprovider.EventSubscriptionSuspended,
		paymentprovider.EventSubscriptionExpired:
		var res paymentprovider.SubscriptionResource
		if err := json.Unmarshal(event.Resource, &res); err != nil {
			return fmt.Errorf("%s: %w: %w", op, services.ErrInvalidWebhook, err)
		}
		record.ExternalSubscriptionID = res.ID
		active := event.EventType == paymentprovider.EventSubscriptionActivated
		apply = func(ctx context.Context, tx storage.PaymentEventTx) error {
			return tx.SetSubscriptionActive(ctx, res.ID, active)
		}
		if !active {
			kind := models.NotificationSubscriptionLapsed
			if event.EventType == paymentprovider.EventSubscriptionCancelled {
				kind = models.NotificationSubscriptionCanceled
			}
			notification = &models.Notification{Kind: kind, Date: record.ReceivedAt}
		}

	case paymentprovider.EventPaymentSaleCompleted:
		var sale paymentprovider.SaleResource
		if err := json.Unmarshal(event.Resource, &sale); err != nil {
			return fmt.Errorf("%s: %w: %w", op, services.ErrInvalidWebhook, err)
		}
		record.ExternalSubscriptionID = sale.BillingAgreementID
		record.Amount = sale.Amount.Total
		record.Currency = sale.Amount.Currency
		paidAt := sale.CreateTime.UTC()
		if paidAt.IsZero() {
			paidAt = record.ReceivedAt
		}
		apply = func(ctx context.Context, tx storage.PaymentEventTx) error {
			return tx.RecordPayment(ctx, sale.BillingAgreementID, paidAt, month.AddMonths(paidAt, 1))
		}

	default:
		s.log.Debug("ignoring webhook event", slog.String("event_type", event.EventType))
	}

	inserted, err := s.repo.ApplyPaymentEvent(ctx, record, apply)
	if err != nil {
		return s.unknownSubscription(op, record.ExternalSubscriptionID, err)
	}
	if !inserted {
		s.log.Info("duplicate webhook event", slog.String("event_id", event.ID))
		return nil
	}

	if notification != nil {
		sub, err := s.repo.GetSubscriptionByExternalID(ctx, record.ExternalSubscriptionID)
		if err != nil {
			s.log.Warn("failed to load subscription for notification", sl.Err(err))
			return nil
		}
		notification.PlanName = sub.PlanName
		notification.Cost = sub.Cost
		s.notify(ctx, sub.UserUID, *notification)
	}
	return nil
}

// unknownSubscription подтверждает событие по неизвестной подписке без ошибки.
func (s *Service) unknownSubscription(op, externalID string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("webhook for unknown subscription", slog.String("external_id", externalID))
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) userSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// notify дополняет уведомление адресатом и публикует его. Ошибки только логируются.
func (s *Service) notify(ctx context.Context, userUID string, n models.Notification) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to load user for notification", slog.String("user_uid", userUID), sl.Err(err))
		return
	}
	n.Email = user.Email
	n.Username = user.Username
	if err := s.publisher.PublishNotification(ctx, n); err != nil {
		s.log.Error("failed to publish notification", slog.String("kind", string(n.Kind)), sl.Err(err))
	}
}
