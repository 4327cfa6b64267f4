// Package scheduler выполняет периодические задачи: чистку истекших сессий,
// напоминания о ближайшем списании и отключение неоплаченных подписок.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

const reminderLead = 24 * time.Hour

// Repository определяет методы хранилища для периодических задач.
type Repository interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	ListDueForRenewal(ctx context.Context, from, to time.Time) ([]*models.RenewalInfo, error)
	DeactivateLapsed(ctx context.Context, before time.Time) ([]*models.RenewalInfo, error)
}

// Publisher публикует уведомления.
type Publisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// Service запускает периодические задачи.
type Service struct {
	repo      Repository
	publisher Publisher
	cfg       config.Scheduler
	log       *slog.Logger
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр Service.
func NewSchedulerService(log *slog.Logger, repo Repository, publisher Publisher, cfg config.Scheduler) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// CleanupSessions удаляет истекшие сессии.
func (s *Service) CleanupSessions(ctx context.Context) (int64, error) {
	const op = "scheduler.CleanupSessions"

	n, err := s.repo.DeleteExpiredSessions(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// SendRenewalReminders напоминает о списаниях, которые наступят через сутки.
// Окно запроса равно интервалу проверки, поэтому при регулярном запуске
// каждая подписка получает одно напоминание.
func (s *Service) SendRenewalReminders(ctx context.Context) (int, error) {
	const op = "scheduler.SendRenewalReminders"

	from := s.now().UTC().Add(reminderLead)
	due, err := s.repo.ListDueForRenewal(ctx, from, from.Add(s.cfg.RenewalCheckInterval))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return s.publish(ctx, models.NotificationRenewalUpcoming, due), nil
}

// DeactivateLapsed отключает подписки, оплата по которым не пришла за GracePeriod.
func (s *Service) DeactivateLapsed(ctx context.Context) (int, error) {
	const op = "scheduler.DeactivateLapsed"

	lapsed, err := s.repo.DeactivateLapsed(ctx, s.now().UTC().Add(-s.cfg.GracePeriod))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return s.publish(ctx, models.NotificationSubscriptionLapsed, lapsed), nil
}

func (s *Service) publish(ctx context.Context, kind models.NotificationKind, entries []*models.RenewalInfo) int {
	sent := 0
	for _, e := range entries {
		err := s.publisher.PublishNotification(ctx, models.Notification{
			Kind:     kind,
			Email:    e.Email,
			Username: e.Username,
			PlanName: e.PlanName,
			Cost:     e.Cost,
			Date:     e.NextPaymentDate,
		})
		if err != nil {
			s.log.Error("failed to publish message", slog.String("kind", string(kind)), sl.Err(err))
			continue
		}
		sent++
	}
	return sent
}

// Run запускает все задачи сразу и затем по своим интервалам. Возвращается
// после отмены ctx, когда все задачи завершились.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	jobs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context) (int64, error)
	}{
		{"session cleanup", s.cfg.SessionCleanupInterval, s.CleanupSessions},
		{"renewal reminders", s.cfg.RenewalCheckInterval, counted(s.SendRenewalReminders)},
		{"lapsed subscriptions", s.cfg.RenewalCheckInterval, counted(s.DeactivateLapsed)},
	}
	for _, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, job.name, job.interval, job.run)
		}()
	}
	wg.Wait()
}

func (s *Service) loop(ctx context.Context, name string, interval time.Duration, run func(context.Context) (int64, error)) {
	log := s.log.With(slog.String("job", name))
	if interval <= 0 {
		log.Warn("job disabled, interval is not positive")
		return
	}

	tick := func() {
		log.Info("starting job")
		n, err := run(ctx)
		if err != nil {
			log.Error("job failed", sl.Err(err))
			return
		}
		log.Info("job finished", slog.Int64("processed", n))
	}

	tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("job stopped")
			return
		case <-ticker.C:
			tick()
		}
	}
}

func counted(f func(context.Context) (int, error)) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		n, err := f(ctx)
		return int64(n), err
	}
}
