// Package account управляет профилем пользователя и удалением учетной записи.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

const deleteReason = "Account deleted"

// Repository определяет методы хранилища для профиля.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, userUID string) error
	GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Canceler отменяет подписку у платежного провайдера.
type Canceler interface {
	CancelSubscription(ctx context.Context, id, reason string) error
}

// Sessions управляет сессиями пользователя.
type Sessions interface {
	RevokeAll(ctx context.Context, userUID string) error
	RefreshSessions(ctx context.Context, userUID string) error
}

// Service реализует операции с профилем.
type Service struct {
	repo     Repository
	canceler Canceler
	sessions Sessions
	log      *slog.Logger
}

// NewAccountService создает новый экземпляр Service.
func NewAccountService(log *slog.Logger, repo Repository, canceler Canceler, sessions Sessions) *Service {
	return &Service{
		repo:     repo,
		canceler: canceler,
		sessions: sessions,
		log:      log,
	}
}

// Profile возвращает пользователя и его подписку, если она есть.
func (s *Service) Profile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "account.Profile"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub, err := s.subscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Profile{User: user, Subscription: sub}, nil
}

// UpdateProfile сохраняет изменения профиля. Занятые username или email
// дают storage.ErrAlreadyExists.
func (s *Service) UpdateProfile(ctx context.Context, userUID string, req models.ProfileRequest) (*models.User, error) {
	const op = "account.UpdateProfile"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	renamed := user.Username != req.Username
	user.Username = req.Username
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if err := s.repo.UpdateProfile(ctx, *user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// В кеше сессий хранится username.
	if renamed {
		if err := s.sessions.RefreshSessions(ctx, userUID); err != nil {
			s.log.Warn("failed to refresh cached sessions", slog.String("user_uid", userUID), sl.Err(err))
		}
	}
	s.log.Info("profile updated", slog.String("user_uid", userUID))
	return user, nil
}

// Delete удаляет учетную запись. Подписка сначала отменяется у провайдера,
// ошибки провайдера при этом не мешают удалению.
func (s *Service) Delete(ctx context.Context, userUID string) error {
	const op = "account.Delete"

	sub, err := s.subscription(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if sub != nil {
		if err := s.canceler.CancelSubscription(ctx, sub.ExternalSubscriptionID, deleteReason); err != nil {
			s.log.Warn("failed to cancel subscription at provider",
				slog.String("external_id", sub.ExternalSubscriptionID), sl.Err(err))
		}
	}
	if err := s.sessions.RevokeAll(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteUser(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("account deleted", slog.String("user_uid", userUID))
	return nil
}

func (s *Service) subscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByUser(ctx, userUID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return sub, err
}
