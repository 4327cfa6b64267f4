// Package auth реализует регистрацию, вход и серверные сессии пользователей.
//
// Сессия хранится строкой в БД и кешируется в redis, клиент получает
// подписанный JWT с идентификатором сессии. Срок жизни сессии скользящий:
// каждое обращение продлевает его на SessionTTL.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/contrarian-report/internal/cache"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/jwt"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/password"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

// extendThreshold минимальный интервал между продлениями сессии в БД.
const extendThreshold = time.Minute

// Repository описывает операции хранилища с пользователями и сессиями.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
	SetRole(ctx context.Context, username string, role models.Role) error
	CreateSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ExtendSession(ctx context.Context, id string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userUID string) ([]string, error)
	ListUserSessionIDs(ctx context.Context, userUID string) ([]string, error)
}

// Cache описывает кеш сессий.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service управляет учетными записями и сессиями.
type Service struct {
	repo  Repository
	cache Cache
	maker jwt.Maker
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// NewAuthService создает новый экземпляр Service.
func NewAuthService(log *slog.Logger, repo Repository, cache Cache, maker jwt.Maker, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		maker: maker,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// Register создает читателя или автора и возвращает его uid.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "auth.Register"

	role := req.Role
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleWriter {
		return "", fmt.Errorf("%s: role %q: %w", op, role, services.ErrForbidden)
	}
	if err := password.Validate(req.Password, req.Username, req.Email); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, services.ErrWeakPassword, err)
	}
	return s.createUser(ctx, op, models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	}, req.Password)
}

// CreateAccount заводит учетную запись с любой ролью, используется из командной строки.
// Если пароль пуст, он генерируется и возвращается вторым значением.
func (s *Service) CreateAccount(ctx context.Context, username, email string, role models.Role, pass string) (string, string, error) {
	const op = "auth.CreateAccount"

	if !role.Valid() {
		return "", "", fmt.Errorf("%s: unknown role %q", op, role)
	}
	if pass == "" {
		generated, err := password.Generate()
		if err != nil {
			return "", "", fmt.Errorf("%s: %w", op, err)
		}
		pass = generated
	} else if err := password.Validate(pass, username, email); err != nil {
		return "", "", fmt.Errorf("%s: %w: %w", op, services.ErrWeakPassword, err)
	}

	uid, err := s.createUser(ctx, op, models.User{Username: username, Email: email, Role: role}, pass)
	if err != nil {
		return "", "", err
	}
	return uid, pass, nil
}

func (s *Service) createUser(ctx context.Context, op string, user models.User, pass string) (string, error) {
	hash, err := password.GetHash(pass)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = hash
	uid, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль, создает сессию и выдает токен.
func (s *Service) Login(ctx context.Context, login, pass string) (*models.LoginResult, error) {
	const op = "auth.Login"

	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, services.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return nil, fmt.Errorf("%s: %w", op, services.ErrInvalidCredentials)
	}

	now := s.now()
	session := models.Session{
		ID:        uuid.NewString(),
		UserUID:   user.UID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.maker.GenerateToken(session.ID, user.UID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cacheSession(ctx, &session, now)

	return &models.LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}

// Authenticate возвращает живую сессию по токену и продлевает ее.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	const op = "auth.Authenticate"

	claims, err := s.maker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, services.ErrUnauthorized, err)
	}
	session, err := s.loadSession(ctx, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if session.UserUID != claims.UserUID {
		return nil, fmt.Errorf("%s: %w", op, services.ErrUnauthorized)
	}

	now := s.now()
	if session.Expired(now) {
		s.dropSession(ctx, session.ID)
		return nil, fmt.Errorf("%s: %w", op, services.ErrUnauthorized)
	}
	if session.ExpiresAt.Sub(now) < s.ttl-extendThreshold {
		expiresAt := now.Add(s.ttl)
		if err := s.repo.ExtendSession(ctx, session.ID, expiresAt); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.dropSession(ctx, session.ID)
				return nil, fmt.Errorf("%s: %w", op, services.ErrUnauthorized)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		session.ExpiresAt = expiresAt
		s.cacheSession(ctx, session, now)
	}
	return session, nil
}

func (s *Service) loadSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	found, err := s.cache.Get(ctx, cache.SessionKey(id), &session)
	if err != nil {
		s.log.Warn("session cache read failed", sl.Err(err))
	}
	if found {
		return &session, nil
	}

	stored, err := s.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, services.ErrUnauthorized
		}
		return nil, err
	}
	s.cacheSession(ctx, stored, s.now())
	return stored, nil
}

func (s *Service) cacheSession(ctx context.Context, session *models.Session, now time.Time) {
	ttl := session.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, cache.SessionKey(session.ID), session, ttl); err != nil {
		s.log.Warn("session cache write failed", sl.Err(err))
	}
}

func (s *Service) dropSession(ctx context.Context, id string) {
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		s.log.Warn("failed to delete session", slog.String("session_id", id), sl.Err(err))
	}
	if err := s.cache.Invalidate(ctx, cache.SessionKey(id)); err != nil {
		s.log.Warn("session cache invalidate failed", sl.Err(err))
	}
}

// Logout завершает сессию, на которую указывает токен. Недействительный
// токен не считается ошибкой: завершать нечего.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"

	claims, err := s.maker.ParseToken(token)
	if err != nil {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, cache.SessionKey(claims.SessionID())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangePassword меняет пароль и завершает все сессии пользователя.
func (s *Service) ChangePassword(ctx context.Context, userUID string, req models.ChangePasswordRequest) error {
	const op = "auth.ChangePassword"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.OldPassword); err != nil {
		return fmt.Errorf("%s: %w", op, services.ErrInvalidCredentials)
	}
	if err := password.Validate(req.NewPassword, user.Username, user.Email); err != nil {
		return fmt.Errorf("%s: %w: %w", op, services.ErrWeakPassword, err)
	}
	hash, err := password.GetHash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdatePassword(ctx, userUID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.RevokeAll(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetRole меняет роль пользователя. Сессии пользователя завершаются,
// чтобы новая роль применилась при следующем входе.
func (s *Service) SetRole(ctx context.Context, username string, role models.Role) error {
	const op = "auth.SetRole"

	if !role.Valid() {
		return fmt.Errorf("%s: unknown role %q", op, role)
	}
	user, err := s.repo.GetUserByLogin(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetRole(ctx, user.Username, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.RevokeAll(ctx, user.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RevokeAll удаляет все сессии пользователя из БД и кеша.
func (s *Service) RevokeAll(ctx context.Context, userUID string) error {
	const op = "auth.RevokeAll"

	ids, err := s.repo.DeleteUserSessions(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.invalidateSessions(ctx, ids); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RefreshSessions сбрасывает закешированные сессии пользователя, не завершая их.
// Следующий запрос перечитает сессию из БД вместе с актуальным username.
func (s *Service) RefreshSessions(ctx context.Context, userUID string) error {
	const op = "auth.RefreshSessions"

	ids, err := s.repo.ListUserSessionIDs(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.invalidateSessions(ctx, ids); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) invalidateSessions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.SessionKey(id))
	}
	return s.cache.Invalidate(ctx, keys...)
}
