package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

const userColumns = `uid, username, email, first_name, last_name, password_hash, role, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if user.UID == "" {
		user.UID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	query := `INSERT INTO users (uid, username, email, first_name, last_name, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid`
	var uid string
	if err := s.DB.QueryRowContext(ctx, query, user.UID, user.Username, user.Email,
		user.FirstName, user.LastName, user.PasswordHash, user.Role).Scan(&uid); err != nil {
		return "", wrap(op, err)
	}
	return uid, nil
}

// GetUser возвращает пользователя по UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, userUID)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUserByLogin возвращает пользователя по username или email без учета регистра email.
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	const op = "storage.GetUserByLogin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users
		WHERE username = $1 OR lower(email) = lower($1)
		ORDER BY username = $1 DESC
		LIMIT 1`, login)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// UpdateProfile обновляет username, email и имя пользователя.
func (s *Storage) UpdateProfile(ctx context.Context, user models.User) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users
		SET username = $1, email = $2, first_name = $3, last_name = $4
		WHERE uid = $5`,
		user.Username, user.Email, user.FirstName, user.LastName, user.UID)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// UpdatePassword сохраняет новый хеш пароля.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE uid = $2`, passwordHash, userUID)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// SetRole меняет роль пользователя.
func (s *Storage) SetRole(ctx context.Context, username string, role models.Role) error {
	const op = "storage.SetRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET role = $1 WHERE username = $2`, role, username)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// DeleteUser удаляет пользователя. Подписка, сессии и статьи удаляются каскадно.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}
