package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// CreateSession сохраняет серверную сессию.
func (s *Storage) CreateSession(ctx context.Context, session models.Session) error {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx, `INSERT INTO sessions (id, user_uid, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`, session.ID, session.UserUID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

// GetSession возвращает сессию вместе с актуальными username и ролью пользователя.
func (s *Storage) GetSession(ctx context.Context, id string) (*models.Session, error) {
	const op = "storage.GetSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var session models.Session
	err := s.DB.QueryRowContext(ctx, `SELECT s.id, s.user_uid, u.username, u.role, s.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON u.uid = s.user_uid
		WHERE s.id = $1`, id).Scan(&session.ID, &session.UserUID, &session.Username, &session.Role,
		&session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &session, nil
}

// ExtendSession продлевает сессию до expiresAt.
func (s *Storage) ExtendSession(ctx context.Context, id string, expiresAt time.Time) error {
	const op = "storage.ExtendSession"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE sessions SET expires_at = $1 WHERE id = $2`, expiresAt, id)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// DeleteSession удаляет сессию. Отсутствие сессии не считается ошибкой.
func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.DeleteSession"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return wrap(op, err)
	}
	return nil
}

// DeleteUserSessions удаляет все сессии пользователя и возвращает их идентификаторы.
func (s *Storage) DeleteUserSessions(ctx context.Context, userUID string) ([]string, error) {
	const op = "storage.DeleteUserSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `DELETE FROM sessions WHERE user_uid = $1 RETURNING id`, userUID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// ListUserSessionIDs возвращает идентификаторы всех сессий пользователя.
func (s *Storage) ListUserSessionIDs(ctx context.Context, userUID string) ([]string, error) {
	const op = "storage.ListUserSessionIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id FROM sessions WHERE user_uid = $1`, userUID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// DeleteExpiredSessions удаляет сессии, истекшие к моменту now.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.DeleteExpiredSessions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
