// Package middlewarectx содержит HTTP middleware сайта: аутентификацию по
// сессии, проверку роли и статуса подписки, ограничение частоты запросов
// и запрет кеширования.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// Session: ключ для *models.Session в контексте
	Session Key = "session"
	// SubscriptionStatus: ключ для статуса подписки в контексте
	SubscriptionStatus Key = "subscription_status"
)

// WithSession кладет сессию в контекст.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, Session, s)
}

// SessionFrom достает сессию из контекста.
func SessionFrom(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(Session).(*models.Session)
	return s, ok && s != nil
}
