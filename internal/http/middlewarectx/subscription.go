package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/contrarian-report/internal/http/response"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// SubscriptionStatusService возвращает статус подписки пользователя.
type SubscriptionStatusService interface {
	Status(ctx context.Context, userUID string) (models.SubscriptionStatus, error)
}

// RequireActiveSubscription пропускает только пользователей с активной подпиской
// и кладет статус в контекст. Должен стоять после SessionAuth.
func RequireActiveSubscription(log *slog.Logger, subService SubscriptionStatusService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFrom(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			status, err := subService.Status(r.Context(), session.UserUID)
			if err != nil {
				log.Error("failed to get subscription status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}

			switch status {
			case models.SubscriptionStatusActive:
				ctx := context.WithValue(r.Context(), SubscriptionStatus, status)
				next.ServeHTTP(w, r.WithContext(ctx))
			case models.SubscriptionStatusInactive:
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("subscription is inactive"))
			default:
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("active subscription required"))
			}
		})
	}
}
