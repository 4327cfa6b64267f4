// Package login реализует HTTP-обработчик входа по имени или email.
//
// При успехе создается серверная сессия, подписанный токен ставится в HttpOnly cookie
// и возвращается в теле ответа для использования в заголовке Authorization.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/http/cookies"
	"github.com/magabrotheeeer/contrarian-report/internal/http/response"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// Service описывает вход пользователя.
type Service interface {
	Login(ctx context.Context, login, password string) (*models.LoginResult, error)
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	session  config.Session
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, session config.Session) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		session:  session,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход
// @Description Проверяет пароль, создает сессию и ставит cookie. Частота попыток ограничена по IP.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Имя или email и пароль"
// @Success 200 {object} response.Response{data=models.LoginResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/account/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		status, resp := response.FromError(err)
		if status == http.StatusInternalServerError {
			log.Error("login failed", sl.Err(err))
		} else {
			log.Info("login rejected", slog.String("login", req.Login))
		}
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	cookies.Set(w, h.session, res.Token, res.ExpiresAt)
	log.Info("login success", slog.String("username", res.Username))
	render.JSON(w, r, response.StatusOKWithData(res))
}
