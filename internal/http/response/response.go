// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: успешных ответов, ошибок
// и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/contrarian-report/internal/lib/password"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK: значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError: значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OK возвращает успешный Response без данных.
func OK() Response {
	return Response{Status: StatusOK}
}

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

var policyErrors = []error{
	password.ErrTooShort,
	password.ErrEntirelyDigit,
	password.ErrTooCommon,
	password.ErrTooSimilar,
}

// FromError сопоставляет ошибку бизнес-логики с кодом HTTP и текстом для клиента.
// Неизвестные ошибки дают 500 без подробностей.
func FromError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, services.ErrWeakPassword):
		for _, pe := range policyErrors {
			if errors.Is(err, pe) {
				return http.StatusUnprocessableEntity, Error(pe.Error())
			}
		}
		return http.StatusUnprocessableEntity, Error(services.ErrWeakPassword.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error("invalid credentials")
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, Error("authentication required")
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, Error("forbidden")
	case errors.Is(err, services.ErrNoSubscription):
		return http.StatusForbidden, Error("active subscription required")
	case errors.Is(err, services.ErrPremiumRequired):
		return http.StatusForbidden, Error("premium subscription required")
	case errors.Is(err, services.ErrAlreadySubscribed):
		return http.StatusConflict, Error("user already has a subscription")
	case errors.Is(err, services.ErrPlanNotFound):
		return http.StatusUnprocessableEntity, Error("plan not found or inactive")
	case errors.Is(err, services.ErrPlanMismatch):
		return http.StatusUnprocessableEntity, Error("payment subscription does not match the plan")
	case errors.Is(err, services.ErrInvalidWebhook):
		return http.StatusBadRequest, Error("invalid webhook")
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict, Error("username or email already taken")
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
