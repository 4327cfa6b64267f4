// Package services содержит общие ошибки бизнес-логики. Сами сервисы лежат
// в подпакетах и возвращают эти ошибки обернутыми, обработчики сопоставляют
// их со статусами HTTP через errors.Is.
package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrUnauthorized       = errors.New("session is missing or expired")
	ErrWeakPassword       = errors.New("password does not satisfy the policy")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadySubscribed  = errors.New("user already has a subscription")
	ErrNoSubscription     = errors.New("user has no subscription")
	ErrPremiumRequired    = errors.New("premium subscription required")
	ErrPlanNotFound       = errors.New("plan not found or inactive")
	ErrPlanMismatch       = errors.New("processor subscription does not match the plan")
	ErrInvalidWebhook     = errors.New("webhook verification failed")
)
