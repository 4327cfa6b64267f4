// Package models содержит доменные структуры сайта: пользователей, тарифы,
// подписки, статьи, сессии и события платежного провайдера.
package models

import "time"

// Role роль пользователя.
type Role string

const (
	// RoleClient читатель, оформляющий подписку.
	RoleClient Role = "client"
	// RoleWriter автор статей.
	RoleWriter Role = "writer"
	// RoleAdmin сотрудник с доступом к диагностике.
	RoleAdmin Role = "admin"
)

// Valid проверяет, что роль известна.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleWriter, RoleAdmin:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    `json:"uid"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName возвращает имя для подписи статей и писем.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Profile данные страницы профиля.
type Profile struct {
	User         *User         `json:"user"`
	Subscription *Subscription `json:"subscription,omitempty"`
}
