// Package jwt подписывает и проверяет токены сессий.
//
// Токен несет только идентификатор серверной сессии, UID пользователя и роль.
// Авторитетным остается состояние сессии в базе: токен без живой сессии не пропускается.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для токенов с неверной подписью или набором claims.
var ErrInvalidToken = errors.New("invalid token")

// Maker интерфейс для выпуска и разбора токенов сессий.
type Maker interface {
	GenerateToken(sessionID, userUID, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// CustomClaims описывает данные, которые хранятся в токене сессии.
type CustomClaims struct {
	UserUID string `json:"uid"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// SessionID возвращает идентификатор сессии, он лежит в стандартном поле jti.
func (c *CustomClaims) SessionID() string {
	return c.ID
}

// MakerImpl реализация Maker на HS256.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создает Maker с секретом подписи и временем жизни токена.
func NewJWTMaker(secretKey string, tokenTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
	}
}

// GenerateToken выпускает подписанный токен для сессии sessionID.
func (j *MakerImpl) GenerateToken(sessionID, userUID, role string) (string, error) {
	const op = "jwt.GenerateToken"
	now := time.Now()
	claims := CustomClaims{
		UserUID: userUID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена и возвращает его claims.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.ID == "" || claims.UserUID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
