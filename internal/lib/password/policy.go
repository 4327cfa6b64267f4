package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	gopassword "github.com/sethvargo/go-password/password"
)

// MinLength минимальная длина пароля.
const MinLength = 8

// Ошибки политики паролей. Текст уходит клиенту как есть.
var (
	ErrTooShort      = fmt.Errorf("password must contain at least %d characters", MinLength)
	ErrEntirelyDigit = errors.New("password can't be entirely numeric")
	ErrTooCommon     = errors.New("password is too common")
	ErrTooSimilar    = errors.New("password is too similar to the username or email")
)

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "sunshine": {},
	"princess": {}, "football": {}, "baseball": {}, "welcome1": {}, "letmein1": {},
	"abc12345": {}, "trustno1": {}, "superman": {}, "passw0rd": {}, "11111111": {},
	"00000000": {}, "admin123": {}, "starwars": {}, "whatever": {}, "dragon12": {},
}

// Validate проверяет пароль по политике: длина, не только цифры, не из списка
// распространенных и не похож на имя пользователя или email.
func Validate(password, username, email string) error {
	if len([]rune(password)) < MinLength {
		return ErrTooShort
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return ErrEntirelyDigit
	}
	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return ErrTooCommon
	}
	for _, attr := range similarityAttrs(username, email) {
		if strings.Contains(lower, attr) || strings.Contains(attr, lower) {
			return ErrTooSimilar
		}
	}
	return nil
}

func similarityAttrs(username, email string) []string {
	var attrs []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if len(s) >= 3 {
			attrs = append(attrs, s)
		}
	}
	add(username)
	if local, _, ok := strings.Cut(email, "@"); ok {
		add(local)
	}
	return attrs
}

// Generate создает случайный пароль, проходящий Validate, для учетных записей,
// заводимых из командной строки.
func Generate() (string, error) {
	const op = "password.Generate"
	pass, err := gopassword.Generate(20, 4, 2, false, false)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return pass, nil
}
