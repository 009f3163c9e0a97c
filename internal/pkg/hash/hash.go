package hash

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost - стоимость хеширования по умолчанию (12)
	DefaultCost = 12

	// MinPasswordLength - минимальная длина пароля сотрудника
	MinPasswordLength = 8

	// bcrypt учитывает только первые 72 байта
	maxPasswordBytes = 72
)

// HashPassword хеширует пароль с использованием bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword сравнивает хешированный пароль с plain-text паролем
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// IsAcceptable проверяет длину пароля перед хешированием
func IsAcceptable(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength && len(password) <= maxPasswordBytes
}
