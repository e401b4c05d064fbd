package util

import (
	"math/rand"
	"strings"
)

const (
	nicknameBase         = "user"
	nicknamePrefixLength = 12

	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	digits  = "0123456789"
)

// GenerateNickname : генерирует кандидата на уникальный nickname вида user_A1b2C3d4E5f6.
// Уникальность гарантируется не здесь, а unique constraint-ом в БД:
// вызывающий повторяет генерацию при коллизии.
func GenerateNickname() string {
	var sb strings.Builder
	sb.WriteString(nicknameBase)
	sb.WriteByte('_')
	for i := 0; i < nicknamePrefixLength; i++ {
		if i%2 == 0 {
			sb.WriteByte(letters[rand.Intn(len(letters))])
		} else {
			sb.WriteByte(digits[rand.Intn(len(digits))])
		}
	}
	return sb.String()
}

// GenerateVerificationCode : цифровой код для подтверждения телефона
func GenerateVerificationCode(length int) string {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		sb.WriteByte(digits[rand.Intn(len(digits))])
	}
	return sb.String()
}
