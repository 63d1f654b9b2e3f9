package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const verificationTokenBytes = 32

// MaxPasswordBytes предел bcrypt: длиннее пароль не хэшируется.
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хэширования: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hashedPassword string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateVerificationToken одноразовый токен активации, не связанный с JWT.
// 256 бит случайности, проверка на коллизии не выполняется.
func GenerateVerificationToken() (string, error) {
	tokenBytes := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("ошибка генерации: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}
