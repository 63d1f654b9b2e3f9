package security

import (
	"encoding/base64"
	"strings"
)

// MinSecretBytes минимальная длина ключа HS256 после декодирования.
const MinSecretBytes = 32

// ConfigError фатальная ошибка конфигурации: процесс не должен стартовать.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "jwt config error: " + e.Reason
}

var (
	ErrSecretMissing  = &ConfigError{Reason: "secret missing"}
	ErrSecretTooShort = &ConfigError{Reason: "secret too short"}
)

// SigningKey симметричный ключ HMAC-SHA256. Неизменяем после создания,
// безопасен для конкурентного чтения.
type SigningKey struct {
	material []byte
}

// DeriveKey строит ключ из jwt.secret: сначала пробует standard base64
// (с паддингом или без), при ошибке декодирования берёт UTF-8 байты строки как есть.
// Строка, случайно оказавшаяся валидным base64, декодируется.
func DeriveKey(secret string) (SigningKey, error) {
	if strings.TrimSpace(secret) == "" {
		return SigningKey{}, ErrSecretMissing
	}

	material, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		material, err = base64.RawStdEncoding.DecodeString(secret)
	}
	if err != nil {
		material = []byte(secret)
	}

	if len(material) < MinSecretBytes {
		return SigningKey{}, ErrSecretTooShort
	}

	return SigningKey{material: material}, nil
}

// MustDeriveKey для тестов и статической инициализации.
func MustDeriveKey(secret string) SigningKey {
	key, err := DeriveKey(secret)
	if err != nil {
		panic(err)
	}
	return key
}

func (key SigningKey) bytes() []byte {
	return key.material
}

func (key SigningKey) IsZero() bool {
	return len(key.material) == 0
}
