package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims полезная нагрузка токена:
// {"sub","iss","iat","exp","email"?,"roles"?}. email и roles есть только у access токена.
type Claims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec кодирует и разбирает подписанные HS256 токены общим ключом.
type TokenCodec struct {
	key    SigningKey
	leeway time.Duration
}

func NewTokenCodec(key SigningKey, leeway time.Duration) TokenCodec {
	return TokenCodec{key: key, leeway: leeway}
}

func (codec TokenCodec) Encode(claims *Claims) (string, error) {
	if codec.key.IsZero() {
		return "", ErrSecretMissing
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := jwtToken.SignedString(codec.key.bytes())
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return signed, nil
}

// Decode проверяет подпись, затем срок действия относительно now.
// Момент exp ещё допустим: истёкшим считается только now > exp.
// Ошибки библиотеки не выходят наружу: только ErrTokenMalformed,
// ErrTokenSignatureInvalid или ErrTokenExpired.
func (codec TokenCodec) Decode(tokenStr string, now time.Time) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// библиотека считает истёкшим now >= exp, сдвигаем на наносекунду
		jwt.WithTimeFunc(func() time.Time { return now.Add(-time.Nanosecond) }),
		jwt.WithLeeway(codec.leeway),
		jwt.WithExpirationRequired(),
	)

	claims := &Claims{}
	jwtToken, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return codec.key.bytes(), nil
	})

	switch {
	case err == nil && jwtToken.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenMalformed
	}
}
