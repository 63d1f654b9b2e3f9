package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrTokenInvalid общий класс для повреждённых и подделанных токенов:
// наружу они неотличимы друг от друга.
var ErrTokenInvalid = errors.New("token is invalid")

var (
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", ErrTokenInvalid)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: signature invalid", ErrTokenInvalid)
	ErrTokenExpired          = errors.New("token is expired")
)

// Identity результат успешной проверки токена.
type Identity struct {
	SubjectID int64
	Email     string
	Roles     []string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasAccessClaims true для токенов с access-полями (roles/email).
func (identity *Identity) HasAccessClaims() bool {
	return len(identity.Roles) > 0 || identity.Email != ""
}

// TokenVerifier проверяет подпись и срок действия. Один и тот же код
// используется шлюзом и каждым сервисом со своей локальной копией ключа.
type TokenVerifier struct {
	codec TokenCodec
}

func NewTokenVerifier(key SigningKey, leeway time.Duration) *TokenVerifier {
	return &TokenVerifier{codec: NewTokenCodec(key, leeway)}
}

func (verifier *TokenVerifier) Verify(tokenStr string, now time.Time) (*Identity, error) {
	if tokenStr == "" {
		return nil, ErrTokenMalformed
	}

	claims, err := verifier.codec.Decode(tokenStr, now)
	if err != nil {
		return nil, err
	}

	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	identity := &Identity{
		SubjectID: subjectID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		Issuer:    claims.Issuer,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	return identity, nil
}
