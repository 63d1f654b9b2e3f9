package security

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer выпускает access и refresh токены. Чистое вычисление:
// одинаковые входы (включая now) дают одинаковый токен.
type TokenIssuer struct {
	codec      TokenCodec
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(key SigningKey, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		codec:      NewTokenCodec(key, 0),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken роли по умолчанию ["USER"], если о роли ничего не известно.
func (issuer *TokenIssuer) IssueAccessToken(subjectID int64, email string, roles []string, now time.Time) (string, error) {
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}

	claims := &Claims{
		Email:            email,
		Roles:            append([]string(nil), roles...),
		RegisteredClaims: issuer.registered(subjectID, now, issuer.accessTTL),
	}

	return issuer.codec.Encode(claims)
}

// IssueRefreshToken без email и roles: при обмене роли читаются заново из хранилища.
func (issuer *TokenIssuer) IssueRefreshToken(subjectID int64, now time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: issuer.registered(subjectID, now, issuer.refreshTTL),
	}

	return issuer.codec.Encode(claims)
}

func (issuer *TokenIssuer) AccessTTL() time.Duration {
	return issuer.accessTTL
}

func (issuer *TokenIssuer) registered(subjectID int64, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	now = now.UTC()
	return jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subjectID, 10),
		Issuer:    issuer.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
