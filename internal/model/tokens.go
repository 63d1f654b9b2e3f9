package model

// TokenBundle ответ auth-сервиса с парой токенов
// swagger:model
type TokenBundle struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiJ9...
	AccessToken string `json:"accessToken"`

	// Всегда "Bearer"
	TokenType string `json:"tokenType"`

	// Refresh токен (JWT без email и roles)
	// example: eyJhbGciOiJIUzI1NiJ9...
	RefreshToken string `json:"refreshToken"`

	// Время жизни access токена в секундах
	// example: 900
	ExpiresIn int64 `json:"expiresIn"`

	// Токен подтверждения аккаунта, только при регистрации
	VerifyToken string `json:"verifyToken,omitempty"`
}

const TokenTypeBearer = "Bearer"

// RefreshRequest содержит refresh токен в json формате
// swagger:model
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
