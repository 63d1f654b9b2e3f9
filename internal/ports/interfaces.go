package ports

import (
	"context"
	"time"

	"interview-platform/internal/model"
	"interview-platform/internal/security"
)

type UserRepositoryInterface interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ConsumeVerificationToken одним атомарным UPDATE обнуляет токен и активирует аккаунт.
	ConsumeVerificationToken(ctx context.Context, token string) (*model.User, error)
	Ping(ctx context.Context) error
}

type TokenIssuerInterface interface {
	IssueAccessToken(subjectID int64, email string, roles []string, now time.Time) (string, error)
	IssueRefreshToken(subjectID int64, now time.Time) (string, error)
	AccessTTL() time.Duration
}

type TokenVerifierInterface interface {
	Verify(tokenStr string, now time.Time) (*security.Identity, error)
}

type NotifierInterface interface {
	SendVerification(ctx context.Context, email string, link string) error
}
