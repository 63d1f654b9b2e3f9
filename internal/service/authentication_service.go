package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"interview-platform/internal/apperr"
	"interview-platform/internal/model"
	"interview-platform/internal/notifier"
	"interview-platform/internal/ports"
	"interview-platform/internal/repository"
	"interview-platform/internal/security"
)

const (
	defaultStoreTimeout  = 3 * time.Second
	notificationTimeout  = 10 * time.Second
	storeUnavailableText = "Identity store is temporarily unavailable, please retry"
)

type AuthenticationService struct {
	UserRepository ports.UserRepositoryInterface
	TokenIssuer    ports.TokenIssuerInterface
	TokenVerifier  ports.TokenVerifierInterface
	Notifier       ports.NotifierInterface

	VerificationURL string
	// StoreTimeout ограничивает каждое обращение к хранилищу
	StoreTimeout time.Duration
	// AllowAccessAsRefresh разрешает обмен access токена как refresh
	AllowAccessAsRefresh bool
	Now                  func() time.Time
	Logger               *zap.Logger

	notifications sync.WaitGroup
}

type AuthenticationOptions struct {
	VerificationURL      string
	StoreTimeout         time.Duration
	AllowAccessAsRefresh bool
}

func NewAuthenticationService(
	userRepository ports.UserRepositoryInterface,
	tokenIssuer ports.TokenIssuerInterface,
	tokenVerifier ports.TokenVerifierInterface,
	verificationNotifier ports.NotifierInterface,
	options AuthenticationOptions,
	logger *zap.Logger,
) *AuthenticationService {
	return &AuthenticationService{
		UserRepository:       userRepository,
		TokenIssuer:          tokenIssuer,
		TokenVerifier:        tokenVerifier,
		Notifier:             verificationNotifier,
		VerificationURL:      options.VerificationURL,
		StoreTimeout:         options.StoreTimeout,
		AllowAccessAsRefresh: options.AllowAccessAsRefresh,
		Now:                  time.Now,
		Logger:               logger,
	}
}

func (service *AuthenticationService) Register(ctx context.Context, request *model.RegisterRequest) (*model.TokenBundle, error) {
	role, err := resolveRole(request)
	if err != nil {
		return nil, err
	}

	// max=50 в валидаторе считает руны, bcrypt ограничен байтами
	if len(request.Password) > security.MaxPasswordBytes {
		return nil, apperr.Validation("Request validation failed", map[string]string{
			"password": fmt.Sprintf("must not exceed %d bytes", security.MaxPasswordBytes),
		})
	}

	email := normalizeEmail(request.Email)

	storeCtx, cancel := service.storeContext(ctx)
	exists, err := service.UserRepository.ExistsByEmail(storeCtx, email)
	cancel()
	if err != nil {
		return nil, storeError(err)
	}
	if exists {
		return nil, apperr.DuplicateResource("Email is already registered")
	}

	passwordHash, err := security.HashPassword(request.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("не удалось захэшировать пароль: %w", err))
	}

	verifyToken, err := security.GenerateVerificationToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &model.User{
		RoleID:       &role.ID,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     request.FullName,
		DateOfBirth:  request.DateOfBirth,
		Address:      request.Address,
		IsStudying:   request.IsStudying,
		Status:       model.UserStatusPending,
		VerifyToken:  &verifyToken,
		CreatedAt:    service.now(),
	}

	storeCtx, cancel = service.storeContext(ctx)
	created, err := service.UserRepository.Create(storeCtx, user)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.DuplicateResource("Email is already registered")
		}
		return nil, storeError(err)
	}

	bundle, err := service.issueBundle(created)
	if err != nil {
		return nil, err
	}
	bundle.VerifyToken = verifyToken

	service.sendVerification(ctx, created.Email, verifyToken)

	return bundle, nil
}

func (service *AuthenticationService) Login(ctx context.Context, request *model.LoginRequest) (*model.TokenBundle, error) {
	storeCtx, cancel := service.storeContext(ctx)
	user, err := service.UserRepository.FindByEmail(storeCtx, normalizeEmail(request.Email))
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.InvalidCredentials("Invalid email or password")
		}
		return nil, storeError(err)
	}

	if !security.CheckPassword(user.PasswordHash, request.Password) {
		return nil, apperr.InvalidCredentials("Invalid email or password")
	}

	if !user.IsActive() {
		return nil, apperr.BusinessRule("ACCOUNT_NOT_ACTIVE", "Account is not active, please verify your email")
	}

	return service.issueBundle(user)
}

// Refresh выпускает новую пару. Роли и email читаются из хранилища заново,
// ротации и отзыва refresh токенов нет.
func (service *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokenBundle, error) {
	identity, err := service.TokenVerifier.Verify(refreshToken, service.now())
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, apperr.TokenExpired("Refresh token has expired").WithCause(err)
		}
		return nil, tokenError("Invalid refresh token", err)
	}

	if identity.HasAccessClaims() && !service.AllowAccessAsRefresh {
		return nil, apperr.TokenInvalid("Invalid refresh token")
	}

	storeCtx, cancel := service.storeContext(ctx)
	user, err := service.UserRepository.FindByID(storeCtx, identity.SubjectID)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.ResourceNotFound("User not found")
		}
		return nil, storeError(err)
	}

	return service.issueBundle(user)
}

// Verify обменивает токен подтверждения на активацию аккаунта и новую пару токенов.
// Неизвестный и уже использованный токен неразличимы.
func (service *AuthenticationService) Verify(ctx context.Context, verifyToken string) (*model.TokenBundle, error) {
	storeCtx, cancel := service.storeContext(ctx)
	user, err := service.UserRepository.ConsumeVerificationToken(storeCtx, verifyToken)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrVerificationTokenNotFound) {
			return nil, apperr.TokenExpired("Verification token is invalid or already used")
		}
		return nil, storeError(err)
	}

	service.logger().Info("аккаунт подтверждён", zap.Int64("user_id", user.ID))
	return service.issueBundle(user)
}

func (service *AuthenticationService) UserInfo(ctx context.Context, accessToken string) (*model.UserInfo, error) {
	identity, err := service.TokenVerifier.Verify(accessToken, service.now())
	if err != nil {
		return nil, apperr.BusinessRule("INVALID_TOKEN", "Invalid token").WithCause(err)
	}

	storeCtx, cancel := service.storeContext(ctx)
	user, err := service.UserRepository.FindByID(storeCtx, identity.SubjectID)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.ResourceNotFound("User not found")
		}
		return nil, storeError(err)
	}

	return model.NewUserInfo(user), nil
}

// Health проверяет доступность хранилища.
func (service *AuthenticationService) Health(ctx context.Context) error {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	if err := service.UserRepository.Ping(storeCtx); err != nil {
		return apperr.Unavailable("Identity store is unreachable", err)
	}
	return nil
}

// Wait дожидается отправки уведомлений, запущенных до остановки сервера.
func (service *AuthenticationService) Wait() {
	service.notifications.Wait()
}

func (service *AuthenticationService) issueBundle(user *model.User) (*model.TokenBundle, error) {
	now := service.now()

	accessToken, err := service.TokenIssuer.IssueAccessToken(user.ID, user.Email, user.Roles(), now)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("ошибка генерации access токена: %w", err))
	}

	refreshToken, err := service.TokenIssuer.IssueRefreshToken(user.ID, now)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("ошибка генерации refresh токена: %w", err))
	}

	return &model.TokenBundle{
		AccessToken:  accessToken,
		TokenType:    model.TokenTypeBearer,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(service.TokenIssuer.AccessTTL() / time.Second),
	}, nil
}

// sendVerification не блокирует регистрацию; отмена запроса не отменяет отправку.
func (service *AuthenticationService) sendVerification(ctx context.Context, email string, verifyToken string) {
	if service.Notifier == nil {
		return
	}

	link, err := notifier.VerificationLink(service.VerificationURL, verifyToken)
	if err != nil {
		service.logger().Error("ошибка формирования ссылки подтверждения", zap.Error(err))
		return
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	service.notifications.Add(1)
	go func() {
		defer service.notifications.Done()
		defer cancel()

		if err := service.Notifier.SendVerification(notifyCtx, email, link); err != nil {
			service.logger().Warn("ошибка отправки письма подтверждения", zap.Error(err))
		}
	}()
}

func (service *AuthenticationService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := service.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (service *AuthenticationService) now() time.Time {
	if service.Now == nil {
		return time.Now().UTC()
	}
	return service.Now().UTC()
}

func (service *AuthenticationService) logger() *zap.Logger {
	if service.Logger == nil {
		return zap.NewNop()
	}
	return service.Logger
}

// resolveRole roleName важнее roleId; без обоих USER.
func resolveRole(request *model.RegisterRequest) (model.Role, error) {
	if request.RoleName != nil && strings.TrimSpace(*request.RoleName) != "" {
		role, ok := model.RoleByName(*request.RoleName)
		if !ok {
			return model.Role{}, apperr.BusinessRule("INVALID_ROLE", fmt.Sprintf("Unknown role: %s", *request.RoleName))
		}
		return role, nil
	}

	if request.RoleID != nil {
		role, ok := model.RoleByID(*request.RoleID)
		if !ok {
			return model.Role{}, apperr.BusinessRule("INVALID_ROLE", fmt.Sprintf("Unknown role id: %d", *request.RoleID))
		}
		return role, nil
	}

	role, _ := model.RoleByID(model.RoleIDUser)
	return role, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func tokenError(detail string, err error) error {
	if errors.Is(err, security.ErrTokenSignatureInvalid) {
		return apperr.TokenSignatureInvalid(detail).WithCause(err)
	}
	return apperr.TokenInvalid(detail).WithCause(err)
}

// storeError сбой хранилища временный: клиент повторяет запрос, а не логинится заново.
func storeError(err error) error {
	return apperr.Unavailable(storeUnavailableText, err)
}
