package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"interview-platform/internal"
	"interview-platform/internal/model"
)

var (
	ErrUserNotFound              = errors.New("пользователь не найден")
	ErrVerificationTokenNotFound = errors.New("токен подтверждения не найден или уже использован")
	ErrDuplicateEmail            = errors.New("email уже зарегистрирован")
)

const selectUser = `SELECT u.id, u.role_id, r.name AS role_name, u.email, u.password_hash,
			  u.full_name, u.date_of_birth, u.address, u.is_studying, u.status,
			  u.verify_token, u.created_at
			  FROM users u LEFT JOIN roles r ON r.id = u.role_id`

type UserRepository struct {
	*internal.Database
}

func NewUserRepository(database *internal.Database) *UserRepository {
	return &UserRepository{database}
}

func (repository *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool

	query := repository.DB.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`)
	if err := repository.DB.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("ошибка проверки email: %w", err)
	}

	return exists, nil
}

func (repository *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := repository.DB.Rebind(`INSERT INTO users (role_id, email, password_hash, full_name, date_of_birth,
			  address, is_studying, status, verify_token, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  RETURNING id`)

	var id int64
	err := repository.DB.QueryRowxContext(ctx, query,
		user.RoleID, user.Email, user.PasswordHash, user.FullName, user.DateOfBirth,
		user.Address, user.IsStudying, string(user.Status), user.VerifyToken, user.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("ошибка вставки пользователя: %w", err)
	}

	return repository.FindByID(ctx, id)
}

func (repository *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return repository.findOne(ctx, selectUser+` WHERE u.id = ?`, id)
}

func (repository *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return repository.findOne(ctx, selectUser+` WHERE u.email = ?`, email)
}

// ConsumeVerificationToken токен обнуляется тем же UPDATE, который его находит,
// поэтому из двух одновременных запросов успешен только один.
func (repository *UserRepository) ConsumeVerificationToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrVerificationTokenNotFound
	}

	query := repository.DB.Rebind(`UPDATE users SET verify_token = NULL, status = ?
			  WHERE verify_token = ?
			  RETURNING id`)

	var id int64
	err := repository.DB.QueryRowxContext(ctx, query, string(model.UserStatusActive), token).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationTokenNotFound
		}
		return nil, fmt.Errorf("не удалось подтвердить аккаунт: %w", err)
	}

	return repository.FindByID(ctx, id)
}

func (repository *UserRepository) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User

	err := repository.DB.GetContext(ctx, &user, repository.DB.Rebind(query), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}

	return false
}
