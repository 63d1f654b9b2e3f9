package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"interview-platform/config"
	"interview-platform/internal"
	"interview-platform/internal/migration"
	"interview-platform/internal/model"
)

func newTestRepository(t *testing.T) *UserRepository {
	t.Helper()

	database, err := internal.NewDatabaseConnection(config.DatabaseConfig{
		Driver:           "sqlite",
		ConnectionString: "file::memory:",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migration.Up(database.DB.DB, "sqlite", zap.NewNop()))
	return NewUserRepository(database)
}

func ptr[T any](value T) *T { return &value }

func pendingUser(email string, token string) *model.User {
	return &model.User{
		RoleID:       ptr(model.RoleIDRecruiter),
		Email:        email,
		PasswordHash: "hash",
		FullName:     ptr("Ada Lovelace"),
		Status:       model.UserStatusPending,
		VerifyToken:  ptr(token),
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repository := newTestRepository(t)

	created, err := repository.Create(ctx, pendingUser("a@x.com", "tok-1"))
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "RECRUITER", *created.RoleName)
	assert.Equal(t, model.UserStatusPending, created.Status)
	assert.Equal(t, "tok-1", *created.VerifyToken)
	assert.Equal(t, []string{"RECRUITER"}, created.Roles())

	byEmail, err := repository.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	exists, err := repository.ExistsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repository.ExistsByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_UserWithoutRole(t *testing.T) {
	ctx := context.Background()
	repository := newTestRepository(t)

	user := pendingUser("norole@x.com", "tok")
	user.RoleID = nil

	created, err := repository.Create(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, created.RoleName)
	assert.Empty(t, created.Roles())
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repository := newTestRepository(t)

	_, err := repository.Create(ctx, pendingUser("dup@x.com", "tok-1"))
	require.NoError(t, err)

	_, err = repository.Create(ctx, pendingUser("dup@x.com", "tok-2"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repository := newTestRepository(t)

	_, err := repository.FindByID(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repository.FindByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_ConsumeVerificationToken(t *testing.T) {
	ctx := context.Background()
	repository := newTestRepository(t)

	created, err := repository.Create(ctx, pendingUser("v@x.com", "verify-me"))
	require.NoError(t, err)

	activated, err := repository.ConsumeVerificationToken(ctx, "verify-me")
	require.NoError(t, err)
	assert.Equal(t, created.ID, activated.ID)
	assert.Equal(t, model.UserStatusActive, activated.Status)
	assert.Nil(t, activated.VerifyToken)

	_, err = repository.ConsumeVerificationToken(ctx, "verify-me")
	assert.ErrorIs(t, err, ErrVerificationTokenNotFound)

	_, err = repository.ConsumeVerificationToken(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrVerificationTokenNotFound)

	_, err = repository.ConsumeVerificationToken(ctx, "")
	assert.ErrorIs(t, err, ErrVerificationTokenNotFound)
}

func TestUserRepository_ConsumeVerificationToken_Concurrent(t *testing.T) {
	ctx := context.Background()
	repository := newTestRepository(t)

	_, err := repository.Create(ctx, pendingUser("race@x.com", "race-token"))
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repository.ConsumeVerificationToken(ctx, "race-token")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrVerificationTokenNotFound):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, rejected)
}

func TestUserRepository_Ping(t *testing.T) {
	repository := newTestRepository(t)
	assert.NoError(t, repository.Ping(context.Background()))
}
