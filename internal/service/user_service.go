package service

import (
	"context"
	"errors"
	"time"

	"interview-platform/internal/apperr"
	"interview-platform/internal/model"
	"interview-platform/internal/ports"
	"interview-platform/internal/repository"
)

// UserService чтение учётных записей для user-service.
type UserService struct {
	UserRepository ports.UserRepositoryInterface
	StoreTimeout   time.Duration
}

func NewUserService(userRepository ports.UserRepositoryInterface, storeTimeout time.Duration) *UserService {
	return &UserService{UserRepository: userRepository, StoreTimeout: storeTimeout}
}

func (service *UserService) GetUser(ctx context.Context, id int64) (*model.UserInfo, error) {
	timeout := service.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	user, err := service.UserRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.ResourceNotFound("User not found")
		}
		return nil, storeError(err)
	}

	return model.NewUserInfo(user), nil
}
