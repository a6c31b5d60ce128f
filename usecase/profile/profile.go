package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/usecase"
)

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile renames the user. The display name is the only mutable field.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID, name string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	name = strings.TrimSpace(name)

	updated, err := uc.users.UpdateName(ctx, userID, name)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) || uc.buffer == nil {
			return nil, err
		}
		user := &domain.User{ID: userID, Name: name}
		if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
			uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
			return nil, err
		}
		uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
		return user, nil
	}
	return updated, nil
}
