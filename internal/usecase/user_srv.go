package usecase

import (
	"context"
	"fmt"
	"time"

	"account-service/internal/data/repository"
	"account-service/internal/dto/request"
	"account-service/internal/dto/response"
	"account-service/pkg/utils"

	"go.uber.org/zap"
)

type UserService interface {
	GetByID(ctx context.Context, id int64) (*response.UserResponse, error)
	Update(ctx context.Context, actorID, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error)
	Delete(ctx context.Context, actorID, id int64) error
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (us *userService) GetByID(ctx context.Context, id int64) (*response.UserResponse, error) {
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("failed to get user")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// Update applies a partial field set. Only the account owner may mutate it;
// a password field is rehashed before persisting.
func (us *userService) Update(ctx context.Context, actorID, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if actorID != id {
		us.log.Warn("Update on another account rejected",
			zap.Int64("actor_id", actorID), zap.Int64("user_id", id))
		return nil, fmt.Errorf("forbidden")
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		us.log.Warn("Update validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("failed to update user")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	if req.Username != nil {
		// A new username must stay unique
		existing, err := us.userRepo.FindByUsername(ctx, *req.Username)
		if err != nil {
			us.log.Error("Failed to check username", zap.Error(err), zap.String("username", *req.Username))
			return nil, fmt.Errorf("failed to update user")
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("username already taken")
		}
		user.Username = *req.Username
	}
	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if req.Password != nil {
		hashedPassword, err := utils.HashPassword(*req.Password)
		if err != nil {
			us.log.Error("Failed to hash password", zap.Error(err))
			return nil, fmt.Errorf("failed to process password")
		}
		user.PasswordHash = hashedPassword
	}

	user.UpdatedAt = time.Now()
	if err := us.userRepo.Update(ctx, user); err != nil {
		us.log.Error("Failed to update user", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("failed to update user")
	}

	us.log.Info("User updated", zap.Int64("user_id", id))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID != id {
		us.log.Warn("Delete on another account rejected",
			zap.Int64("actor_id", actorID), zap.Int64("user_id", id))
		return fmt.Errorf("forbidden")
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.Int64("user_id", id))
		return fmt.Errorf("failed to delete user")
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	if err := us.userRepo.Delete(ctx, id); err != nil {
		us.log.Error("Failed to delete user", zap.Error(err), zap.Int64("user_id", id))
		return fmt.Errorf("failed to delete user")
	}

	return nil
}
