package usecase

import (
	"context"
	"testing"

	"account-service/internal/dto/request"
	"account-service/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func TestGetByID_NotFound(t *testing.T) {
	userRepo := &mockUserRepo{}
	userRepo.On("FindByID", mock.Anything, int64(99)).Return(nil, nil)

	svc := NewUserService(userRepo, zap.NewNop())
	_, err := svc.GetByID(context.Background(), 99)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}

func TestGetByID_Success(t *testing.T) {
	userRepo := &mockUserRepo{}
	userRepo.On("FindByID", mock.Anything, int64(1)).
		Return(activeUser(1, "a@x.com", "alice", "pw123"), nil)

	svc := NewUserService(userRepo, zap.NewNop())
	resp, err := svc.GetByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "alice", resp.Username)
}

func TestUpdate_ForbiddenForOtherAccount(t *testing.T) {
	userRepo := &mockUserRepo{}

	svc := NewUserService(userRepo, zap.NewNop())
	_, err := svc.Update(context.Background(), 1, 2, &request.UpdateUserRequest{
		Username: strPtr("eve"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdate_PartialFields(t *testing.T) {
	user := activeUser(1, "a@x.com", "alice", "pw123")
	oldHash := user.PasswordHash

	userRepo := &mockUserRepo{}
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	svc := NewUserService(userRepo, zap.NewNop())
	resp, err := svc.Update(context.Background(), 1, 1, &request.UpdateUserRequest{
		FullName: strPtr("Alice Doe"),
	})

	require.NoError(t, err)
	require.NotNil(t, resp.FullName)
	assert.Equal(t, "Alice Doe", *resp.FullName)
	// Untouched fields survive a partial update
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, oldHash, user.PasswordHash)
}

func TestUpdate_RehashesPassword(t *testing.T) {
	user := activeUser(1, "a@x.com", "alice", "oldpw123")

	userRepo := &mockUserRepo{}
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	svc := NewUserService(userRepo, zap.NewNop())
	_, err := svc.Update(context.Background(), 1, 1, &request.UpdateUserRequest{
		Password: strPtr("newpw123"),
	})

	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("newpw123", user.PasswordHash))
	assert.False(t, utils.CheckPasswordHash("oldpw123", user.PasswordHash))
}

func TestUpdate_UsernameTaken(t *testing.T) {
	userRepo := &mockUserRepo{}
	userRepo.On("FindByID", mock.Anything, int64(1)).
		Return(activeUser(1, "a@x.com", "alice", "pw123"), nil)
	userRepo.On("FindByUsername", mock.Anything, "bob").
		Return(activeUser(2, "b@x.com", "bob", "pw123"), nil)

	svc := NewUserService(userRepo, zap.NewNop())
	_, err := svc.Update(context.Background(), 1, 1, &request.UpdateUserRequest{
		Username: strPtr("bob"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already taken")
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdate_KeepingOwnUsernameIsFine(t *testing.T) {
	user := activeUser(1, "a@x.com", "alice", "pw123")

	userRepo := &mockUserRepo{}
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(user, nil)
	userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	svc := NewUserService(userRepo, zap.NewNop())
	_, err := svc.Update(context.Background(), 1, 1, &request.UpdateUserRequest{
		Username: strPtr("alice"),
	})

	assert.NoError(t, err)
}

func TestDelete_ForbiddenForOtherAccount(t *testing.T) {
	userRepo := &mockUserRepo{}

	svc := NewUserService(userRepo, zap.NewNop())
	err := svc.Delete(context.Background(), 1, 2)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
	userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_NotFound(t *testing.T) {
	userRepo := &mockUserRepo{}
	userRepo.On("FindByID", mock.Anything, int64(9)).Return(nil, nil)

	svc := NewUserService(userRepo, zap.NewNop())
	err := svc.Delete(context.Background(), 9, 9)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}

func TestDelete_Success(t *testing.T) {
	userRepo := &mockUserRepo{}
	userRepo.On("FindByID", mock.Anything, int64(1)).
		Return(activeUser(1, "a@x.com", "alice", "pw123"), nil)
	userRepo.On("Delete", mock.Anything, int64(1)).Return(nil)

	svc := NewUserService(userRepo, zap.NewNop())
	err := svc.Delete(context.Background(), 1, 1)

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}
