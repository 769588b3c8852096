package usecase

import (
	"context"
	"time"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
	"account-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if u, _ := args.Get(0).(*entity.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*entity.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*entity.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) FindByEmailOrUsername(ctx context.Context, identifier string) (*entity.User, error) {
	args := m.Called(ctx, identifier)
	if u, _ := args.Get(0).(*entity.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockUserRepo) DeleteInactiveByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockOTPRepo struct{ mock.Mock }

func (m *mockOTPRepo) Create(ctx context.Context, otp *entity.OTP) error {
	return m.Called(ctx, otp).Error(0)
}
func (m *mockOTPRepo) FindLatestUnused(ctx context.Context, email, code string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	args := m.Called(ctx, email, code, purpose)
	if o, _ := args.Get(0).(*entity.OTP); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPRepo) MarkAsUsed(ctx context.Context, otpID uuid.UUID) error {
	return m.Called(ctx, otpID).Error(0)
}
func (m *mockOTPRepo) ExpiredActivationEmails(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if emails, _ := args.Get(0).([]string); emails != nil {
		return emails, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendOTP(to, code, purpose string) error {
	return m.Called(to, code, purpose).Error(0)
}

type mockOTPService struct{ mock.Mock }

func (m *mockOTPService) Issue(ctx context.Context, email string, purpose entity.OTPPurpose) (string, error) {
	args := m.Called(ctx, email, purpose)
	return args.String(0), args.Error(1)
}
func (m *mockOTPService) Verify(ctx context.Context, email, code string, purpose entity.OTPPurpose) (bool, *entity.OTP, error) {
	args := m.Called(ctx, email, code, purpose)
	if o, _ := args.Get(1).(*entity.OTP); o != nil {
		return args.Bool(0), o, args.Error(2)
	}
	return args.Bool(0), nil, args.Error(2)
}
func (m *mockOTPService) Consume(ctx context.Context, otpID uuid.UUID) error {
	return m.Called(ctx, otpID).Error(0)
}
func (m *mockOTPService) Purge(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}
func (m *mockOTPService) WithTx(txRepo *repository.Repository) OTPService {
	return m
}

// --- shared fixtures ---

func testConfig() *utils.Config {
	return &utils.Config{
		JWT: utils.JWTConfig{Secret: "test-secret", ExpiryMinutes: 90},
		OTP: utils.OTPConfig{ExpirySeconds: 90, Length: 6, CleanupInterval: 60},
	}
}
