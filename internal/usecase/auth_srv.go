package usecase

import (
	"context"
	"fmt"
	"time"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
	"account-service/internal/dto/request"
	"account-service/internal/dto/response"
	"account-service/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error)
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.TokenResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
}

type authService struct {
	repo   *repository.Repository
	otp    OTPService
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	otp OTPService,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		otp:    otp,
		config: config,
		log:    log,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Reject duplicate email
	existingUser, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to check email")
	}
	if existingUser != nil {
		return nil, fmt.Errorf("email already registered")
	}

	// 3. Reject duplicate username
	existingUser, err = s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to check username", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("failed to check username")
	}
	if existingUser != nil {
		return nil, fmt.Errorf("username already taken")
	}

	// 4. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password")
	}

	// 5. Create account, always inactive and non-privileged
	now := time.Now()
	user := &entity.User{
		Email:        req.Email,
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: hashedPassword,
		IsActive:     false,
		IsSuperuser:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 6. Account row and activation code commit together: a failed OTP
	// insert must not leave an account no activation code can ever reach
	err = s.repo.WithinTx(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.User.Create(ctx, user); err != nil {
			s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
			return fmt.Errorf("failed to create account")
		}

		// Delivery is best-effort inside Issue
		if _, err := s.otp.WithTx(txRepo).Issue(ctx, user.Email, entity.OTPPurposeActivation); err != nil {
			s.log.Error("Failed to issue activation OTP",
				zap.Error(err), zap.String("email", user.Email))
			return fmt.Errorf("failed to issue activation code")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))

	return &response.RegisterResponse{Email: user.Email}, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Resolve identifier as email or username
	user, err := s.repo.User.FindByEmailOrUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("identifier", req.Username))
		return nil, fmt.Errorf("failed to find user")
	}

	// 3. Check credentials; unknown user and wrong password are indistinguishable
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("identifier", req.Username))
		return nil, fmt.Errorf("invalid credentials")
	}

	// 4. Only activated accounts may log in
	if !user.IsActive {
		s.log.Warn("Inactive account tried to login", zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("account is not activated")
	}

	// 5. Issue access token
	token, err := s.issueToken(user.ID)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("failed to issue token")
	}

	s.log.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	return s.tokenResponse(token, user), nil
}

// VerifyOTP consumes an activation code and flips the account to active.
func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.TokenResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Verify OTP validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Activation and code consumption commit together: a failed
	// activation must not burn the single-use code
	var user *entity.User
	err := s.repo.WithinTx(ctx, func(txRepo *repository.Repository) error {
		otp := s.otp.WithTx(txRepo)

		valid, record, err := otp.Verify(ctx, req.Email, req.OTPCode, entity.OTPPurposeActivation)
		if err != nil {
			return fmt.Errorf("failed to verify OTP")
		}
		if !valid {
			if record != nil && record.IsExpired() {
				return fmt.Errorf("OTP code has expired")
			}
			return fmt.Errorf("invalid OTP code")
		}

		user, err = txRepo.User.FindByEmail(ctx, req.Email)
		if err != nil {
			s.log.Error("Failed to find user for activation", zap.Error(err), zap.String("email", req.Email))
			return fmt.Errorf("failed to activate account")
		}
		if user == nil {
			return fmt.Errorf("user not found")
		}

		user.IsActive = true
		user.UpdatedAt = time.Now()
		if err := txRepo.User.Update(ctx, user); err != nil {
			s.log.Error("Failed to activate user", zap.Error(err), zap.Int64("user_id", user.ID))
			return fmt.Errorf("failed to activate account")
		}

		// Consume last, after the mutations it authorizes
		return otp.Consume(ctx, record.ID)
	})
	if err != nil {
		return nil, err
	}

	// 3. Issue access token for the freshly activated account
	token, err := s.issueToken(user.ID)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("failed to issue token")
	}

	s.log.Info("Account activated",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))

	return s.tokenResponse(token, user), nil
}

// ForgotPassword issues a reset code. The caller always gets the same
// outcome whether or not the email exists.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to find user for password reset", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to process request")
	}
	if user == nil {
		// No account-existence leak
		return nil
	}

	if _, err := s.otp.Issue(ctx, email, entity.OTPPurposeResetPassword); err != nil {
		s.log.Error("Failed to issue reset OTP", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to process request")
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reset password validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Password change and code consumption commit together: a failed
	// update must not burn the single-use code
	var userID int64
	err := s.repo.WithinTx(ctx, func(txRepo *repository.Repository) error {
		otp := s.otp.WithTx(txRepo)

		valid, record, err := otp.Verify(ctx, req.Email, req.OTPCode, entity.OTPPurposeResetPassword)
		if err != nil {
			return fmt.Errorf("failed to verify OTP")
		}
		if !valid {
			if record != nil && record.IsExpired() {
				return fmt.Errorf("OTP code has expired")
			}
			return fmt.Errorf("invalid OTP code")
		}

		user, err := txRepo.User.FindByEmail(ctx, req.Email)
		if err != nil {
			s.log.Error("Failed to find user for password reset", zap.Error(err), zap.String("email", req.Email))
			return fmt.Errorf("failed to reset password")
		}
		if user == nil {
			return fmt.Errorf("user not found")
		}

		hashedPassword, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			s.log.Error("Failed to hash password", zap.Error(err))
			return fmt.Errorf("failed to process password")
		}

		user.PasswordHash = hashedPassword
		user.UpdatedAt = time.Now()
		if err := txRepo.User.Update(ctx, user); err != nil {
			s.log.Error("Failed to update password", zap.Error(err), zap.Int64("user_id", user.ID))
			return fmt.Errorf("failed to reset password")
		}
		userID = user.ID

		// Consume last, after the mutations it authorizes
		return otp.Consume(ctx, record.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Password reset", zap.Int64("user_id", userID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) issueToken(userID int64) (string, error) {
	ttl := time.Duration(s.config.JWT.ExpiryMinutes) * time.Minute
	return utils.GenerateToken(userID, s.config.JWT.Secret, ttl)
}

func (s *authService) tokenResponse(token string, user *entity.User) *response.TokenResponse {
	return &response.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        response.UserToResponse(user),
	}
}
