package usecase

import (
	"account-service/internal/data/repository"
	"account-service/pkg/mailer"
	"account-service/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth AuthService
	User UserService
	OTP  OTPService
}

func NewService(repo *repository.Repository, mail mailer.Mailer, config *utils.Config, log *zap.Logger) *Service {
	otp := NewOTPService(repo, mail, config, log)
	return &Service{
		Auth: NewAuthService(repo, otp, config, log),
		User: NewUserService(repo.User, log),
		OTP:  otp,
	}
}
