package usecase

import (
	"context"
	"fmt"
	"time"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
	"account-service/pkg/mailer"
	"account-service/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OTPService owns the OTP record lifecycle: a record is created unused,
// consumed at most once, and removed by Purge once expired. Verify and
// Consume are separate so a caller can apply its own mutations between the
// two inside one transaction.
type OTPService interface {
	Issue(ctx context.Context, email string, purpose entity.OTPPurpose) (string, error)
	Verify(ctx context.Context, email, code string, purpose entity.OTPPurpose) (bool, *entity.OTP, error)
	Consume(ctx context.Context, otpID uuid.UUID) error
	Purge(ctx context.Context) (accountsRemoved, recordsRemoved int64, err error)
	WithTx(txRepo *repository.Repository) OTPService
}

type otpService struct {
	repo   *repository.Repository
	mailer mailer.Mailer
	config *utils.Config
	log    *zap.Logger
}

func NewOTPService(
	repo *repository.Repository,
	mail mailer.Mailer,
	config *utils.Config,
	log *zap.Logger,
) OTPService {
	return &otpService{
		repo:   repo,
		mailer: mail,
		config: config,
		log:    log,
	}
}

// Issue purges stale records, persists a fresh code for (email, purpose) and
// dispatches it. Delivery failure degrades to a console fallback; the code
// was already persisted, so issuance still succeeds.
func (s *otpService) Issue(ctx context.Context, email string, purpose entity.OTPPurpose) (string, error) {
	if _, _, err := s.Purge(ctx); err != nil {
		s.log.Error("Purge before OTP issue failed", zap.Error(err), zap.String("email", email))
		return "", fmt.Errorf("failed to issue OTP")
	}

	code, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		s.log.Error("Failed to generate OTP code", zap.Error(err))
		return "", fmt.Errorf("failed to issue OTP")
	}

	now := time.Now()
	otp := &entity.OTP{
		ID:        uuid.New(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		IsUsed:    false,
		ExpiresAt: now.Add(time.Duration(s.config.OTP.ExpirySeconds) * time.Second),
		CreatedAt: now,
	}

	if err := s.repo.OTP.Create(ctx, otp); err != nil {
		s.log.Error("Failed to save OTP", zap.Error(err), zap.String("email", email))
		return "", fmt.Errorf("failed to issue OTP")
	}

	if err := s.mailer.SendOTP(email, code, string(purpose)); err != nil {
		s.log.Warn("OTP delivery failed, falling back to console",
			zap.Error(err),
			zap.String("email", email),
			zap.String("purpose", string(purpose)),
		)
		fmt.Printf("\nOTP for %s (%s): %s\n\n", email, purpose, code)
	}

	s.log.Info("OTP issued",
		zap.String("email", email),
		zap.String("purpose", string(purpose)),
		zap.Time("expires_at", otp.ExpiresAt),
	)

	return code, nil
}

// Verify resolves the newest unused record for (email, code, purpose).
// Three outcomes: (false, nil) no such code, (false, record) code expired,
// (true, record) code usable. Verify does not consume the record; the
// caller calls Consume once its dependent mutations have gone through.
func (s *otpService) Verify(ctx context.Context, email, code string, purpose entity.OTPPurpose) (bool, *entity.OTP, error) {
	otp, err := s.repo.OTP.FindLatestUnused(ctx, email, code, purpose)
	if err != nil {
		s.log.Error("Failed to look up OTP", zap.Error(err), zap.String("email", email))
		return false, nil, fmt.Errorf("failed to verify OTP")
	}
	if otp == nil {
		return false, nil, nil
	}

	if otp.IsExpired() {
		return false, otp, nil
	}

	return true, otp, nil
}

// Consume marks a verified record used, ending its single use.
func (s *otpService) Consume(ctx context.Context, otpID uuid.UUID) error {
	if err := s.repo.OTP.MarkAsUsed(ctx, otpID); err != nil {
		s.log.Error("Failed to mark OTP as used", zap.Error(err), zap.String("otp_id", otpID.String()))
		return fmt.Errorf("failed to verify OTP")
	}
	return nil
}

// WithTx returns a view of the service whose statements run on txRepo, so
// OTP writes can join a caller's transaction.
func (s *otpService) WithTx(txRepo *repository.Repository) OTPService {
	scoped := *s
	scoped.repo = txRepo
	return &scoped
}

// Purge removes accounts that never activated before their activation code
// expired, then removes every expired record. The account pass must run
// first: it needs the expired activation rows to find candidate emails.
func (s *otpService) Purge(ctx context.Context) (int64, int64, error) {
	now := time.Now()

	emails, err := s.repo.OTP.ExpiredActivationEmails(ctx, now)
	if err != nil {
		return 0, 0, err
	}

	var accountsRemoved int64
	for _, email := range emails {
		// Only still-inactive accounts are removed; one that activated
		// via a later code stays.
		deleted, err := s.repo.User.DeleteInactiveByEmail(ctx, email)
		if err != nil {
			s.log.Error("Failed to remove inactive account during purge",
				zap.Error(err),
				zap.String("email", email),
			)
			continue
		}
		if deleted {
			accountsRemoved++
		}
	}

	recordsRemoved, err := s.repo.OTP.DeleteExpired(ctx, now)
	if err != nil {
		return accountsRemoved, 0, err
	}

	return accountsRemoved, recordsRemoved, nil
}
