package repository

import (
	"context"
	"fmt"
	"time"

	"account-service/internal/data/entity"
	"account-service/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *entity.OTP) error
	FindLatestUnused(ctx context.Context, email, code string, purpose entity.OTPPurpose) (*entity.OTP, error)
	MarkAsUsed(ctx context.Context, otpID uuid.UUID) error
	ExpiredActivationEmails(ctx context.Context, now time.Time) ([]string, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type otpRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewOTPRepository(db database.Querier, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

func (r *otpRepository) Create(ctx context.Context, otp *entity.OTP) error {
	query := `
		INSERT INTO otps (id, email, code, purpose, is_used, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		otp.ID,
		otp.Email,
		otp.Code,
		otp.Purpose,
		otp.IsUsed,
		otp.ExpiresAt,
		otp.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create OTP",
			zap.Error(err),
			zap.String("email", otp.Email),
			zap.String("purpose", string(otp.Purpose)),
		)
		return fmt.Errorf("create OTP for %s: %w", otp.Email, err)
	}

	return nil
}

// FindLatestUnused returns the newest unused record matching (email, code,
// purpose), expired or not. Expiry is judged by the caller so a stale code
// can be reported as expired rather than unknown.
func (r *otpRepository) FindLatestUnused(ctx context.Context, email, code string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	query := `
		SELECT id, email, code, purpose, is_used, expires_at, created_at
		FROM otps
		WHERE email = $1
		  AND code = $2
		  AND purpose = $3
		  AND is_used = false
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp entity.OTP
	err := r.db.QueryRow(ctx, query, email, code, purpose).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.Purpose,
		&otp.IsUsed,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find OTP",
			zap.Error(err),
			zap.String("email", email),
			zap.String("purpose", string(purpose)),
		)
		return nil, fmt.Errorf("find OTP for %s purpose %s: %w", email, purpose, err)
	}

	return &otp, nil
}

func (r *otpRepository) MarkAsUsed(ctx context.Context, otpID uuid.UUID) error {
	query := `
		UPDATE otps
		SET is_used = true
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, otpID)
	if err != nil {
		r.log.Error("Failed to mark OTP as used",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return fmt.Errorf("mark OTP %s as used: %w", otpID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("OTP %s not found", otpID.String())
	}

	return nil
}

// ExpiredActivationEmails lists every email that still has an expired,
// unconsumed activation record. Runs before DeleteExpired: the purge needs
// these rows to find never-activated accounts.
func (r *otpRepository) ExpiredActivationEmails(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT email
		FROM otps
		WHERE expires_at < $1
		  AND purpose = $2
		  AND is_used = false
	`

	rows, err := r.db.Query(ctx, query, now, entity.OTPPurposeActivation)
	if err != nil {
		r.log.Error("Failed to list expired activation emails", zap.Error(err))
		return nil, fmt.Errorf("list expired activation emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			r.log.Error("Failed to scan expired activation email", zap.Error(err))
			return nil, fmt.Errorf("scan expired activation email: %w", err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate expired activation emails: %w", err)
	}

	return emails, nil
}

// DeleteExpired removes every record past its expiry regardless of purpose
// or used state. Returns the number of rows removed.
func (r *otpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM otps WHERE expires_at < $1`

	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to delete expired OTPs", zap.Error(err))
		return 0, fmt.Errorf("delete expired OTPs: %w", err)
	}

	return result.RowsAffected(), nil
}
