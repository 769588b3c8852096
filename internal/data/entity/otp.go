package entity

import (
	"time"

	"github.com/google/uuid"
)

type OTPPurpose string

const (
	OTPPurposeActivation    OTPPurpose = "activation"
	OTPPurposeResetPassword OTPPurpose = "reset_password"
)

// OTP is correlated to an account by email only, never by foreign key,
// so a code can exist before the account is activated.
type OTP struct {
	ID        uuid.UUID  `db:"id"`
	Email     string     `db:"email"`
	Code      string     `db:"code"`
	Purpose   OTPPurpose `db:"purpose"`
	IsUsed    bool       `db:"is_used"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (o *OTP) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

func (o *OTP) IsValid() bool {
	return !o.IsUsed && !o.IsExpired()
}
