package mailer

import (
	"fmt"
	"net/smtp"

	"account-service/pkg/utils"

	"go.uber.org/zap"
)

// Mailer delivers OTP codes to account email addresses.
type Mailer interface {
	SendOTP(to, code, purpose string) error
}

type smtpMailer struct {
	email utils.EmailConfig
	otp   utils.OTPConfig
	log   *zap.Logger
}

func NewMailer(config *utils.Config, log *zap.Logger) Mailer {
	return &smtpMailer{
		email: config.Email,
		otp:   config.OTP,
		log:   log.With(zap.String("component", "mailer")),
	}
}

// SendOTP sends the code over SMTP. With no SMTP credentials configured it
// degrades to a console fallback and reports success, so OTP issuance is
// never blocked on mail transport.
func (m *smtpMailer) SendOTP(to, code, purpose string) error {
	if m.email.User == "" || m.email.Password == "" {
		m.log.Info("SMTP not configured, printing OTP to console",
			zap.String("email", to),
			zap.String("purpose", purpose),
		)
		fmt.Printf("\nOTP for %s (%s): %s\n\n", to, purpose, code)
		return nil
	}

	subject := "Your account activation code"
	if purpose == "reset_password" {
		subject = "Your password reset code"
	}

	from := m.email.From
	if from == "" {
		from = m.email.User
	}

	body := fmt.Sprintf(
		"Hello,\r\n\r\nYour OTP code is: %s\r\n\r\nThis code expires in %d seconds.\r\nIf you did not request this code, please ignore this email.\r\n",
		code, m.otp.ExpirySeconds,
	)
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.email.FromName, from, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.email.Host, m.email.Port)
	auth := smtp.PlainAuth("", m.email.User, m.email.Password, m.email.Host)

	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send OTP email to %s: %w", to, err)
	}

	m.log.Info("OTP email sent", zap.String("email", to), zap.String("purpose", purpose))
	return nil
}
