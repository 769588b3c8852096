package wire

import (
	"account-service/internal/adaptor"
	"account-service/pkg/middleware"
	"account-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// 5 requests/second, burst of 10 — the auth surface is public and
	// OTP codes are guessable by brute force.
	limiter := middleware.NewRateLimiter(rate.Limit(5), 10)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(limiter.Limit)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
	})
}
