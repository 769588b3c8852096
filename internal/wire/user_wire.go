package wire

import (
	"account-service/internal/adaptor"
	"account-service/pkg/middleware"
	"account-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures the user resource; every route requires a bearer token
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))
		r.Get("/me", userHandler.GetMe)
		r.Get("/{id}", userHandler.GetUser)
		r.Patch("/{id}", userHandler.UpdateUser)
		r.Delete("/{id}", userHandler.DeleteUser)
	})
}
