package repository

import (
	"context"
	"fmt"

	"account-service/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	User UserRepository
	OTP  OTPRepository

	db  database.PgxIface
	log *zap.Logger
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User: NewUserRepository(db, log),
		OTP:  NewOTPRepository(db, log),
		db:   db,
		log:  log,
	}
}

// WithinTx runs fn with every repository bound to a single transaction.
// fn returning an error rolls the whole transaction back, otherwise it
// commits. A repository assembled without a pool handle runs fn on itself.
func (r *Repository) WithinTx(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &Repository{
		User: NewUserRepository(tx, r.log),
		OTP:  NewOTPRepository(tx, r.log),
		log:  r.log,
	}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			r.log.Error("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
