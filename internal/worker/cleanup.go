package worker

import (
	"context"
	"errors"
	"time"

	"account-service/internal/usecase"

	"go.uber.org/zap"
)

// CleanupScheduler periodically purges expired OTP records and
// never-activated accounts, independent of request traffic.
type CleanupScheduler struct {
	otp      usecase.OTPService
	interval time.Duration
	log      *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewCleanupScheduler(otp usecase.OTPService, interval time.Duration, log *zap.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		otp:      otp,
		interval: interval,
		log:      log.With(zap.String("worker", "cleanup")),
	}
}

// Start launches the purge loop. The first tick fires after one interval;
// callers wanting an immediate pass run RunOnce before Start.
func (s *CleanupScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)
}

func (s *CleanupScheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Cleanup loop stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge pass.
func (s *CleanupScheduler) RunOnce(ctx context.Context) {
	accounts, records, err := s.otp.Purge(ctx)
	if err != nil {
		// Cancellation during shutdown is a normal termination
		if errors.Is(err, context.Canceled) {
			return
		}
		s.log.Error("Purge failed", zap.Error(err))
		return
	}

	if accounts > 0 || records > 0 {
		s.log.Info("Purge removed stale records",
			zap.Int64("accounts_removed", accounts),
			zap.Int64("otp_records_removed", records),
		)
	}
}

// Stop cancels the loop and waits for the in-flight iteration to finish.
func (s *CleanupScheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}
