package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
	"account-service/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// purgeStub counts purge passes; Issue and Verify are never reached from
// the scheduler.
type purgeStub struct {
	calls atomic.Int64
	err   error
}

func (p *purgeStub) Issue(ctx context.Context, email string, purpose entity.OTPPurpose) (string, error) {
	return "", nil
}

func (p *purgeStub) Verify(ctx context.Context, email, code string, purpose entity.OTPPurpose) (bool, *entity.OTP, error) {
	return false, nil, nil
}

func (p *purgeStub) Consume(ctx context.Context, otpID uuid.UUID) error {
	return nil
}

func (p *purgeStub) WithTx(txRepo *repository.Repository) usecase.OTPService {
	return p
}

func (p *purgeStub) Purge(ctx context.Context) (int64, int64, error) {
	p.calls.Add(1)
	return 1, 2, p.err
}

func TestRunOnce_InvokesPurge(t *testing.T) {
	stub := &purgeStub{}
	s := NewCleanupScheduler(stub, time.Hour, zap.NewNop())

	s.RunOnce(context.Background())

	assert.Equal(t, int64(1), stub.calls.Load())
}

func TestRunOnce_PurgeErrorIsSwallowed(t *testing.T) {
	stub := &purgeStub{err: context.DeadlineExceeded}
	s := NewCleanupScheduler(stub, time.Hour, zap.NewNop())

	// Must not panic or propagate
	s.RunOnce(context.Background())

	assert.Equal(t, int64(1), stub.calls.Load())
}

func TestStartStop_RunsPeriodically(t *testing.T) {
	stub := &purgeStub{}
	s := NewCleanupScheduler(stub, 10*time.Millisecond, zap.NewNop())

	s.Start(context.Background())

	assert.Eventually(t, func() bool {
		return stub.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	after := stub.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, stub.calls.Load())
}

func TestStop_BeforeStartIsNoop(t *testing.T) {
	s := NewCleanupScheduler(&purgeStub{}, time.Hour, zap.NewNop())
	s.Stop()
}

func TestStart_ParentContextCancelStopsLoop(t *testing.T) {
	stub := &purgeStub{}
	s := NewCleanupScheduler(stub, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop after context cancel")
	}
}
