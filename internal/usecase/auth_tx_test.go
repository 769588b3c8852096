package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
	"account-service/internal/dto/request"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Scripted pgx fakes: statements route by SQL fragment, so the flow tests
// below drive the real repositories and observe commit/rollback.

type fakeRow struct {
	vals []any
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.vals) || r.vals[i] == nil {
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.vals[i]))
	}
	return nil
}

type fakeRows struct{}

func (fakeRows) Close()                                       {}
func (fakeRows) Err() error                                   { return nil }
func (fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (fakeRows) Next() bool                                   { return false }
func (fakeRows) Scan(dest ...any) error                       { return nil }
func (fakeRows) Values() ([]any, error)                       { return nil, nil }
func (fakeRows) RawValues() [][]byte                          { return nil }
func (fakeRows) Conn() *pgx.Conn                              { return nil }

type fakeConn struct {
	rows      map[string]*fakeRow
	execErrOn string
	execLog   []string
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return fakeRows{}, nil
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	for frag, row := range c.rows {
		if strings.Contains(sql, frag) {
			return row
		}
	}
	return &fakeRow{err: pgx.ErrNoRows}
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.execLog = append(c.execLog, sql)
	if c.execErrOn != "" && strings.Contains(sql, c.execErrOn) {
		return pgconn.CommandTag{}, errors.New("exec failed")
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (c *fakeConn) execContains(frag string) bool {
	for _, sql := range c.execLog {
		if strings.Contains(sql, frag) {
			return true
		}
	}
	return false
}

type fakeTx struct {
	*fakeConn
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Commit(ctx context.Context) error          { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error        { t.rolledBack = true; return nil }
func (t *fakeTx) Conn() *pgx.Conn                           { return nil }
func (t *fakeTx) CopyFrom(ctx context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }

type fakeDB struct {
	*fakeConn
	tx *fakeTx
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) { return db.tx, nil }
func (db *fakeDB) Ping(ctx context.Context) error            { return nil }
func (db *fakeDB) Close()                                    {}

func newFakeDB() *fakeDB {
	conn := &fakeConn{rows: map[string]*fakeRow{}}
	return &fakeDB{fakeConn: conn, tx: &fakeTx{fakeConn: conn}}
}

func newTxAuthService(db *fakeDB, mail *mockMailer) AuthService {
	repo := repository.NewRepository(db, zap.NewNop())
	otp := NewOTPService(repo, mail, testConfig(), zap.NewNop())
	return NewAuthService(repo, otp, testConfig(), zap.NewNop())
}

func TestRegister_RollsBackAccountWhenCodeInsertFails(t *testing.T) {
	db := newFakeDB()
	db.rows["INSERT INTO users"] = &fakeRow{vals: []any{int64(1)}}
	db.execErrOn = "INSERT INTO otps"

	svc := newTxAuthService(db, &mockMailer{})
	_, err := svc.Register(context.Background(), &request.RegisterRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "pw123456",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to issue activation code")

	// The account insert must not survive the failed code insert
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestRegister_CommitsAccountWithActivationCode(t *testing.T) {
	db := newFakeDB()
	db.rows["INSERT INTO users"] = &fakeRow{vals: []any{int64(1)}}

	mail := &mockMailer{}
	mail.On("SendOTP", "a@x.com", mock.Anything, "activation").Return(nil)

	svc := newTxAuthService(db, mail)
	resp, err := svc.Register(context.Background(), &request.RegisterRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "pw123456",
	})

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", resp.Email)

	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
	assert.True(t, db.execContains("INSERT INTO otps"))
}

func verifyOTPFixtures(db *fakeDB) {
	now := time.Now()
	db.rows["FROM otps"] = &fakeRow{vals: []any{
		uuid.New(), "a@x.com", "123456", entity.OTPPurposeActivation,
		false, now.Add(time.Minute), now,
	}}
	db.rows["FROM users WHERE email"] = &fakeRow{vals: []any{
		int64(3), "a@x.com", "alice", nil, "hash", false, false, now, now,
	}}
}

func TestVerifyOTP_FailedActivationRollsBackConsumption(t *testing.T) {
	db := newFakeDB()
	verifyOTPFixtures(db)
	db.execErrOn = "UPDATE users"

	svc := newTxAuthService(db, &mockMailer{})
	_, err := svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		Email:   "a@x.com",
		OTPCode: "123456",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to activate account")

	// The code must stay usable when the activation never lands
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
	assert.False(t, db.execContains("UPDATE otps"))
}

func TestVerifyOTP_CommitsActivationWithConsumption(t *testing.T) {
	db := newFakeDB()
	verifyOTPFixtures(db)

	svc := newTxAuthService(db, &mockMailer{})
	resp, err := svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		Email:   "a@x.com",
		OTPCode: "123456",
	})

	require.NoError(t, err)
	assert.True(t, resp.User.IsActive)

	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
	assert.True(t, db.execContains("UPDATE users"))
	assert.True(t, db.execContains("UPDATE otps"))
}
