package usecases_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/usecaselabs/usecases"
)

// MockIdentity implements usecases.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// MockLogger implements usecases.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// testIdentity is a plain Identity for tests that do not assert calls
type testIdentity struct {
	id       string
	username string
	role     string
}

func (i testIdentity) ID() string       { return i.id }
func (i testIdentity) Username() string { return i.username }
func (i testIdentity) Role() string     { return i.role }

// recordingMailer captures activation emails instead of sending them
type recordingMailer struct {
	mu    sync.Mutex
	calls []mailerCall
	err   error
}

type mailerCall struct {
	to   string
	code string
}

func (m *recordingMailer) SendActivationEmail(ctx context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mailerCall{to: to, code: code})
	return m.err
}

func (m *recordingMailer) sent() []mailerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mailerCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// nopLogger discards everything
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// setupTestDB builds an in-memory sqlite handle with the schema in
// place. One open connection so every query sees the same database.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, usecases.SyncSchema(context.Background(), db))

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// setupRepo builds a repository manager over a fresh test database.
// The bun handle comes along for tests exercising Tx variants.
func setupRepo(t *testing.T) (usecases.RepositoryManager, *bun.DB) {
	t.Helper()

	db := setupTestDB(t)
	repo := usecases.NewRepositoryManager(db)
	require.NoError(t, repo.Validate())

	return repo, db
}

type testConfig struct {
	key        string
	expiration int
	issuer     string
}

func (c testConfig) GetSigningKey() string   { return c.key }
func (c testConfig) GetTokenExpiration() int { return c.expiration }
func (c testConfig) GetIssuer() string       { return c.issuer }
