package service_test

import (
	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/security"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ===== MOCKS =====

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	args := m.Called(ctx, exec, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.User, error) {
	args := m.Called(ctx, exec, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	args := m.Called(ctx, exec, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) NicknameExists(ctx context.Context, exec sqlx.ExtContext, nickname string) (bool, error) {
	args := m.Called(ctx, exec, nickname)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, exec sqlx.ExtContext, userID int64, token *string) error {
	args := m.Called(ctx, exec, userID, token)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, exec sqlx.ExtContext, userID int64, passwordHash string) error {
	args := m.Called(ctx, exec, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePasswordAndRevokeSessions(ctx context.Context, exec sqlx.ExtContext, userID int64, passwordHash string) error {
	args := m.Called(ctx, exec, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateEmail(ctx context.Context, exec sqlx.ExtContext, userID int64, email string) error {
	args := m.Called(ctx, exec, userID, email)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePhone(ctx context.Context, exec sqlx.ExtContext, userID int64, phone string) error {
	args := m.Called(ctx, exec, userID, phone)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, exec sqlx.ExtContext, userID int64, role model.Role) error {
	args := m.Called(ctx, exec, userID, role)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastActivity(ctx context.Context, exec sqlx.ExtContext, userID int64, seenAt time.Time) error {
	args := m.Called(ctx, exec, userID, seenAt)
	return args.Error(0)
}

func (m *MockUserRepository) Block(ctx context.Context, exec sqlx.ExtContext, userID int64, blockedBy int64, reason string) error {
	args := m.Called(ctx, exec, userID, blockedBy, reason)
	return args.Error(0)
}

func (m *MockUserRepository) Unblock(ctx context.Context, exec sqlx.ExtContext, userID int64) error {
	args := m.Called(ctx, exec, userID)
	return args.Error(0)
}

// MockJWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokens(userID int64) (*model.TokensPair, error) {
	args := m.Called(userID)
	if tokens, ok := args.Get(0).(*model.TokensPair); ok {
		return tokens, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTService) VerifyAccess(token string) (*security.Claims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*security.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTService) VerifyRefresh(token string) (*security.Claims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*security.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTService) Decode(token string) (*security.Claims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*security.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockBlacklist
type MockBlacklist struct {
	mock.Mock
}

func (m *MockBlacklist) Revoke(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockBlacklist) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	args := m.Called(ctx, accessToken)
	return args.Bool(0), args.Error(1)
}

// MockSessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Login(ctx context.Context, userID int64) (*model.TokensPair, error) {
	args := m.Called(ctx, userID)
	if tokens, ok := args.Get(0).(*model.TokensPair); ok {
		return tokens, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Refresh(ctx context.Context, userID int64, presentedRefreshToken string) (*model.TokensPair, error) {
	args := m.Called(ctx, userID, presentedRefreshToken)
	if tokens, ok := args.Get(0).(*model.TokensPair); ok {
		return tokens, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Logout(ctx context.Context, userID int64, accessToken string) error {
	args := m.Called(ctx, userID, accessToken)
	return args.Error(0)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(toAddress, subject, textBody, htmlBody string) error {
	args := m.Called(toAddress, subject, textBody, htmlBody)
	return args.Error(0)
}

func (m *MockMailer) From() string {
	args := m.Called()
	return args.String(0)
}

// ===== IN-MEMORY EPHEMERAL STORE =====

type memStore struct {
	values map[string]string
	ttls   map[string]time.Duration
	setErr error
	getErr error
}

func newMemStore() *memStore {
	return &memStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (s *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", apperr.ErrNotFound
	}
	return value, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	delete(s.ttls, key)
	return nil
}

func (s *memStore) TTL(_ context.Context, key string) (time.Duration, error) {
	return s.ttls[key], nil
}

func (s *memStore) Scan(_ context.Context, pattern string, _ uint64, _ int64) ([]string, uint64, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, 0, nil
}

func (s *memStore) MGet(_ context.Context, keys []string) ([]string, error) {
	values := make([]string, len(keys))
	for i, key := range keys {
		values[i] = s.values[key]
	}
	return values, nil
}

// ===== HELPERS =====

// newTxDB : обёртка sqlmock-а, через которую работают BeginTxx сервисов
func newTxDB(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &config.Database{DB: sqlx.NewDb(db, "sqlmock")}, mockDB
}
