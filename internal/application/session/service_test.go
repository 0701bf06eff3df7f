package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stress-shield-api/internal/domain"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Disable(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newSvc(us *mockUserStore, ss *mockSessionStore, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{UserRepo: us, SessionRepo: ss, JWTProvider: jwt})
}

func existingUser(t *testing.T) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "user-123",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Enable:       true,
	}
}

// --- Login tests ---

func TestLogin_ByUsername(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	us.On("GetByUsername", mock.Anything, "alice").Return(existingUser(t), nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", "user-123", domain.RoleUser, mock.Anything).Return("bearer", nil)

	result, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Username: "alice", Password: "correct-horse"})

	require.NoError(t, err)
	assert.Equal(t, "bearer", result.Bearer)
	assert.True(t, result.Session.Enable)
	assert.Equal(t, "alice", result.Session.User.Username)
	assert.Equal(t, result.Session.SessionID, jwt.Calls[0].Arguments.String(2))
}

func TestLogin_ByEmailFallback(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	us.On("GetByUsername", mock.Anything, "Alice@Example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(existingUser(t), nil)
	ss.On("Put", mock.Anything, mock.Anything).Return(nil)
	jwt.On("Sign", mock.Anything, mock.Anything, mock.Anything).Return("bearer", nil)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Username: "Alice@Example.com", Password: "correct-horse"})

	require.NoError(t, err)
}

func TestLogin_UnknownUser(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	us.On("GetByUsername", mock.Anything, "bob").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "bob").Return(nil, domain.ErrNotFound)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Username: "bob", Password: "whatever1"})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	ss.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLogin_WrongPassword(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	us.On("GetByUsername", mock.Anything, "alice").Return(existingUser(t), nil)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Username: "alice", Password: "wrong-horse"})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_DisabledAccount(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	u := existingUser(t)
	u.Enable = false
	us.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Username: "alice", Password: "correct-horse"})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// --- Logout / GetCurrent tests ---

func TestLogout(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("Disable", mock.Anything, "s1").Return(nil)

	require.NoError(t, newSvc(us, ss, jwt).Logout(context.Background(), "s1"))
	ss.AssertExpectations(t)
}

func TestGetCurrent_Active(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", UserID: "user-123", Enable: true}, nil)
	us.On("Get", mock.Anything, "user-123").Return(existingUser(t), nil)

	sess, err := newSvc(us, ss, jwt).GetCurrent(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, "alice", sess.User.Username)
}

func TestGetCurrent_Disabled(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", UserID: "user-123", Enable: false}, nil)

	_, err := newSvc(us, ss, jwt).GetCurrent(context.Background(), "s1")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
