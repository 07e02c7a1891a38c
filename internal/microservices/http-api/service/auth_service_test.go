package service_test

import (
	"testing"
	"time"

	"novelhub/internal/config"
	"novelhub/internal/microservices/http-api/models"
	"novelhub/internal/microservices/http-api/service"
	"novelhub/internal/middleware/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *models.User) error { return m.Called(user).Error(0) }
func (m *MockUserRepo) Update(user *models.User) error { return m.Called(user).Error(0) }

func (m *MockUserRepo) FindByID(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockRefreshTokenRepo struct {
	mock.Mock
}

func (m *MockRefreshTokenRepo) Create(token *models.RefreshToken) error {
	return m.Called(token).Error(0)
}

func (m *MockRefreshTokenRepo) FindByToken(tokenString string) (*models.RefreshToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepo) Revoke(tokenID string) error {
	return m.Called(tokenID).Error(0)
}

func (m *MockRefreshTokenRepo) DeleteExpired() error {
	return m.Called().Error(0)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestLoginIssuesValidatableToken(t *testing.T) {
	userRepo := new(MockUserRepo)
	tokenRepo := new(MockRefreshTokenRepo)
	svc := service.NewAuthService(userRepo, tokenRepo, testAuthConfig())

	hashed, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	user := &models.User{ID: "u-1", Username: "alice", Role: "user", Password: hashed}
	userRepo.On("FindByUsername", "alice").Return(user, nil)
	userRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil)
	tokenRepo.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

	accessToken, refreshToken, loggedIn, err := svc.Login("alice", "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, refreshToken)
	assert.Equal(t, "u-1", loggedIn.ID)

	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(MockUserRepo)
	tokenRepo := new(MockRefreshTokenRepo)
	svc := service.NewAuthService(userRepo, tokenRepo, testAuthConfig())

	hashed, err := auth.HashPassword("right")
	require.NoError(t, err)
	userRepo.On("FindByUsername", "alice").
		Return(&models.User{ID: "u-1", Username: "alice", Password: hashed}, nil)

	_, _, _, err = svc.Login("alice", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	userRepo := new(MockUserRepo)
	tokenRepo := new(MockRefreshTokenRepo)
	svc := service.NewAuthService(userRepo, tokenRepo, testAuthConfig())

	userRepo.On("FindByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, _, _, err := svc.Login("ghost", "whatever")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := service.NewAuthService(new(MockUserRepo), new(MockRefreshTokenRepo), testAuthConfig())

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	userRepo := new(MockUserRepo)
	tokenRepo := new(MockRefreshTokenRepo)
	svc := service.NewAuthService(userRepo, tokenRepo, testAuthConfig())

	tokenRepo.On("FindByToken", "revoked-token").Return(&models.RefreshToken{
		ID:        "t-1",
		UserID:    "u-1",
		Token:     "revoked-token",
		Revoked:   true,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	_, err := svc.RefreshAccessToken("revoked-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	userRepo := new(MockUserRepo)
	tokenRepo := new(MockRefreshTokenRepo)
	svc := service.NewAuthService(userRepo, tokenRepo, testAuthConfig())

	tokenRepo.On("FindByToken", "old-token").Return(&models.RefreshToken{
		ID:        "t-1",
		UserID:    "u-1",
		Token:     "old-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}, nil)

	_, err := svc.RefreshAccessToken("old-token")
	assert.ErrorIs(t, err, service.ErrExpiredToken)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	userRepo := new(MockUserRepo)
	tokenRepo := new(MockRefreshTokenRepo)
	svc := service.NewAuthService(userRepo, tokenRepo, testAuthConfig())

	userRepo.On("FindByUsername", "alice").Return(&models.User{ID: "u-1"}, nil)

	_, err := svc.Register("alice", "password123", "alice@example.com")
	assert.ErrorIs(t, err, service.ErrNameInUse)
}
