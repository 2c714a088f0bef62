package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskify/app/internal/auth"
	"taskify/app/internal/models"
)

type AuthServiceSuite struct {
	suite.Suite

	db      *gorm.DB
	service *auth.ServiceImpl
}

func (s *AuthServiceSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	err = db.AutoMigrate(&models.User{}, &models.Token{})
	s.Require().NoError(err)

	s.db = db
	s.service = auth.NewService(auth.ServiceConfig{
		JWTSecret:      "test-secret",
		BCryptCost:     4,
		AllowAnonymous: true,
	}, nil)
}

func (s *AuthServiceSuite) TestRegisterAndLogin() {
	registered, err := s.service.Register(s.db, "user@example.com", "password123")
	s.Require().NoError(err)
	s.NotEmpty(registered.ID)
	s.Equal("user@example.com", registered.Email)
	s.NotEqual("password123", registered.Password, "password must be stored hashed")

	user, err := s.service.Login(s.db, "user@example.com", "password123")
	s.Require().NoError(err)
	s.Equal(registered.ID, user.ID)
	s.NotNil(user.LastLoginAt)
}

func (s *AuthServiceSuite) TestRegister_NormalizesEmail() {
	registered, err := s.service.Register(s.db, "  User@Example.COM ", "password123")
	s.Require().NoError(err)
	s.Equal("user@example.com", registered.Email)

	_, err = s.service.Login(s.db, "USER@example.com", "password123")
	s.NoError(err)
}

func (s *AuthServiceSuite) TestRegister_DuplicateEmail() {
	_, err := s.service.Register(s.db, "user@example.com", "password123")
	s.Require().NoError(err)

	_, err = s.service.Register(s.db, "user@example.com", "different456")
	s.Require().Error(err)
	s.Equal(auth.CodeEmailInUse, auth.CodeOf(err))
	s.Equal(auth.MsgEmailInUse, auth.UserMessage(err))
}

func (s *AuthServiceSuite) TestRegister_WeakPassword() {
	_, err := s.service.Register(s.db, "user@example.com", "short")
	s.Require().Error(err)
	s.Equal(auth.CodeWeakPassword, auth.CodeOf(err))
	s.Equal(auth.MsgWeakPassword, auth.UserMessage(err))
}

func (s *AuthServiceSuite) TestLogin_UnknownUser() {
	_, err := s.service.Login(s.db, "nobody@example.com", "password123")
	s.Require().Error(err)
	s.Equal(auth.CodeUserNotFound, auth.CodeOf(err))
}

func (s *AuthServiceSuite) TestLogin_WrongPassword() {
	_, err := s.service.Register(s.db, "user@example.com", "password123")
	s.Require().NoError(err)

	_, err = s.service.Login(s.db, "user@example.com", "wrong-password")
	s.Require().Error(err)
	s.Equal(auth.CodeWrongPassword, auth.CodeOf(err))
}

func (s *AuthServiceSuite) TestLogin_InvalidEmail() {
	_, err := s.service.Login(s.db, "not-an-email", "password123")
	s.Require().Error(err)
	s.Equal(auth.CodeInvalidEmail, auth.CodeOf(err))
}

// Credential failures must be indistinguishable to the person reading the
// message, so a probe cannot learn whether the account exists.
func (s *AuthServiceSuite) TestUserMessage_CollapsesCredentialFailures() {
	_, err := s.service.Register(s.db, "user@example.com", "password123")
	s.Require().NoError(err)

	_, unknownErr := s.service.Login(s.db, "nobody@example.com", "password123")
	_, wrongErr := s.service.Login(s.db, "user@example.com", "wrong-password")
	_, emailErr := s.service.Login(s.db, "not-an-email", "password123")

	s.Equal(auth.MsgIncorrectCredentials, auth.UserMessage(unknownErr))
	s.Equal(auth.MsgIncorrectCredentials, auth.UserMessage(wrongErr))
	s.Equal(auth.MsgIncorrectCredentials, auth.UserMessage(emailErr))
}

func (s *AuthServiceSuite) TestLoginAnonymously_CreatesBackendUser() {
	user, err := s.service.LoginAnonymously(s.db)
	s.Require().NoError(err)

	s.True(user.Anonymous)
	s.False(user.OfflineGuest)
	s.False(user.IsGuest())

	var count int64
	s.db.Model(&models.User{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *AuthServiceSuite) TestLoginAnonymously_DisabledFallsBackToOfflineGuest() {
	service := auth.NewService(auth.ServiceConfig{
		JWTSecret:      "test-secret",
		AllowAnonymous: false,
	}, nil)

	user, err := service.LoginAnonymously(s.db)
	s.Require().NoError(err)

	s.True(user.Anonymous)
	s.True(user.OfflineGuest)
	s.True(user.IsGuest())
	s.Contains(user.ID, models.GuestIDPrefix)

	// The fallback never touches the backend.
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *AuthServiceSuite) TestGenerateAndVerifyToken() {
	access, refresh, err := s.service.GenerateToken(s.db, "user-1")
	s.Require().NoError(err)
	s.NotEmpty(access)
	s.NotEmpty(refresh)

	userID, err := s.service.VerifyToken(access)
	s.Require().NoError(err)
	s.Equal("user-1", userID)
}

func (s *AuthServiceSuite) TestVerifyToken_RejectsTampered() {
	access, _, err := s.service.GenerateToken(s.db, "user-1")
	s.Require().NoError(err)

	_, err = s.service.VerifyToken(access + "x")
	s.Require().Error(err)
	s.Equal(auth.CodeInvalidCredential, auth.CodeOf(err))
}

func (s *AuthServiceSuite) TestVerifyToken_RejectsWrongSecret() {
	other := auth.NewService(auth.ServiceConfig{JWTSecret: "other-secret"}, nil)

	access, _, err := other.GenerateToken(s.db, "user-1")
	s.Require().NoError(err)

	_, err = s.service.VerifyToken(access)
	s.Require().Error(err)
}

func (s *AuthServiceSuite) TestRefreshToken_RotatesToken() {
	_, refresh, err := s.service.GenerateToken(s.db, "user-1")
	s.Require().NoError(err)

	access, newRefresh, expiresIn, err := s.service.RefreshToken(s.db, refresh)
	s.Require().NoError(err)
	s.NotEmpty(access)
	s.NotEqual(refresh, newRefresh)
	s.Equal(int64(time.Hour.Seconds()), expiresIn)

	// The consumed token no longer works.
	_, _, _, err = s.service.RefreshToken(s.db, refresh)
	s.Require().Error(err)
	s.Equal(auth.CodeInvalidCredential, auth.CodeOf(err))
}

func (s *AuthServiceSuite) TestRefreshToken_Unknown() {
	_, _, _, err := s.service.RefreshToken(s.db, "no-such-token")
	s.Require().Error(err)
	s.Equal(auth.CodeInvalidCredential, auth.CodeOf(err))
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}
