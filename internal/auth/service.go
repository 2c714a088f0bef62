// Package auth wraps the backend's authentication surface: email/password
// sign-in and registration, anonymous sign-in with a local offline-guest
// fallback, and JWT session tokens.
package auth

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskify/app/internal/models"
)

const tokenIssuer = "taskify-backend"

type Service interface {
	Login(db *gorm.DB, email, password string) (*models.User, error)
	Register(db *gorm.DB, email, password string) (*models.User, error)
	// LoginAnonymously signs in as an anonymous backend user, or falls back
	// to a locally generated offline-guest principal when anonymous sign-in
	// is administratively disabled.
	LoginAnonymously(db *gorm.DB) (*models.User, error)
	GenerateToken(db *gorm.DB, userID string) (access, refresh string, err error)
	VerifyToken(token string) (userID string, err error)
	RefreshToken(db *gorm.DB, refreshToken string) (access, refresh string, expiresIn int64, err error)
}

type ServiceConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BCryptCost      int
	AllowAnonymous  bool
}

type ServiceImpl struct {
	config ServiceConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewService(config ServiceConfig, log *zap.Logger) *ServiceImpl {
	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = time.Hour
	}
	if config.RefreshTokenTTL <= 0 {
		config.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if config.BCryptCost <= 0 {
		config.BCryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ServiceImpl{config: config, log: log, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

func (s *ServiceImpl) Login(db *gorm.DB, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, newError(CodeInvalidEmail)
	}

	var user models.User
	if err := db.Where("email = ? AND anonymous = ?", email, false).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, newError(CodeUserNotFound)
		}
		return nil, &Error{Code: CodeInvalidCredential, Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(CodeWrongPassword)
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := db.Save(&user).Error; err != nil {
		s.log.Warn("failed to record last login", zap.Error(err))
	}

	return &user, nil
}

func (s *ServiceImpl) Register(db *gorm.DB, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, newError(CodeInvalidEmail)
	}
	if len(password) < 6 {
		return nil, newError(CodeWeakPassword)
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, newError(CodeEmailInUse)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, &Error{Code: CodeInvalidCredential, Err: err}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BCryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := models.User{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Email:     email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *ServiceImpl) LoginAnonymously(db *gorm.DB) (*models.User, error) {
	if !s.config.AllowAnonymous {
		// Mirror the backend's refusal, then degrade to a purely local
		// session so the app remains usable without an account.
		s.log.Info("anonymous sign-in disabled, creating offline guest session",
			zap.String("code", CodeAdminRestricted))
		return &models.User{
			ID:           models.GuestIDPrefix + uuid.Must(uuid.NewV4()).String()[:13],
			Anonymous:    true,
			OfflineGuest: true,
			CreatedAt:    s.now(),
		}, nil
	}

	now := s.now()
	user := models.User{
		ID:          uuid.Must(uuid.NewV4()).String(),
		Anonymous:   true,
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *ServiceImpl) GenerateToken(db *gorm.DB, userID string) (string, string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iss":     tokenIssuer,
		"exp":     s.now().Add(s.config.AccessTokenTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshToken := uuid.Must(uuid.NewV4()).String()
	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()).String(),
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(s.config.RefreshTokenTTL),
		CreatedAt:    s.now(),
	}
	if err := db.Create(&token).Error; err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *ServiceImpl) VerifyToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", newError(CodeInvalidCredential)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", newError(CodeInvalidCredential)
	}

	if iss, ok := claims["iss"].(string); !ok || iss != tokenIssuer {
		return "", newError(CodeInvalidCredential)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", newError(CodeInvalidCredential)
	}

	return userID, nil
}

func (s *ServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error) {
	var token models.Token
	err := db.Where("refresh_token = ? AND expires_at > ?", refreshToken, s.now()).First(&token).Error
	if err != nil {
		return "", "", 0, newError(CodeInvalidCredential)
	}

	access, newRefresh, err := s.GenerateToken(db, token.UserID)
	if err != nil {
		return "", "", 0, err
	}

	db.Delete(&token)

	return access, newRefresh, int64(s.config.AccessTokenTTL.Seconds()), nil
}
