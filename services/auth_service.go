// services/auth_service.go - Admin login and session tokens
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lanarena/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionClaims is the payload of an admin session token.
type SessionClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Session is what a successful login hands back.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{db: db, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Login checks the credentials against admin_users. Every mismatch is
// reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var admin models.AdminUser
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.Issue(admin)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&admin).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return session, nil
}

// Issue signs a session token for admin.
func (s *AuthService) Issue(admin models.AdminUser) (*Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := SessionClaims{
		Username: admin.Username,
		IsAdmin:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(admin.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{Token: token, Username: admin.Username, ExpiresAt: expires.UTC()}, nil
}

// ParseToken validates signature and expiry. It does not check IsAdmin;
// callers decide between 401 and 403.
func (s *AuthService) ParseToken(raw string) (*SessionClaims, error) {
	if raw == "" {
		return nil, ErrInvalidSession
	}
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
