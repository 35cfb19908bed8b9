package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"lanarena/models"

	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	db := openTestDB(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := db.Create(&models.AdminUser{Username: "admin", PasswordHash: string(hash)}).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return NewAuthService(db, testSecret, time.Hour)
}

func TestLogin(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  error
	}{
		{"valid", "admin", "correct horse", nil},
		{"wrong password", "admin", "battery staple", ErrInvalidCredentials},
		{"unknown user", "root", "correct horse", ErrInvalidCredentials},
		{"empty", "", "", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		session, err := svc.Login(ctx, tt.user, tt.password)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.wantErr)
		}
		if tt.wantErr != nil {
			if session != nil {
				t.Fatalf("%s: got a session on failure", tt.name)
			}
			continue
		}
		claims, err := svc.ParseToken(session.Token)
		if err != nil {
			t.Fatalf("%s: ParseToken: %v", tt.name, err)
		}
		if !claims.IsAdmin || claims.Username != "admin" || claims.Subject == "" {
			t.Fatalf("%s: claims = %+v", tt.name, claims)
		}
	}

	var admin models.AdminUser
	svc.db.First(&admin, "username = ?", "admin")
	if admin.LastLoginAt == nil {
		t.Fatal("last_login_at not recorded")
	}
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := newAuthFixture(t)
	session, err := svc.Issue(models.AdminUser{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ParseToken(session.Token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expired token err = %v", err)
	}

	other := NewAuthService(nil, "another-secret-another-secret-another", time.Hour)
	foreign, _ := other.Issue(models.AdminUser{ID: 1, Username: "admin"})
	svc.now = time.Now
	if _, err := svc.ParseToken(foreign.Token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("foreign token err = %v", err)
	}
	if _, err := svc.ParseToken(""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("empty token err = %v", err)
	}
}
