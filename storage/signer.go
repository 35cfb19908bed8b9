package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer issues and checks tokens that grant temporary read access to one object.
type Signer struct {
	secret   []byte
	basePath string
	now      func() time.Time
}

// NewSigner returns a signer whose URLs live under basePath (for example "/files").
func NewSigner(secret, basePath string) *Signer {
	return &Signer{secret: []byte(secret), basePath: strings.TrimRight(basePath, "/"), now: time.Now}
}

type objectClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// SignedURL returns a relative URL for key valid for ttl, and its expiry.
func (s *Signer) SignedURL(key string, ttl time.Duration) (string, time.Time, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", time.Time{}, err
	}
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := objectClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign object url: %w", err)
	}

	u := s.basePath + "/" + (&url.URL{Path: key}).EscapedPath() + "?token=" + url.QueryEscape(token)
	return u, expiresAt, nil
}

// Verify checks that token grants access to key right now.
func (s *Signer) Verify(key, token string) error {
	claims := &objectClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return ErrInvalidLink
	}
	if claims.Key != key {
		return ErrInvalidLink
	}
	return nil
}
