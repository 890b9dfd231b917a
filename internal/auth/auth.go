// Package auth handles password hashing and session tokens.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"cost-optimizer/internal/common/config"
	stderrors "cost-optimizer/internal/common/errors"
)

// Manager issues and verifies session tokens and password hashes.
type Manager struct {
	secret     []byte
	tokenTTL   time.Duration
	cookieName string
}

func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{
		secret:     []byte(cfg.SecretKey),
		tokenTTL:   time.Duration(cfg.TokenTTLHours) * time.Hour,
		cookieName: cfg.CookieName,
	}
}

// CookieName returns the session cookie name.
func (m *Manager) CookieName() string { return m.cookieName }

// TokenTTL returns the configured session lifetime.
func (m *Manager) TokenTTL() time.Duration { return m.tokenTTL }

// HashPassword hashes a plaintext password with bcrypt.
func (m *Manager) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks a plaintext password against a bcrypt hash.
func (m *Manager) VerifyPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// CreateToken issues an HS256 token with the user ID as subject.
func (m *Manager) CreateToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies a token and returns the user ID it carries.
func (m *Manager) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
	if err != nil {
		return "", stderrors.NewInvalidTokenError(err.Error())
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", stderrors.NewInvalidTokenError("missing subject claim")
	}
	return claims.Subject, nil
}
