// Package auth implements staff authentication for the validation API.
// A single configured credential pair (bcrypt-hashed) is exchanged for a
// signed JWT; subsequent API calls carry it as a bearer token.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the username or password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Authenticator issues and verifies bearer tokens for the configured
// staff account.
type Authenticator struct {
	secret       []byte
	tokenTTL     time.Duration
	user         string
	passwordHash string
	now          func() time.Time
}

// New creates an Authenticator. The password hash must be bcrypt.
func New(secret string, tokenTTL time.Duration, user, passwordHash string) *Authenticator {
	return &Authenticator{
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		user:         user,
		passwordHash: passwordHash,
		now:          time.Now,
	}
}

// Login verifies the credential pair and returns a signed token plus its
// expiry. Username comparison is constant-time.
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.user)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password))
	if !userOK || passErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := a.now().UTC()
	expiry := now.Add(a.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   a.user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiry, nil
}

// Verify checks a bearer token and returns the subject it was issued to.
func (a *Authenticator) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		},
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
