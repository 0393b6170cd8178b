// Package auth checks the configured login and issues signed session
// tokens.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "finsight"

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
)

// Claims are the token contents.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator validates a single configured user.
type Authenticator struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthenticator returns an authenticator for username whose password
// matches the bcrypt passwordHash. Tokens are signed with secret and
// expire after ttl.
func NewAuthenticator(username, passwordHash, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		username:     username,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

// HashPassword returns the bcrypt hash to put in AUTH_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("HashPassword: %w", err)
	}
	return string(h), nil
}

// Login checks the credentials and returns a signed token with its expiry.
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	// both checks always run
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.Issue(username)
}

// Issue signs a token for username.
func (a *Authenticator) Issue(username string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("Issue: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses a token and returns its claims.
func (a *Authenticator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
