// Package auth issues and verifies the bearer tokens that identify a user.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the iss claim of every token.
	Issuer = "todo-api"

	DefaultTTL    = 7 * 24 * time.Hour
	DefaultLeeway = 60 * time.Second

	bearerPrefix = "Bearer "
)

var (
	// ErrMissingToken is returned when the Authorization header carries no bearer token.
	ErrMissingToken = errors.New("auth: missing bearer token")

	// ErrInvalidToken wraps every verification failure: bad signature, wrong
	// algorithm, expiry or a malformed subject.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// TokenService signs and verifies HS256 tokens with one shared secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService. Non-positive ttl and negative leeway
// fall back to the defaults.
func NewTokenService(secret string, ttl, leeway time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if leeway < 0 {
		leeway = DefaultLeeway
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, leeway: leeway, now: time.Now}
}

// Issue returns a signed token whose subject is userID.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token and returns the user id carried in its subject.
func (s *TokenService) Verify(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, claims.Subject)
	}
	return id, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(h http.Header) (string, error) {
	v := h.Get("Authorization")
	if !strings.HasPrefix(v, bearerPrefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(v[len(bearerPrefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Authenticate resolves the user id from the request headers.
func (s *TokenService) Authenticate(h http.Header) (int64, error) {
	token, err := BearerToken(h)
	if err != nil {
		return 0, err
	}
	return s.Verify(token)
}
