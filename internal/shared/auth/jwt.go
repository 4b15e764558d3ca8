package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds. Access tokens omit the kind claim on the wire.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var (
	// ErrInvalidToken covers bad signature, malformed structure, and expiry.
	ErrInvalidToken = errors.New("invalid token")
	errEmptySecret  = errors.New("jwt secret is required")
)

// Claims is the signed claim set: subject email, expiry, and token kind.
type Claims struct {
	Kind string `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens. Configuration is immutable
// after construction.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService builds a token service from the configured secret and TTLs.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errEmptySecret
	}
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccess signs an access token for the subject with the default TTL.
func (s *TokenService) IssueAccess(subject string) (string, error) {
	return s.Issue(subject, KindAccess, s.accessTTL)
}

// IssueRefresh signs a refresh token for the subject with the refresh TTL.
func (s *TokenService) IssueRefresh(subject string) (string, error) {
	return s.Issue(subject, KindRefresh, s.refreshTTL)
}

// Issue signs a token with an explicit kind and TTL.
func (s *TokenService) Issue(subject, kind string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if kind != KindAccess {
		claims.Kind = kind
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
// It never panics and returns ErrInvalidToken for every failure class.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	if claims.Kind == "" {
		claims.Kind = KindAccess
	}
	return claims, nil
}
