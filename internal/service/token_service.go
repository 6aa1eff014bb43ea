package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

const defaultAPITokenTTL = 30 * 24 * time.Hour

// APITokenService issues and validates the bearer tokens guarding the local API.
// An empty secret disables the guard.
type APITokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewAPITokenService constructs the token service.
func NewAPITokenService(secret, issuer string) *APITokenService {
	if issuer == "" {
		issuer = "bilishelf"
	}
	return &APITokenService{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Enabled reports whether requests must carry a token.
func (s *APITokenService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue signs a token for subject valid for ttl.
func (s *APITokenService) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "API token secret not configured")
	}
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "token subject required")
	}
	if ttl <= 0 {
		ttl = defaultAPITokenTTL
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, appErrors.Internal(err, "failed to sign API token")
	}
	return signed, expiresAt, nil
}

// Validate parses tokenString and returns its claims.
func (s *APITokenService) Validate(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
