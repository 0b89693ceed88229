// Package auth is the session/identity gate: it issues and verifies the
// bearer credential carried in the "token" cookie and exposes the gin
// middleware that gates every authenticated route.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devtinder/api/internal/config"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrExpiredToken = errors.New("auth: token has expired")
)

const issuer = "devtinder"

// TokenService creates and validates session tokens. One TTL covers both the
// token's expiry claim and the cookie lifetime, so the two can never drift.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// NewTokenService builds a TokenService from config.
func NewTokenService(cfg *config.Config) *TokenService {
	parser := jwt.NewParser(
		// only accept HS256 - prevents algorithm confusion attacks
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithIssuer(issuer),
	)
	return &TokenService{
		secret: []byte(cfg.Auth.Secret),
		ttl:    cfg.Auth.TokenTTL,
		parser: parser,
	}
}

// TTL returns the session lifetime, shared by token claim and cookie.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue creates a signed session token for the given user.
func (s *TokenService) Issue(userID uint64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates a session token and returns the user id it was issued for.
func (s *TokenService) Parse(tokenString string) (uint64, error) {
	var claims jwt.RegisteredClaims
	token, err := s.parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
