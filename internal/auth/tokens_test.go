package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtinder/api/internal/auth"
	"github.com/devtinder/api/internal/config"
)

func testConfig(ttl time.Duration) *config.Config {
	cfg := config.New()
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.TokenTTL = ttl
	return cfg
}

func TestIssueAndParse(t *testing.T) {
	tokens := auth.NewTokenService(testConfig(time.Hour))

	token, err := tokens.Issue(42)
	require.NoError(t, err)

	userID, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
}

func TestParseRejectsGarbage(t *testing.T) {
	tokens := auth.NewTokenService(testConfig(time.Hour))

	_, err := tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenService(testConfig(time.Hour))
	verifier := auth.NewTokenService(func() *config.Config {
		cfg := testConfig(time.Hour)
		cfg.Auth.Secret = "other-secret"
		return cfg
	}())

	token, err := issuer.Issue(1)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tokens := auth.NewTokenService(testConfig(-time.Minute))

	token, err := tokens.Issue(1)
	require.NoError(t, err)

	_, err = tokens.Parse(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}
