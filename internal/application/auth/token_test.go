package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndParseToken(t *testing.T) {
	cfg := TokenConfig{Secret: "s3cret", Issuer: "churchflow", TTL: time.Hour}
	userID, churchID := uuid.New(), uuid.New()

	tok, claims, err := MintToken(cfg, time.Now(), userID, churchID, "PASTOR")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), parsed.UserID)
	assert.Equal(t, churchID.String(), parsed.ChurchID)
	assert.Equal(t, "PASTOR", parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestParseToken_Expired(t *testing.T) {
	cfg := TokenConfig{Secret: "s3cret", Issuer: "churchflow", TTL: time.Minute}
	tok, _, err := MintToken(cfg, time.Now().Add(-time.Hour), uuid.New(), uuid.New(), "PASTOR")
	require.NoError(t, err)
	_, err = ParseToken(cfg, tok)
	assert.Error(t, err)
}

func TestParseToken_WrongIssuer(t *testing.T) {
	tok, _, err := MintToken(TokenConfig{Secret: "s3cret", Issuer: "someone-else", TTL: time.Hour}, time.Now(), uuid.New(), uuid.New(), "PASTOR")
	require.NoError(t, err)
	_, err = ParseToken(TokenConfig{Secret: "s3cret", Issuer: "churchflow", TTL: time.Hour}, tok)
	assert.Error(t, err)
}

func TestMintToken_RequiresSecret(t *testing.T) {
	_, _, err := MintToken(TokenConfig{TTL: time.Hour}, time.Now(), uuid.New(), uuid.New(), "PASTOR")
	assert.Error(t, err)
}
