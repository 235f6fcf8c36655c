package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testSecret      = "test-secret-key-for-jwt-testing"
	testWrongSecret = "wrong-secret-key-for-jwt-testing"
)

func TestGenerateAccessToken_Success(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	token, err := GenerateAccessToken(userID, testSecret)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Contains(t, token, ".", "JWT token should contain dots")
}

func TestValidateToken_RoundTrip(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	token, err := GenerateAccessToken(userID, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID, "Token should carry the user id")
}

func TestValidateToken_RefreshRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	token, err := GenerateRefreshToken(userID, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestValidateToken_Expired(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	token, err := generateToken(userID, testSecret, -1*time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken, "Expired token must be distinguishable from invalid")
}

func TestValidateToken_WrongSecret(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	token, err := GenerateAccessToken(userID, testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, testWrongSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ValidateToken(token, testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenTTLs(t *testing.T) {
	// The refresh token must outlive the access token.
	assert.Equal(t, 15*time.Minute, AccessTokenTTL)
	assert.Equal(t, 20*time.Minute, RefreshTokenTTL)
	assert.Greater(t, RefreshTokenTTL, AccessTokenTTL)
}
