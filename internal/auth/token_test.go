package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/robostack/teamhub/internal/model"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	TokenSecretKey = "test-secret"

	token, err := GenerateToken("u1", model.RoleMentor, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, model.RoleMentor, claims.Role)
}

func TestVerifyToken_Expired(t *testing.T) {
	TokenSecretKey = "test-secret"

	token, err := GenerateToken("u1", model.RoleStudent, -time.Minute)
	assert.NoError(t, err)

	_, err = VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	TokenSecretKey = "test-secret"
	token, err := GenerateToken("u1", model.RoleStudent, time.Hour)
	assert.NoError(t, err)

	TokenSecretKey = "another-secret"
	_, err = VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	TokenSecretKey = "test-secret"

	_, err := VerifyToken("not.a.token")
	assert.Error(t, err)
}
