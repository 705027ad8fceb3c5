package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portaria/internal/auth/models"
	dErrors "portaria/pkg/domain-errors"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("test-key", "portaria")
	operator := models.Operator{
		ID:    uuid.New(),
		Email: "carlos@portaria.local",
		Name:  "Carlos",
		Role:  models.RoleAdmin,
	}
	sessionID := uuid.New()

	token, err := svc.GenerateToken(operator, sessionID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, operator.ID.String(), claims.OperatorID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "Carlos", claims.Name)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "portaria", claims.Issuer)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("test-key", "portaria")
	token, err := svc.GenerateToken(models.Operator{ID: uuid.New()}, uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func TestValidateTokenWrongKey(t *testing.T) {
	token, err := NewJWTService("key-a", "portaria").
		GenerateToken(models.Operator{ID: uuid.New()}, uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("key-b", "portaria").ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateGarbageToken(t *testing.T) {
	svc := NewJWTService("test-key", "portaria")
	_, err := svc.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
