package jwt_test

import (
	"testing"

	"github.com/jhoicas/printshop-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := jwt.Generate("s3cret", "user-1", "ana@shop.test", jwt.RoleStaff, "printshop-api", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@shop.test", claims.Email)
	assert.Equal(t, jwt.RoleStaff, claims.Role)

	_, err = jwt.Parse("other", tok)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	tok, err := jwt.Generate("s3cret", "user-1", "", jwt.RoleAdmin, "printshop-api", -1)
	require.NoError(t, err)
	_, err = jwt.Parse("s3cret", tok)
	assert.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := jwt.Generate("", "u", "", jwt.RoleAdmin, "", 1)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
	assert.False(t, jwt.CanWrite(jwt.RoleViewer))
	assert.True(t, jwt.CanWrite(jwt.RoleAdmin))
}
