package credential

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, key, secret string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(key, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return token.Claims.(jwt.MapClaims)
}

func TestIssue_UniqueAndSigned(t *testing.T) {
	iss := NewIssuer("test-secret")

	a, err := iss.Issue("almaz")
	require.NoError(t, err)
	b, err := iss.Issue("almaz")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	claims := parse(t, a, "test-secret")
	assert.Equal(t, "almaz", claims["name"])
	assert.NotEmpty(t, claims["jti"])
}
