package auth_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	auth "github.com/loreste/go-spa-auth"
)

func TestTokenErrorsShareOpaqueMessage(t *testing.T) {
	// A caller holding a rejected token must not be able to tell expiry,
	// revocation, and malformation apart from the message alone.
	assert.Equal(t, auth.ErrTokenExpired.Message, auth.ErrTokenMalformed.Message)
	assert.Equal(t, auth.ErrTokenExpired.Message, auth.ErrTokenRevoked.Message)

	assert.Equal(t, goerrors.CodeUnauthorized, auth.ErrTokenExpired.Code)
	assert.Equal(t, goerrors.CodeUnauthorized, auth.ErrTokenMalformed.Code)
	assert.Equal(t, goerrors.CodeUnauthorized, auth.ErrTokenRevoked.Code)
}

func TestCredentialErrorIsUniform(t *testing.T) {
	assert.Equal(t, "invalid email or password", auth.ErrInvalidCredentials.Message)
	assert.Equal(t, goerrors.CodeUnauthorized, auth.ErrInvalidCredentials.Code)
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
	assert.False(t, auth.IsTokenExpiredError(auth.ErrTokenRevoked))
	assert.False(t, auth.IsTokenExpiredError(nil))

	assert.True(t, auth.IsMalformedError(auth.ErrTokenMalformed))
	assert.True(t, auth.IsMalformedError(errors.New("missing or malformed JWT")))
	assert.False(t, auth.IsMalformedError(auth.ErrTokenExpired))

	assert.True(t, auth.IsRevokedError(auth.ErrTokenRevoked))
	assert.False(t, auth.IsRevokedError(auth.ErrTokenExpired))
	assert.False(t, auth.IsRevokedError(nil))
}

func TestConflictAndNotFoundMapping(t *testing.T) {
	assert.Equal(t, goerrors.CodeConflict, auth.ErrEmailExists.Code)
	assert.Equal(t, goerrors.CodeNotFound, auth.ErrUserNotFound.Code)
	assert.True(t, goerrors.IsNotFound(auth.ErrUserNotFound))
}
