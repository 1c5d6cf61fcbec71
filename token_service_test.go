package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/loreste/go-spa-auth"
)

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := auth.NewTokenService([]byte("secret"), 2, "test-issuer", []string{"test-audience"}, nil)
	identity := testIdentity{id: "11111111-2222-3333-4444-555555555555", email: "user@example.com"}

	token, err := svc.Generate(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, identity.ID(), claims.Subject())
	assert.Equal(t, identity.ID(), claims.UserID())
	assert.NotEmpty(t, claims.TokenID(), "minted tokens must carry a jti")

	// Expiry lands two hours out, within scheduling slack.
	expectedExpiry := time.Now().Add(2 * time.Hour)
	assert.WithinDuration(t, expectedExpiry, claims.Expires(), time.Minute)
}

func TestTokenService_FreshTokenIDPerToken(t *testing.T) {
	svc := auth.NewTokenService([]byte("secret"), 2, "test-issuer", nil, nil)
	identity := testIdentity{id: "user-1"}

	first, err := svc.Generate(identity)
	require.NoError(t, err)
	second, err := svc.Generate(identity)
	require.NoError(t, err)

	ctx := context.Background()
	firstClaims, err := svc.Validate(ctx, first)
	require.NoError(t, err)
	secondClaims, err := svc.Validate(ctx, second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.TokenID(), secondClaims.TokenID())
}

func TestTokenService_RejectsWrongKey(t *testing.T) {
	minter := auth.NewTokenService([]byte("secret-a"), 2, "test-issuer", nil, nil)
	verifier := auth.NewTokenService([]byte("secret-b"), 2, "test-issuer", nil, nil)

	token, err := minter.Generate(testIdentity{id: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Validate(context.Background(), token)
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
	assert.False(t, auth.IsTokenExpiredError(err))
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := auth.NewTokenService([]byte("secret"), 2, "test-issuer", nil, nil)

	token, _, err := auth.MintToken(svc, testIdentity{id: "user-1"}, auth.TokenOptions{
		IssuedAt: time.Now().Add(-3 * time.Hour),
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), token)
	require.Error(t, err)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := auth.NewTokenService([]byte("secret"), 2, "test-issuer", nil, nil)

	_, err := svc.Validate(context.Background(), "not.a.token")
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	minter := auth.NewTokenService([]byte("secret"), 2, "other-issuer", nil, nil)
	verifier := auth.NewTokenService([]byte("secret"), 2, "test-issuer", nil, nil)

	token, err := minter.Generate(testIdentity{id: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Validate(context.Background(), token)
	require.Error(t, err)
}

func TestMintToken_PinsTokenID(t *testing.T) {
	svc := auth.NewTokenService([]byte("secret"), 2, "test-issuer", nil, nil)

	token, expiresAt, err := auth.MintToken(svc, testIdentity{id: "user-1"}, auth.TokenOptions{
		TokenID: "pinned-jti",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "pinned-jti", claims.TokenID())
}
