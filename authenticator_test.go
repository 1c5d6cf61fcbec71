package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/loreste/go-spa-auth"
)

func newTestAuthenticator(t *testing.T, users ...*auth.User) (*auth.Auther, *captureSink, *memoryLedger) {
	t.Helper()

	store := &staticUserStore{users: users}
	provider := auth.NewUserProvider(store).WithPasswordAuthenticator(fakeHasher{})

	sink := &captureSink{}
	ledger := newMemoryLedger()

	authenticator := auth.NewAuthenticator(provider, newTestConfig())
	authenticator.WithActivitySink(sink)
	authenticator.WithTokenValidator(
		auth.NewRevocationAwareValidator(authenticator.TokenService(), ledger, nil),
	)

	return authenticator, sink, ledger
}

func TestAuther_LoginMintsToken(t *testing.T) {
	user := newTestUser("user@example.com", "hashed:correct-password", true)
	authenticator, sink, _ := newTestAuthenticator(t, user)

	ctx := context.Background()
	result, err := authenticator.Login(ctx, "user@example.com", "correct-password")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID.String(), result.Identity.ID())
	assert.Equal(t, user.Email, result.Identity.Email())

	events := sink.byType(auth.ActivityEventLoginSuccess)
	require.Len(t, events, 1)
	assert.Equal(t, user.ID.String(), events[0].UserID)
}

func TestAuther_LoginFailureEmitsEvent(t *testing.T) {
	user := newTestUser("user@example.com", "hashed:correct-password", true)
	authenticator, sink, _ := newTestAuthenticator(t, user)

	_, err := authenticator.Login(context.Background(), "user@example.com", "wrong-password")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.Len(t, sink.byType(auth.ActivityEventLoginFailure), 1)
	assert.Empty(t, sink.byType(auth.ActivityEventLoginSuccess))
}

func TestAuther_SessionFromTokenRoundtrip(t *testing.T) {
	user := newTestUser("user@example.com", "hashed:correct-password", true)
	authenticator, _, _ := newTestAuthenticator(t, user)

	ctx := context.Background()
	result, err := authenticator.Login(ctx, "user@example.com", "correct-password")
	require.NoError(t, err)

	session, err := authenticator.SessionFromToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), session.GetUserID())
	assert.NotEmpty(t, session.GetTokenID())

	uid, err := session.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)

	identity, err := authenticator.IdentityFromSession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, user.Email, identity.Email())
}

func TestAuther_SessionFromTokenHonorsRevocation(t *testing.T) {
	user := newTestUser("user@example.com", "hashed:correct-password", true)
	authenticator, _, ledger := newTestAuthenticator(t, user)

	ctx := context.Background()
	result, err := authenticator.Login(ctx, "user@example.com", "correct-password")
	require.NoError(t, err)

	session, err := authenticator.SessionFromToken(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, ledger.Revoke(ctx, session.GetTokenID()))

	_, err = authenticator.SessionFromToken(ctx, result.Token)
	require.Error(t, err)
	assert.True(t, auth.IsRevokedError(err))
}
