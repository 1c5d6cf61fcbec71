package auth_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	auth "github.com/loreste/go-spa-auth"
)

type testIdentity struct {
	id    string
	email string
}

func (t testIdentity) ID() string    { return t.id }
func (t testIdentity) Email() string { return t.email }

type testConfig struct {
	signingKey      string
	signingMethod   string
	contextKey      string
	tokenExpiration int
	tokenLookup     string
	authScheme      string
	issuer          string
	audience        []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		signingMethod:   "HS256",
		contextKey:      "user",
		tokenExpiration: 2,
		tokenLookup:     "header:Authorization",
		authScheme:      "Bearer",
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
	}
}

func (c *testConfig) GetSigningKey() string    { return c.signingKey }
func (c *testConfig) GetSigningMethod() string { return c.signingMethod }
func (c *testConfig) GetContextKey() string    { return c.contextKey }
func (c *testConfig) GetTokenExpiration() int  { return c.tokenExpiration }
func (c *testConfig) GetTokenLookup() string   { return c.tokenLookup }
func (c *testConfig) GetAuthScheme() string    { return c.authScheme }
func (c *testConfig) GetIssuer() string        { return c.issuer }
func (c *testConfig) GetAudience() []string    { return c.audience }

// memoryLedger is an in-memory RevocationLedger that counts lookups so tests
// can assert whether the revocation phase ran at all.
type memoryLedger struct {
	mu       sync.Mutex
	revoked  map[string]int
	probes   int
	failWith error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{revoked: map[string]int{}}
}

func (l *memoryLedger) Revoke(_ context.Context, jti string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return l.failWith
	}
	l.revoked[jti]++
	return nil
}

func (l *memoryLedger) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.probes++
	if l.failWith != nil {
		return false, l.failWith
	}
	return l.revoked[jti] > 0, nil
}

func (l *memoryLedger) probeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.probes
}

func (l *memoryLedger) revocations(jti string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revoked[jti]
}

// staticUserStore serves a fixed set of users keyed by email and id.
type staticUserStore struct {
	users []*auth.User
	err   error
}

func (s *staticUserStore) GetByIdentifier(_ context.Context, identifier string) (*auth.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == identifier || u.ID.String() == identifier {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// fakeHasher sidesteps bcrypt so provider tests stay fast. A password
// matches when hash == "hashed:" + password.
type fakeHasher struct{}

func (fakeHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", auth.ErrNoEmptyString
	}
	return "hashed:" + password, nil
}

func (fakeHasher) ComparePasswordAndHash(password, hash string) error {
	if hash != "hashed:"+password {
		return auth.ErrMismatchedHashAndPassword
	}
	return nil
}

// captureSink records activity events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *captureSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) byType(t auth.ActivityEventType) []auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []auth.ActivityEvent
	for _, e := range s.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestUser(email, passwordHash string, active bool) *auth.User {
	return &auth.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     active,
	}
}
