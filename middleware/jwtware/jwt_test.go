package jwtware_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loreste/go-spa-auth/middleware/jwtware"
)

// By default we set an expiration time 1 hour from now
func generateToken(t *testing.T, method jwt.SigningMethod, key []byte, claims jwt.MapClaims) string {
	t.Helper()

	if claims["exp"] == nil {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}

	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

type stubClaims struct {
	sub string
	jti string
	exp time.Time
}

func (c stubClaims) Subject() string     { return c.sub }
func (c stubClaims) UserID() string      { return c.sub }
func (c stubClaims) TokenID() string     { return c.jti }
func (c stubClaims) Expires() time.Time  { return c.exp }
func (c stubClaims) IssuedAt() time.Time { return c.exp.Add(-time.Hour) }

type stubValidator struct {
	claims jwtware.AuthClaims
	err    error
	seen   []string
}

func (v *stubValidator) Validate(_ context.Context, tokenString string) (jwtware.AuthClaims, error) {
	v.seen = append(v.seen, tokenString)
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

//--------------------------------------------------------------------------------------
// Tests
//--------------------------------------------------------------------------------------

func TestJWTWare_BasicHeaderExtraction(t *testing.T) {
	signingKey := []byte("test-secret")
	jwtAlg := jwt.SigningMethodHS256.Alg()

	validToken := generateToken(t, jwt.SigningMethodHS256, signingKey, jwt.MapClaims{
		"sub": "12345",
	})

	validator := &stubValidator{claims: stubClaims{sub: "12345", jti: "tok-1", exp: time.Now().Add(time.Hour)}}

	cfg := jwtware.Config{
		SigningKey: jwtware.SigningKey{
			Key:    signingKey,
			JWTAlg: jwtAlg,
		},
		TokenValidator: validator,
		SuccessHandler: func(ctx router.Context) error {
			return ctx.Next()
		},
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
		// it will look for Authorization: Bearer <token>
	}

	middleware := jwtware.New(cfg)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer " + validToken
	ctx.On("GetString", "Authorization", "").Return("Bearer " + validToken)
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", "user", mock.Anything).Return(nil)

	err := middleware(ctx)
	require.NoError(t, err)
	require.True(t, ctx.NextCalled)
	require.Equal(t, []string{validToken}, validator.seen)

	// Missing token never reaches the validator
	validator.seen = nil
	ctx = router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")
	err = middleware(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), jwtware.ErrJWTMissingOrMalformed.Error())
	require.Empty(t, validator.seen)
}

func TestJWTWare_ValidatorRejectionPropagates(t *testing.T) {
	rejected := errors.New("invalid or expired token")
	validator := &stubValidator{err: rejected}

	var handled error
	cfg := jwtware.Config{
		SigningKey: jwtware.SigningKey{
			Key:    []byte("test-secret"),
			JWTAlg: jwt.SigningMethodHS256.Alg(),
		},
		TokenValidator: validator,
		ErrorHandler: func(ctx router.Context, err error) error {
			handled = err
			return err
		},
	}

	middleware := jwtware.New(cfg)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer some.opaque.token"
	ctx.On("GetString", "Authorization", "").Return("Bearer some.opaque.token")
	ctx.On("Context").Return(context.Background())

	err := middleware(ctx)
	require.Error(t, err)
	require.ErrorIs(t, handled, rejected)
	require.False(t, ctx.NextCalled)
}

func TestJWTWare_ClaimsStoredUnderContextKey(t *testing.T) {
	claims := stubClaims{sub: "u-1", jti: "tok-9", exp: time.Now().Add(time.Hour)}
	validator := &stubValidator{claims: claims}

	cfg := jwtware.Config{
		SigningKey: jwtware.SigningKey{
			Key:    []byte("test-secret"),
			JWTAlg: jwt.SigningMethodHS256.Alg(),
		},
		ContextKey:     "session",
		TokenValidator: validator,
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	}

	middleware := jwtware.New(cfg)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer any.token.value"
	ctx.On("GetString", "Authorization", "").Return("Bearer any.token.value")
	ctx.On("Locals", "session", claims).Return(nil)

	err := middleware(ctx)
	require.NoError(t, err)
	ctx.AssertCalled(t, "Locals", "session", claims)
}

func TestGetExtractors(t *testing.T) {
	extractors := jwtware.GetExtractors("header:Authorization,cookie:jwt", "Bearer")
	require.Len(t, extractors, 2)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer abc.def.ghi")

	raw, err := jwtware.ExtractRawTokenFromContext(ctx, extractors)
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", raw)
}

func TestJWTWare_AuthSchemeMismatch(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{sub: "u-1"}}

	cfg := jwtware.Config{
		SigningKey: jwtware.SigningKey{
			Key:    []byte("test-secret"),
			JWTAlg: jwt.SigningMethodHS256.Alg(),
		},
		TokenValidator: validator,
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	}

	middleware := jwtware.New(cfg)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Basic dXNlcjpwYXNz"
	ctx.On("GetString", "Authorization", "").Return("Basic dXNlcjpwYXNz")

	err := middleware(ctx)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()))
	require.Empty(t, validator.seen)
}
