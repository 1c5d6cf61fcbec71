package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(ctx context.Context, tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(ctx context.Context, tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(ctx context.Context, tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	return f(ctx, tokenString)
}

// RevocationAwareValidator layers the revocation ledger on top of a
// structural validator. The order is deliberate: signature and expiry are
// checked first, so expired or malformed tokens never reach the store.
type RevocationAwareValidator struct {
	structural TokenValidator
	ledger     RevocationLedger
	logger     Logger
}

// NewRevocationAwareValidator returns a validator that rejects tokens whose
// jti appears in the ledger.
func NewRevocationAwareValidator(structural TokenValidator, ledger RevocationLedger, logger Logger) *RevocationAwareValidator {
	if logger == nil {
		logger = defLogger{}
	}
	return &RevocationAwareValidator{
		structural: structural,
		ledger:     ledger,
		logger:     logger,
	}
}

// Validate satisfies the TokenValidator interface.
func (v *RevocationAwareValidator) Validate(ctx context.Context, tokenString string) (AuthClaims, error) {
	claims, err := v.structural.Validate(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	jti := claims.TokenID()
	if jti == "" {
		// A token minted by us always carries a jti; one without it cannot
		// be revoked and is treated as malformed.
		v.logger.Warn("token passed structural validation without a jti", "subject", claims.Subject())
		return nil, ErrTokenMalformed
	}

	revoked, err := v.ledger.IsRevoked(ctx, jti)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "revocation lookup failed")
	}

	if revoked {
		v.logger.Info("rejected revoked token", "jti", jti)
		return nil, ErrTokenRevoked
	}

	return claims, nil
}
