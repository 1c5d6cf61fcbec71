package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RevokedTokens exposes the revocation ledger plus the generic repository
// surface for fixtures and admin tooling.
type RevokedTokens interface {
	repository.Repository[*RevokedToken]
	RevocationLedger

	RevokeTx(ctx context.Context, tx bun.IDB, jti string) error
	IsRevokedTx(ctx context.Context, tx bun.IDB, jti string) (bool, error)
}

type revokedTokens struct {
	repository.Repository[*RevokedToken]
	db *bun.DB
}

var (
	_ RevokedTokens    = (*revokedTokens)(nil)
	_ RevocationLedger = (*revokedTokens)(nil)
)

func NewRevokedTokensRepository(db *bun.DB) RevokedTokens {
	repo := repository.NewRepository[*RevokedToken](db, repository.ModelHandlers[*RevokedToken]{
		NewRecord: func() *RevokedToken { return &RevokedToken{} },
		GetID: func(r *RevokedToken) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *RevokedToken, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "jti"
		},
	})

	return &revokedTokens{
		Repository: repo,
		db:         db,
	}
}

// Revoke inserts the jti into the ledger. The conflict clause makes the
// write idempotent: a second revocation of the same jti is a no-op, and the
// unique column guarantees at most one row either way.
func (r *revokedTokens) Revoke(ctx context.Context, jti string) error {
	return r.RevokeTx(ctx, r.db, jti)
}

func (r *revokedTokens) RevokeTx(ctx context.Context, tx bun.IDB, jti string) error {
	if jti == "" {
		return errors.New("jti must not be empty", errors.CategoryBadInput)
	}

	record := &RevokedToken{
		ID:  uuid.New(),
		JTI: jti,
	}

	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (jti) DO NOTHING").
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist token revocation")
	}

	return nil
}

// IsRevoked reports ledger membership for the given jti.
func (r *revokedTokens) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.IsRevokedTx(ctx, r.db, jti)
}

func (r *revokedTokens) IsRevokedTx(ctx context.Context, tx bun.IDB, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	exists, err := tx.NewSelect().
		Model((*RevokedToken)(nil)).
		Where("?TableAlias.jti = ?", jti).
		Exists(ctx)

	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to query token revocation")
	}

	return exists, nil
}
