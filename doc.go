// Package auth implements the authentication backend for a single page
// application: credential storage, bcrypt password verification, JWT
// issuance, and token revocation.
//
// Token lifecycle:
//   - TokenService mints signed, time-bound access tokens carrying a unique
//     token identifier (jti) alongside the subject and expiry claims.
//   - RevocationAwareValidator performs validation in two phases. The cheap
//     structural check (signature, expiry) always runs first; only tokens
//     that survive it reach the RevocationLedger lookup. Expired or
//     malformed tokens never touch the persistence layer.
//   - RevocationLedger is the durable set of revoked jti values. Revocation
//     is idempotent and entries are never pruned.
//
// Collaborators are passed in explicitly: repositories, the hasher, and the
// token service are constructor arguments rather than package state, so the
// HTTP layer composes them at startup.
package auth
