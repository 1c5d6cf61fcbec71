package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// RevokeTokenMessage carries the jti of a token being taken out of
// circulation. Revoking an already revoked jti is a no-op.
type RevokeTokenMessage struct {
	JTI    string `json:"jti"`
	UserID string `json:"user_id,omitempty"`
}

func (e RevokeTokenMessage) Type() string { return "auth.token.revoke" }

// RevokeTokenHandler writes a jti into the revocation ledger.
type RevokeTokenHandler struct {
	ledger RevocationLedger
	sink   ActivitySink
}

// NewRevokeTokenHandler wires the handler to the ledger.
func NewRevokeTokenHandler(ledger RevocationLedger) *RevokeTokenHandler {
	return &RevokeTokenHandler{ledger: ledger, sink: noopActivitySink{}}
}

// WithActivitySink configures an audit sink for revocation events.
func (h *RevokeTokenHandler) WithActivitySink(sink ActivitySink) *RevokeTokenHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *RevokeTokenHandler) Execute(ctx context.Context, event RevokeTokenMessage) error {
	if event.JTI == "" {
		return goerrors.New("missing token id", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := h.ledger.Revoke(ctx, event.JTI); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke token")
	}

	sink := normalizeActivitySink(h.sink)
	_ = sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventTokenRevoked,
		Actor:      ActorRef{ID: event.UserID, Type: "user"},
		UserID:     event.UserID,
		Metadata:   map[string]any{"jti": event.JTI},
		OccurredAt: time.Now(),
	})

	return nil
}
