package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveUserIdentifier(t *testing.T) {
	t.Run("uuid resolves by id first", func(t *testing.T) {
		id := uuid.NewString()
		options := resolveUserIdentifier(id)
		assert.Len(t, options, 1)
		assert.Equal(t, "id", options[0].column)
		assert.Equal(t, id, options[0].value)
	})

	t.Run("email resolves by email", func(t *testing.T) {
		options := resolveUserIdentifier("user@example.com")
		assert.Len(t, options, 1)
		assert.Equal(t, "email", options[0].column)
	})

	t.Run("opaque strings fall back to email", func(t *testing.T) {
		options := resolveUserIdentifier("not an address")
		assert.Len(t, options, 1)
		assert.Equal(t, "email", options[0].column)
		assert.Equal(t, "not an address", options[0].value)
	})

	t.Run("blank input yields nothing", func(t *testing.T) {
		assert.Empty(t, resolveUserIdentifier("   "))
	})
}

func TestPrepareUserDefaults(t *testing.T) {
	record := &User{Email: "user@example.com"}
	prepareUserDefaults(record)
	assert.NotEqual(t, uuid.Nil, record.ID)

	pinned := uuid.New()
	existing := &User{ID: pinned}
	prepareUserDefaults(existing)
	assert.Equal(t, pinned, existing.ID)

	prepareUserDefaults(nil) // must not panic
}
