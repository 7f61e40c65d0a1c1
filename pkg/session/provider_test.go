package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evalforge/notifykit/pkg/session"
)

func TestStatic(t *testing.T) {
	t.Parallel()

	tok, ok := session.Static("tok-123").Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "tok-123", tok)

	tok, ok = session.Static("").Token(context.Background())
	assert.False(t, ok)
	assert.Empty(t, tok)
}

func TestFunc(t *testing.T) {
	t.Parallel()

	calls := 0
	provider := session.Func(func(_ context.Context) (string, bool) {
		calls++
		return "rotating", true
	})

	tok, ok := provider.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "rotating", tok)
	assert.Equal(t, 1, calls)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TEST_SESSION_TOKEN", "env-token")

	provider := session.FromEnv("TEST_SESSION_TOKEN")

	tok, ok := provider.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "env-token", tok)

	t.Setenv("TEST_SESSION_TOKEN", "")
	_, ok = provider.Token(context.Background())
	assert.False(t, ok)
}
