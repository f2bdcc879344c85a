package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemorySessions()
	m.now = func() time.Time { return now }

	s := Session{UserID: 7, Username: "Asha", Email: "asha@svkmmumbai.onmicrosoft.com", Role: RoleStudent}
	require.NoError(t, m.Set(ctx, "sid", s, 24*time.Hour))

	got, err := m.Get(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s, *got)

	missing, err := m.Get(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)

	now = now.Add(24 * time.Hour)
	expired, err := m.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestMemorySessionsDestroy(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySessions()
	require.NoError(t, m.Set(ctx, "sid", Session{UserID: 1}, time.Hour))
	require.NoError(t, m.Destroy(ctx, "sid"))
	got, err := m.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, got)
}
