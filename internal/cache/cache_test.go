package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionPayload struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func TestCache_FreshHitServedWithoutRefetch(t *testing.T) {
	t.Parallel()

	c := New(NewMemoryStore(), 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "session:u1", &sessionPayload{UserID: "u1", Role: "client"}))

	var got sessionPayload
	assert.True(t, c.GetFresh(ctx, "session:u1", &got))
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "client", got.Role)
}

func TestCache_StaleEntryForcesRefetch(t *testing.T) {
	t.Parallel()

	c := New(NewMemoryStore(), 5*time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	require.NoError(t, c.Put(ctx, "dashboard:u1", &sessionPayload{UserID: "u1"}))

	// 4m59s later: still inside the 5-minute window.
	c.now = func() time.Time { return base.Add(5*time.Minute - time.Second) }
	var got sessionPayload
	assert.True(t, c.GetFresh(ctx, "dashboard:u1", &got))

	// Exactly at 5 minutes the entry is stale and must trigger a re-fetch.
	c.now = func() time.Time { return base.Add(5 * time.Minute) }
	assert.False(t, c.GetFresh(ctx, "dashboard:u1", &got))
}

func TestCache_MissAndInvalidate(t *testing.T) {
	t.Parallel()

	c := New(NewMemoryStore(), 5*time.Minute)
	ctx := context.Background()

	var got sessionPayload
	assert.False(t, c.GetFresh(ctx, "absent", &got))

	require.NoError(t, c.Put(ctx, "session:u2", &sessionPayload{UserID: "u2"}))
	require.NoError(t, c.Invalidate(ctx, "session:u2"))
	assert.False(t, c.GetFresh(ctx, "session:u2", &got))
}
