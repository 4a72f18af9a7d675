package apikey

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/postgres"
)

func TestHashKey(t *testing.T) {
	h := HashKey("crawler-secret")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashKey("crawler-secret"))
	assert.NotEqual(t, h, HashKey("crawler-secret2"))
}

func TestGenerateRawKey(t *testing.T) {
	a, err := generateRawKey()
	require.NoError(t, err)
	b, err := generateRawKey()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, KeyInfo{}.Expired(now))
	assert.True(t, KeyInfo{ExpiresAt: &past}.Expired(now))
	assert.True(t, KeyInfo{ExpiresAt: &now}.Expired(now))
	assert.False(t, KeyInfo{ExpiresAt: &future}.Expired(now))
}

// TestManagerLifecycle runs against a real database when
// SP_TEST_POSTGRES_HOST is set.
func TestManagerLifecycle(t *testing.T) {
	host := os.Getenv("SP_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("SP_TEST_POSTGRES_HOST not set")
	}
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Postgres.Host = host

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Postgres)
	require.NoError(t, err)
	defer db.Close()

	m := NewManager(db)
	require.NoError(t, m.EnsureSchema(ctx))

	name := fmt.Sprintf("crawler-%d", time.Now().UnixNano())
	raw, err := m.CreateKey(ctx, name, 30, nil)
	require.NoError(t, err)

	info, err := m.Validate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, name, info.Name)
	assert.Equal(t, 30, info.RateLimit)

	_, err = m.Validate(ctx, raw+"x")
	assert.ErrorIs(t, err, ErrInvalidKey)

	expired := time.Now().Add(-time.Hour)
	old, err := m.CreateKey(ctx, name+"-old", 30, &expired)
	require.NoError(t, err)
	_, err = m.Validate(ctx, old)
	assert.ErrorIs(t, err, ErrExpiredKey)

	require.NoError(t, m.RevokeKey(ctx, raw))
	_, err = m.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.ErrorIs(t, m.RevokeKey(ctx, raw), ErrInvalidKey)
}
