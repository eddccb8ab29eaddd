package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr := miniredis.RunT(t)

	client, err := NewClient("redis://"+mr.Addr(), "", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{
			name:        "Reachable Redis",
			url:         "redis://" + mr.Addr(),
			expectError: false,
		},
		{
			name:        "Invalid scheme",
			url:         "invalid://url",
			expectError: true,
		},
		{
			name:        "Empty URL",
			url:         "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "prod", nil)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				require.NoError(t, err)
				require.NotNil(t, client)
				assert.Equal(t, "prod", client.KeyBuilder.GetPrefix())
				assert.NoError(t, client.Close())
			}
		})
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewClient("redis://"+addr, "", nil)
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_Get(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("visitor:abc", `{"ip":"1.2.3.4"}`)

	val, err := client.Get(ctx, "visitor:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"ip":"1.2.3.4"}`, val)

	_, err = client.Get(ctx, "visitor:missing")
	assert.True(t, errors.Is(err, ErrNil))
}

func TestClient_Set(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value interface{}
		ttl   time.Duration
	}{
		{"string value", "test:key1", "value1", time.Minute},
		{"integer value", "test:key2", 42, time.Hour},
		{"no expiration", "totalVisits", "7", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, client.Set(ctx, tt.key, tt.value, tt.ttl))

			val, err := mr.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprint(tt.value), val)

			if tt.ttl > 0 {
				assert.Greater(t, mr.TTL(tt.key), time.Duration(0))
			} else {
				assert.Equal(t, time.Duration(0), mr.TTL(tt.key))
			}
		})
	}
}

func TestClient_Incr(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	v, err := client.Incr(ctx, "totalVisits")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	// Counters written as decimal strings by other writers keep working.
	mr.Set("totalVisitors", "41")
	v, err = client.Incr(ctx, "totalVisitors")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	mr.Set("broken", "not-a-number")
	_, err = client.Incr(ctx, "broken")
	assert.Error(t, err)
}

func TestClient_ScanKeys(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 450; i++ {
		mr.Set(fmt.Sprintf("visitor:%04d", i), "{}")
	}
	mr.Set("totalVisits", "450")
	mr.Set("other:visitor:1", "{}")

	keys, err := client.ScanKeys(ctx, client.KeyBuilder.MatchPrefix("visitor:"))
	require.NoError(t, err)
	assert.Len(t, keys, 450)

	sort.Strings(keys)
	assert.Equal(t, "visitor:0000", keys[0])
	assert.Equal(t, "visitor:0449", keys[len(keys)-1])
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)

	assert.NoError(t, client.Health(context.Background()))

	mr.SetError("server down")
	assert.Error(t, client.Health(context.Background()))
}

func TestPrefixForLog(t *testing.T) {
	assert.Equal(t, "totalVisits", prefixForLog("totalVisits"))
	assert.Equal(t, "visitor:0123456789abcdef…", prefixForLog("visitor:0123456789abcdef0123"))
}
