//go:build sws

package spaceweather

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real SWS API and require a valid SWS_API_KEY env var.
// Run with: go test -tags=sws . -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("SWS_API_KEY")
	if key == "" {
		t.Fatal("SWS_API_KEY must be set to run smoke tests")
	}
	c, err := New(context.Background(), key)
	require.NoError(t, err)
	return c
}

func TestSmoke_RejectsBogusKey(t *testing.T) {
	_, err := New(context.Background(), "not-a-real-key")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCredential), "got %v", err)
}

func TestSmoke_KIndex(t *testing.T) {
	c := smokeClient(t)

	got, err := c.GetKIndex(context.Background(), c.Since(24*time.Hour), "Hobart")
	require.NoError(t, err)

	for _, k := range got {
		assert.GreaterOrEqual(t, k.Index, 0)
		assert.LessOrEqual(t, k.Index, 9)
		assert.True(t, k.ValidTime.Present())
	}
}

func TestSmoke_AAndDstIndex(t *testing.T) {
	c := smokeClient(t)
	ctx := context.Background()

	a, err := c.GetAIndex(ctx, c.Since(72*time.Hour))
	require.NoError(t, err)
	for _, r := range a {
		assert.GreaterOrEqual(t, r.Index, 0)
	}

	_, err = c.GetDstIndex(ctx, c.Since(24*time.Hour))
	require.NoError(t, err)
}

// Bulletins are usually absent; these only check the calls decode cleanly.
func TestSmoke_Bulletins(t *testing.T) {
	c := smokeClient(t)
	ctx := context.Background()

	_, err := c.GetAuroraOutlook(ctx)
	require.NoError(t, err)
	_, err = c.GetAuroraWatch(ctx)
	require.NoError(t, err)
	_, err = c.GetAuroraAlert(ctx)
	require.NoError(t, err)
	_, err = c.GetMagAlert(ctx)
	require.NoError(t, err)
	_, err = c.GetMagWarning(ctx)
	require.NoError(t, err)
}
