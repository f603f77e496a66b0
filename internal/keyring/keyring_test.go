package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitebit/pkg/core"
)

func testKeys() []*Key {
	return []*Key{
		{ID: "primary", Credentials: core.Credentials{APIKey: "aaaa1111bbbb2222", SecretKey: "secret-a"}},
		{ID: "backup", Credentials: core.Credentials{APIKey: "cccc3333dddd4444", SecretKey: "secret-b"}},
		{ID: "spare", Credentials: core.Credentials{APIKey: "eeee5555ffff6666", SecretKey: "secret-c"}},
	}
}

func TestNew_Empty(t *testing.T) {
	_, err := New(nil, RotateManually)
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestNew_IncompleteCredentials(t *testing.T) {
	keys := []*Key{{ID: "bad", Credentials: core.Credentials{APIKey: "only-key"}}}
	_, err := New(keys, RotateManually)
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestRing_CopiesInput(t *testing.T) {
	keys := testKeys()
	ring, err := New(keys, RotateManually)
	require.NoError(t, err)

	keys[0].Disabled = true
	assert.Equal(t, "primary", ring.Current().ID)
}

func TestRing_Rotate(t *testing.T) {
	ring, err := New(testKeys(), RotateManually)
	require.NoError(t, err)

	assert.Equal(t, "primary", ring.Current().ID)
	ring.Rotate()
	assert.Equal(t, "backup", ring.Current().ID)
	ring.Rotate()
	assert.Equal(t, "spare", ring.Current().ID)
	ring.Rotate()
	assert.Equal(t, "primary", ring.Current().ID)
}

func TestRing_OnErrorRotates(t *testing.T) {
	ring, err := New(testKeys(), RotateOnError)
	require.NoError(t, err)

	ring.OnError()
	assert.Equal(t, "backup", ring.Current().ID)

	keys := ring.Keys()
	assert.Equal(t, 1, keys[0].ErrorCount)
}

func TestRing_OnErrorManualStrategy(t *testing.T) {
	ring, err := New(testKeys(), RotateManually)
	require.NoError(t, err)

	ring.OnError()
	assert.Equal(t, "primary", ring.Current().ID)
	assert.Equal(t, 1, ring.Keys()[0].ErrorCount)
}

func TestRing_DisableSkipsKey(t *testing.T) {
	ring, err := New(testKeys(), RotateManually)
	require.NoError(t, err)

	ring.Disable("primary")
	assert.Equal(t, "backup", ring.Current().ID)

	ring.Enable("primary")
	assert.Equal(t, "primary", ring.Current().ID)
}

func TestRing_AllDisabled(t *testing.T) {
	ring, err := New(testKeys(), RotateManually)
	require.NoError(t, err)

	ring.Disable("primary")
	ring.Disable("backup")
	ring.Disable("spare")
	assert.Nil(t, ring.Current())
}

func TestRing_MarkUsed(t *testing.T) {
	ring, err := New(testKeys(), RotateManually)
	require.NoError(t, err)

	ring.MarkUsed()
	keys := ring.Keys()
	assert.False(t, keys[0].LastUsed.IsZero())
	assert.True(t, keys[1].LastUsed.IsZero())
}

func TestKey_StringMasksCredentials(t *testing.T) {
	key := &Key{ID: "primary", Credentials: core.Credentials{APIKey: "aaaa1111bbbb2222", SecretKey: "secret"}}
	s := key.String()
	assert.Contains(t, s, "aaaa****2222")
	assert.NotContains(t, s, "secret")
	assert.NotContains(t, s, "aaaa1111bbbb2222")
}
