package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[profiles.orders]
durable = true
priority = 6
ttl = "30s"

[profiles.audit]
ttl_ms = 0
first_acquirer = true

[profiles.plain]
`

func TestParse(t *testing.T) {
	set, err := Parse(sample)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit", "orders", "plain"}, set.Names())

	orders, err := set.Header("orders")
	require.NoError(t, err)
	assert.True(t, orders.Durable)
	assert.Equal(t, uint8(6), orders.Priority)
	ttl, ok := orders.TTL()
	require.True(t, ok)
	assert.Equal(t, uint64(30000), ttl)

	audit, err := set.Header("audit")
	require.NoError(t, err)
	assert.Equal(t, uint8(4), audit.Priority)
	assert.True(t, audit.FirstAcquirer)
	ttl, ok = audit.TTL()
	assert.True(t, ok, "an explicit zero TTL is present")
	assert.Zero(t, ttl)

	plain, err := set.Header("plain")
	require.NoError(t, err)
	_, ok = plain.TTL()
	assert.False(t, ok)
	assert.Equal(t, uint8(4), plain.Priority)
}

func TestHeaderReturnsCopy(t *testing.T) {
	set, err := Parse(sample)
	require.NoError(t, err)

	first, _ := set.Header("orders")
	first.Priority = 1
	second, _ := set.Header("orders")
	assert.Equal(t, uint8(6), second.Priority)
}

func TestUnknownProfile(t *testing.T) {
	set, err := Parse(sample)
	require.NoError(t, err)

	_, err = set.Header("missing")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"priority range", "[profiles.x]\npriority = 300\n"},
		{"negative count", "[profiles.x]\ndelivery_count = -1\n"},
		{"both ttls", "[profiles.x]\nttl = \"1s\"\nttl_ms = 1000\n"},
		{"bad duration", "[profiles.x]\nttl = \"soon\"\n"},
		{"unknown key", "[profiles.x]\nexpires = 3\n"},
		{"not toml", "[profiles.x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, set.Names(), 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
