package conf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOverridesDefaults(t *testing.T) {
	c := defaultConfig
	_, err := toml.NewDecoder(strings.NewReader(`
[proto]
port = 4000

[room]
max = 5
prune-age = 60
`)).Decode(&c)
	require.NoError(t, err)

	assert.Equal(t, uint(4000), c.Proto.Port)
	assert.Equal(t, uint(5), c.Room.Max)
	assert.Equal(t, uint(60), c.Room.PruneAge)
	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0", c.Proto.Host)
	assert.Equal(t, uint(180), c.Room.PruneInterval)
}

func TestDumpRoundTrip(t *testing.T) {
	c := defaultConfig
	c.Proto.Port = 1234
	c.Web.Enabled = true

	var buf bytes.Buffer
	require.NoError(t, c.Dump(&buf))

	var back Conf
	_, err := toml.NewDecoder(&buf).Decode(&back)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
