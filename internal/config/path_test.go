package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MIMIR_TEST_DIR", "/srv/mimir")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/vectors", filepath.Join(home, "vectors")},
		{"$MIMIR_TEST_DIR/vectors/", "/srv/mimir/vectors"},
		{"/abs/./path", "/abs/path"},
	}

	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestServerTimeouts(t *testing.T) {
	timeouts, err := ServerConfig{ReadTimeout: "5s"}.Timeouts()
	require.NoError(t, err)
	assert.Equal(t, "5s", timeouts.Read.String())
	assert.Equal(t, "3m0s", timeouts.Write.String())

	_, err = ServerConfig{IdleTimeout: "soon"}.Timeouts()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.idle_timeout")
}
