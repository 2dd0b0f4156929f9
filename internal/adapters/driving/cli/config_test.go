package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitCmd_WritesDefaultFile(t *testing.T) {
	dir := t.TempDir()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "init", "--config-dir", dir})
	defer func() {
		rootCmd.SetArgs(nil)
		flagConfigDir = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Config at")

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "api.gigaio.com")
}

func TestConfigShowCmd_PrintsEffectiveConfig(t *testing.T) {
	cleanup := setupTestServices(nil, nil)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Poll interval:")
	assert.Contains(t, out, "15s")
	assert.Contains(t, out, "fabrexfleet")
	assert.Contains(t, out, "supernodes")
}
