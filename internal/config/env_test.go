package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, ".env")
	second := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(first, []byte("CIRRUSRUN_TEST_A=from-env\nCIRRUSRUN_TEST_B=\"quoted value\"\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("CIRRUSRUN_TEST_A=from-local\nCIRRUSRUN_TEST_C=local\n"), 0o600))

	t.Setenv("CIRRUSRUN_TEST_C", "process")
	// Registered for restore, then removed so the files can set them.
	for _, k := range []string{"CIRRUSRUN_TEST_A", "CIRRUSRUN_TEST_B"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	loaded, err := LoadEnvFiles(first, second, filepath.Join(dir, "missing"))

	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, loaded)
	assert.Equal(t, "from-env", os.Getenv("CIRRUSRUN_TEST_A"))
	assert.Equal(t, "quoted value", os.Getenv("CIRRUSRUN_TEST_B"))
	assert.Equal(t, "process", os.Getenv("CIRRUSRUN_TEST_C"))
}

func TestLoadEnvFiles_NoneFound(t *testing.T) {
	loaded, err := LoadEnvFiles(filepath.Join(t.TempDir(), ".env"))

	require.NoError(t, err)
	assert.Empty(t, loaded)
}
