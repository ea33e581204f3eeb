package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
	"git.home.luguber.info/inful/cirrusrun/internal/testutil"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	return testutil.NewFiles(t).Write(name, body)
}

func mapLookup(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestLoadCIConfig_Plain(t *testing.T) {
	body := "task:\n  container:\n    image: alpine\n  script: echo $HOME\n"
	path := writeFile(t, ".cirrus.yml", body)

	got, err := LoadCIConfig(path)

	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestLoadCIConfig_RendersEnv(t *testing.T) {
	path := writeFile(t, "ci.yml", "task:\n  name: {{ env \"JOB\" }}\n  only_if: {{ envOr \"COND\" \"true\" }}\n")

	got, err := LoadCIConfig(path, WithLookup(mapLookup(map[string]string{"JOB": "smoke"})))

	require.NoError(t, err)
	assert.Equal(t, "task:\n  name: smoke\n  only_if: true\n", got)
}

func TestLoadCIConfig_MissingVariable(t *testing.T) {
	path := writeFile(t, "ci.yml", "task:\n  name: {{ env \"JOB\" }}\n")

	_, err := LoadCIConfig(path, WithLookup(mapLookup(nil)))

	require.Error(t, err)
	assert.True(t, cierrors.IsCategory(err, cierrors.CategoryConfig))
	assert.Contains(t, err.Error(), "JOB is not set")
}

func TestLoadCIConfig_WithoutTemplate(t *testing.T) {
	body := "task:\n  script: echo '{{ not a template'\n"
	path := writeFile(t, "ci.yml", body)

	got, err := LoadCIConfig(path, WithoutTemplate())

	require.NoError(t, err)
	assert.Equal(t, body, got)

	_, err = LoadCIConfig(path)
	require.Error(t, err)
}

func TestLoadCIConfig_NotFound(t *testing.T) {
	_, err := LoadCIConfig(filepath.Join(t.TempDir(), "missing.yml"))

	require.Error(t, err)
	ci, ok := cierrors.AsCIError(err)
	require.True(t, ok)
	assert.Equal(t, cierrors.CategoryConfig, ci.Category)
	assert.Equal(t, "configuration file not found", ci.Message)
}

func TestValidateCIConfig(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"mapping", "task:\n  script: true\n", ""},
		{"empty", "", "config is empty"},
		{"sequence", "- a\n- b\n", "must be a mapping, got sequence"},
		{"scalar", "hello\n", "must be a mapping, got scalar"},
		{"broken", "task: [\n", "invalid YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCIConfig(tt.body)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
