// TiCS: disabled // Test helpers.

package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// UpdateGoldenEnv is the environment variable which, when set, rewrites golden files from the test results.
const UpdateGoldenEnv = "TESTS_UPDATE_GOLDEN"

// GoldenPath returns the golden file path for the current test, under testdata/golden of the test package.
func GoldenPath(t *testing.T) string {
	t.Helper()

	return filepath.Join("testdata", "golden", filepath.FromSlash(t.Name()))
}

// LoadWithUpdateFromGoldenYAML loads the YAML golden file of the current test and decodes it as T.
//
// If UpdateGoldenEnv is set, got is first marshalled and written as the new golden file.
func LoadWithUpdateFromGoldenYAML[T any](t *testing.T, got T) T {
	t.Helper()

	p := GoldenPath(t)
	if update := os.Getenv(UpdateGoldenEnv); update != "" && !strings.EqualFold(update, "false") {
		data, err := yaml.Marshal(got)
		require.NoError(t, err, "Setup: could not marshal golden content")
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0750), "Setup: could not create golden directory")
		require.NoError(t, os.WriteFile(p, data, 0600), "Setup: could not write golden file")
	}

	data, err := os.ReadFile(p)
	require.NoError(t, err, "Could not read golden file %s", p)

	var want T
	require.NoError(t, yaml.Unmarshal(data, &want), "Could not decode golden file %s", p)
	return want
}
