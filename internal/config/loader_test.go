package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/railsforge/internal/config"
)

func TestLoadSelections(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "railsforge.yaml")
	content := `
options:
  simplecov: false
  error_monitoring: none
  render: yes_please
  render_domain:
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sel, err := config.LoadSelections(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"simplecov":        "false",
		"error_monitoring": "none",
		"render":           "yes_please",
		"render_domain":    "",
	}, sel)
}

func TestLoadSelections_Missing(t *testing.T) {
	t.Parallel()

	_, err := config.LoadSelections(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading selections file")
}

func TestParseSelections_RejectsNested(t *testing.T) {
	t.Parallel()

	_, err := config.ParseSelections([]byte("options:\n  render:\n    enabled: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a scalar")
}

func TestParseSelections_Empty(t *testing.T) {
	t.Parallel()

	sel, err := config.ParseSelections([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, sel)
}

func TestMergeSelections(t *testing.T) {
	t.Parallel()

	merged := config.MergeSelections(
		map[string]string{"webmock": "true", "faker": "false"},
		nil,
		map[string]string{"webmock": "false"},
	)

	assert.Equal(t, map[string]string{"webmock": "false", "faker": "false"}, merged)
}
