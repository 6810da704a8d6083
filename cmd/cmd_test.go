package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	got, err := parseOverrides([]string{"render=true", "render_domain=blog.example.com", "skylight=", "x=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"render":        "true",
		"render_domain": "blog.example.com",
		"skylight":      "",
		"x":             "a=b",
	}, got)

	for _, bad := range []string{"render", "=true"} {
		_, err := parseOverrides([]string{bad})
		require.Error(t, err, bad)
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{in: 512, want: "512 B"},
		{in: 2048, want: "2.0 KB"},
		{in: 5 * 1024 * 1024, want: "5.0 MB"},
		{in: 3 * 1024 * 1024 * 1024, want: "3.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}

func TestCommandsRegistered(t *testing.T) {
	t.Parallel()

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"new", "plan", "options", "info", "init", "doctor", "cache", "version"} {
		assert.Contains(t, names, want)
	}
}
