package tree_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/railsforge/internal/tree"
)

func TestTree_WriteReadRemove(t *testing.T) {
	t.Parallel()

	tr := tree.NewMemory()

	require.NoError(t, tr.WriteFile("config/initializers/goldiloader.rb", []byte("x\n"), 0))
	assert.True(t, tr.Exists("config/initializers/goldiloader.rb"))
	assert.True(t, tr.IsDir("config/initializers"))
	assert.False(t, tr.IsDir("config/initializers/goldiloader.rb"))

	data, err := tr.ReadFile("config/initializers/goldiloader.rb")
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))

	require.NoError(t, tr.Remove("config/initializers/goldiloader.rb"))
	assert.False(t, tr.Exists("config/initializers/goldiloader.rb"))
	require.NoError(t, tr.Remove("config/initializers/goldiloader.rb"))
}

func TestTree_RemoveAll(t *testing.T) {
	t.Parallel()

	tr := tree.NewMemory()
	require.NoError(t, tr.WriteFile("db/cache_migrate/1_a.rb", []byte("a"), 0))
	require.NoError(t, tr.WriteFile("db/cache_migrate/2_b.rb", []byte("b"), 0))

	require.NoError(t, tr.RemoveAll("db/cache_migrate"))
	assert.False(t, tr.Exists("db/cache_migrate"))
	require.NoError(t, tr.RemoveAll("db/cache_migrate"))
}

func TestTree_GlobAndFiles(t *testing.T) {
	t.Parallel()

	tr := tree.NewMemory()
	for _, p := range []string{"db/cache_schema.rb", "db/queue_schema.rb", "db/seeds.rb", "db/migrate/1_x.rb"} {
		require.NoError(t, tr.WriteFile(p, []byte("x"), 0))
	}

	matches, err := tr.Glob("db/*_schema.rb")
	require.NoError(t, err)
	assert.Equal(t, []string{"db/cache_schema.rb", "db/queue_schema.rb"}, matches)

	files, err := tr.Files("db")
	require.NoError(t, err)
	assert.Equal(t, []string{"db/cache_schema.rb", "db/migrate/1_x.rb", "db/queue_schema.rb", "db/seeds.rb"}, files)
}

func TestTree_ChmodOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tr := tree.NewOS(dir)

	require.NoError(t, tr.WriteFile("bin/render-build.sh", []byte("#!/usr/bin/env bash\n"), 0o644))
	require.NoError(t, tr.Chmod("bin/render-build.sh", 0o755))

	info, err := os.Stat(filepath.Join(dir, "bin", "render-build.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.Equal(t, dir, tr.Root())
}

func TestCachedProbe(t *testing.T) {
	t.Parallel()

	tr := tree.NewMemory()
	require.NoError(t, tr.WriteFile("Procfile.dev", []byte("web: bin/rails server\n"), 0))

	probe := tree.NewCachedProbe(tr, 0)

	assert.True(t, probe.Exists("Procfile.dev"))
	assert.False(t, probe.Exists("Procfile"))
	assert.True(t, tree.Contains(probe, "Procfile.dev", "bin/rails server"))
	assert.False(t, tree.Contains(probe, "Procfile.dev", "solid_queue"))
	assert.False(t, tree.Contains(probe, "missing", ""))
	assert.Equal(t, 2, probe.Len())

	// reads are memoized while the tree is not modified
	content, ok := probe.Read("./Procfile.dev")
	assert.True(t, ok)
	assert.Equal(t, "web: bin/rails server\n", content)
	assert.Equal(t, 2, probe.Len())
}

func TestMapProbe(t *testing.T) {
	t.Parallel()

	probe := tree.MapProbe{"app/assets/stylesheets/application.bootstrap.scss": "@import 'bootstrap';"}

	assert.True(t, probe.Exists("app/assets/stylesheets/application.bootstrap.scss"))
	assert.True(t, probe.Exists("app/assets"))
	assert.False(t, probe.Exists("app/asset"))

	content, ok := probe.Read("app/assets/stylesheets/application.bootstrap.scss")
	assert.True(t, ok)
	assert.Contains(t, content, "bootstrap")
}
