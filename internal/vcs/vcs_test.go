package vcs_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/railsforge/internal/vcs"
)

func fixedNow() time.Time {
	return time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)
}

// logMessages returns the commit messages on HEAD, newest first.
func logMessages(t *testing.T, worktree billy.Filesystem) []string {
	t.Helper()

	dotgit, err := worktree.Chroot(git.GitDirName)
	require.NoError(t, err)

	repo, err := git.Open(filesystem.NewStorage(dotgit, cache.NewObjectLRUDefault()), worktree)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	require.NoError(t, err)

	var messages []string

	require.NoError(t, iter.ForEach(func(c *object.Commit) error {
		messages = append(messages, c.Message)
		return nil
	}))

	return messages
}

func TestGit_CommitsOnlyWhenDirty(t *testing.T) {
	t.Parallel()

	fs := memfs.New()

	g, err := vcs.Open(fs, &vcs.Opts{Now: fixedNow})
	require.NoError(t, err)

	require.NoError(t, util.WriteFile(fs, "Gemfile", []byte("gem \"rails\"\n"), 0o644))

	committed, err := g.Commit(t.Context(), "Initial Rails app with custom template")
	require.NoError(t, err)
	assert.True(t, committed)

	committed, err = g.Commit(t.Context(), "Configure generators")
	require.NoError(t, err)
	assert.False(t, committed)

	require.NoError(t, util.WriteFile(fs, "config/skylight.yml", []byte("authentication: x\n"), 0o644))

	committed, err = g.Commit(t.Context(), "Configure Skylight for performance monitoring")
	require.NoError(t, err)
	assert.True(t, committed)

	assert.Equal(t, []string{
		"Configure Skylight for performance monitoring",
		"Initial Rails app with custom template",
	}, logMessages(t, fs))
}

func TestGit_ReopensExistingRepository(t *testing.T) {
	t.Parallel()

	fs := memfs.New()

	first, err := vcs.Open(fs, nil)
	require.NoError(t, err)

	require.NoError(t, util.WriteFile(fs, "README.md", []byte("# Blog\n"), 0o644))

	_, err = first.Commit(t.Context(), "Add project documentation files")
	require.NoError(t, err)

	second, err := vcs.Open(fs, nil)
	require.NoError(t, err)

	require.NoError(t, util.WriteFile(fs, "CONTRIBUTING.md", []byte("# Contributing\n"), 0o644))

	committed, err := second.Commit(t.Context(), "Add contributing guide")
	require.NoError(t, err)
	assert.True(t, committed)

	assert.Equal(t, []string{"Add contributing guide", "Add project documentation files"}, logMessages(t, fs))
}

func TestGit_CancelledContext(t *testing.T) {
	t.Parallel()

	g, err := vcs.Open(memfs.New(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = g.Commit(ctx, "never")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := &vcs.Recorder{}

	ok, err := r.Commit(t.Context(), "one")
	require.NoError(t, err)
	assert.True(t, ok)

	_, _ = r.Commit(t.Context(), "two")
	assert.Equal(t, []string{"one", "two"}, r.Messages)
}
