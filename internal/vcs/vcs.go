// Package vcs records checkpoints as git commits in the generated project.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Committer stages every change in the project and commits it. Commit
// returns false without error when there is nothing to commit.
type Committer interface {
	Commit(ctx context.Context, message string) (bool, error)
}

// Default commit author when the global config does not set one.
const (
	DefaultAuthorName  = "railsforge"
	DefaultAuthorEmail = "railsforge@localhost"
)

// Opts configures a Git committer.
type Opts struct {
	AuthorName  string
	AuthorEmail string
	// Now stamps commits. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Git commits to the repository whose worktree is a billy filesystem.
type Git struct {
	repo   *git.Repository
	author object.Signature
	now    func() time.Time
	logger *slog.Logger
}

// Open opens the repository rooted at worktree, initializing one when none
// exists. The .git directory is kept inside the worktree filesystem, which
// works the same for the project directory on disk and for memfs.
func Open(worktree billy.Filesystem, opts *Opts) (*Git, error) {
	if opts == nil {
		opts = &Opts{}
	}

	dotgit, err := worktree.Chroot(git.GitDirName)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", git.GitDirName, err)
	}

	storage := filesystem.NewStorage(dotgit, cache.NewObjectLRUDefault())

	repo, err := git.Open(storage, worktree)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.Init(storage, worktree)
	}

	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	g := &Git{
		repo: repo,
		author: object.Signature{
			Name:  orDefault(opts.AuthorName, DefaultAuthorName),
			Email: orDefault(opts.AuthorEmail, DefaultAuthorEmail),
		},
		now:    opts.Now,
		logger: opts.Logger,
	}

	if g.now == nil {
		g.now = time.Now
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g, nil
}

// Commit implements Committer.
func (g *Git) Commit(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading status: %w", err)
	}

	if status.IsClean() {
		g.logger.Debug("nothing to commit", "message", message)
		return false, nil
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("staging changes: %w", err)
	}

	sig := g.author
	sig.When = g.now()

	hash, err := wt.Commit(message, &git.CommitOptions{Author: &sig, Committer: &sig})
	if err != nil {
		return false, fmt.Errorf("committing %q: %w", message, err)
	}

	g.logger.Debug("committed checkpoint", "message", message, "hash", hash.String()[:8])

	return true, nil
}

// Recorder is a Committer that remembers messages instead of committing.
// It is used for --no-commit and dry runs.
type Recorder struct {
	Messages []string
}

// Commit implements Committer.
func (r *Recorder) Commit(_ context.Context, message string) (bool, error) {
	r.Messages = append(r.Messages, message)
	return true, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}

	return v
}
