// Package tree provides the project tree that generation plans are applied to.
// A Tree is backed by a go-billy filesystem: the real project directory in
// normal runs, an in-memory filesystem in tests and dry runs.
package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Tree is a project directory addressed by slash-separated relative paths.
type Tree struct {
	fs   billy.Filesystem
	root string
}

// NewOS returns a Tree rooted at dir on the local disk.
func NewOS(dir string) *Tree {
	return &Tree{fs: osfs.New(dir), root: dir}
}

// NewMemory returns an empty in-memory Tree.
func NewMemory() *Tree {
	return &Tree{fs: memfs.New()}
}

// New wraps an existing billy filesystem. root is the on-disk directory behind
// it, or "" when there is none.
func New(fsys billy.Filesystem, root string) *Tree {
	return &Tree{fs: fsys, root: root}
}

// FS returns the underlying filesystem.
func (t *Tree) FS() billy.Filesystem {
	return t.fs
}

// Root returns the on-disk directory, or "" for in-memory trees.
func (t *Tree) Root() string {
	return t.root
}

// Exists reports whether path exists as a file or directory.
func (t *Tree) Exists(p string) bool {
	_, err := t.fs.Stat(clean(p))

	return err == nil
}

// IsDir reports whether path exists and is a directory.
func (t *Tree) IsDir(p string) bool {
	info, err := t.fs.Stat(clean(p))

	return err == nil && info.IsDir()
}

// ReadFile returns the contents of path.
func (t *Tree) ReadFile(p string) ([]byte, error) {
	data, err := util.ReadFile(t.fs, clean(p))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	return data, nil
}

// WriteFile writes data to path, creating parent directories as needed.
// A zero mode writes with 0o644.
func (t *Tree) WriteFile(p string, data []byte, mode fs.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}

	p = clean(p)

	if dir := path.Dir(p); dir != "." {
		if err := t.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", p, err)
		}
	}

	if err := util.WriteFile(t.fs, p, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}

	return nil
}

// Remove deletes a file. A missing file is not an error.
func (t *Tree) Remove(p string) error {
	if err := t.fs.Remove(clean(p)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p, err)
	}

	return nil
}

// RemoveAll deletes a directory and everything under it.
func (t *Tree) RemoveAll(p string) error {
	if err := util.RemoveAll(t.fs, clean(p)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p, err)
	}

	return nil
}

// Chmod changes the mode of path.
func (t *Tree) Chmod(p string, mode fs.FileMode) error {
	p = clean(p)

	if changer, ok := t.fs.(billy.Change); ok {
		if err := changer.Chmod(p, mode); err == nil {
			return nil
		}
	}

	if t.root != "" {
		if err := os.Chmod(filepath.Join(t.root, filepath.FromSlash(p)), mode); err != nil {
			return fmt.Errorf("chmod %s: %w", p, err)
		}

		return nil
	}

	data, err := t.ReadFile(p)
	if err != nil {
		return err
	}

	if err := t.fs.Remove(p); err != nil {
		return fmt.Errorf("chmod %s: %w", p, err)
	}

	return t.WriteFile(p, data, mode)
}

// Mode returns the permission bits of path.
func (t *Tree) Mode(p string) (fs.FileMode, error) {
	info, err := t.fs.Stat(clean(p))
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", p, err)
	}

	return info.Mode().Perm(), nil
}

// Glob returns the paths matching pattern in sorted order.
func (t *Tree) Glob(pattern string) ([]string, error) {
	matches, err := util.Glob(t.fs, clean(pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.ToSlash(m)
	}

	sort.Strings(out)

	return out, nil
}

// Files returns every regular file under dir, relative to the tree root.
func (t *Tree) Files(dir string) ([]string, error) {
	var files []string

	err := util.Walk(t.fs, clean(dir), func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			files = append(files, filepath.ToSlash(p))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	sort.Strings(files)

	return files, nil
}

func clean(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
