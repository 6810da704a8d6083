// Package getter wraps hashicorp/go-getter for fetching remote blueprint overlays.
package getter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	getter "github.com/hashicorp/go-getter/v2"
)

// Getter fetches directories from git, HTTP archives, and local paths.
type Getter struct {
	client *getter.Client
	logger *slog.Logger
}

// New creates a Getter with symlinks disabled.
func New(logger *slog.Logger) *Getter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Getter{
		client: &getter.Client{
			DisableSymlinks: true,
		},
		logger: logger,
	}
}

// FetchOpts configures a fetch operation.
type FetchOpts struct {
	// Ref is appended as ?ref= for git sources.
	Ref string

	// Pwd is the working directory for relative path detection.
	Pwd string
}

// Fetch downloads a source directory to dest. src uses go-getter URL syntax,
// including // for subpath extraction.
func (g *Getter) Fetch(ctx context.Context, src, dest string, opts FetchOpts) error {
	fullSrc := WithRef(src, opts.Ref)
	g.logger.Debug("fetching source", "src", fullSrc, "dest", dest)

	req := &getter.Request{
		Src:             fullSrc,
		Dst:             dest,
		Pwd:             opts.Pwd,
		GetMode:         getter.ModeDir,
		DisableSymlinks: true,
	}

	if _, err := g.client.Get(ctx, req); err != nil {
		return fmt.Errorf("fetching %s: %w", src, err)
	}

	return nil
}

// WithRef appends ref as a query parameter, respecting an existing query.
func WithRef(src, ref string) string {
	if ref == "" {
		return src
	}

	sep := "?"
	if strings.Contains(src, "?") {
		sep = "&"
	}

	return src + sep + "ref=" + ref
}
