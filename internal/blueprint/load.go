package blueprint

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/donaldgifford/railsforge/internal/getter"
)

// FetchError reports that a remote overlay could not be fetched. It is never
// fatal: the bundled files are used instead.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching template overlay %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher downloads a source directory. *getter.Getter satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, src, dest string, opts getter.FetchOpts) error
}

// LoadOpts configures Load.
type LoadOpts struct {
	// URL is a go-getter source for an overlay directory. Empty means bundled only.
	URL string

	// Ref pins a git ref for URL.
	Ref string

	Cache   *Cache
	Fetcher Fetcher
	Logger  *slog.Logger
}

// Load returns the bundled Set with the overlay at opts.URL applied. Fetch
// failures are recorded as a *FetchError in Set.Warnings and logged.
func Load(ctx context.Context, opts *LoadOpts) (*Set, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	set, err := Bundled()
	if err != nil {
		return nil, err
	}

	if opts.URL == "" {
		return set, nil
	}

	cache := opts.Cache
	if cache == nil {
		cache = NewCache(DefaultCacheDir(), logger)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = getter.New(logger)
	}

	pwd, _ := os.Getwd() //nolint:errcheck // only used to resolve relative overlay paths

	dir, err := cache.GetOrFetch(opts.URL, opts.Ref, func(dest string) error {
		return fetcher.Fetch(ctx, opts.URL, dest, getter.FetchOpts{Ref: opts.Ref, Pwd: pwd})
	})
	if err != nil {
		set.warn(logger, &FetchError{URL: opts.URL, Err: err})

		return set, nil
	}

	n, overlayErr := set.Overlay(os.DirFS(dir))
	if overlayErr != nil {
		// A half-applied overlay is worse than none.
		set, err = Bundled()
		if err != nil {
			return nil, err
		}

		set.warn(logger, &FetchError{URL: opts.URL, Err: overlayErr})

		return set, nil
	}

	logger.Debug("template overlay applied", "url", opts.URL, "files", n)

	return set, nil
}

func (s *Set) warn(logger *slog.Logger, err error) {
	logger.Warn("using bundled templates", "err", err)
	s.warnings = append(s.warnings, err)
}
