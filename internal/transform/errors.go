// Package transform provides the pure text and structured-document
// transformations used to edit files in a generated Rails project.
package transform

import (
	"errors"
	"fmt"
)

// ErrAnchorNotFound is the sentinel wrapped by AnchorNotFoundError.
var ErrAnchorNotFound = errors.New("anchor not found")

// AnchorNotFoundError reports a required anchor or pattern missing from its target.
type AnchorNotFoundError struct {
	Path   string
	Anchor string
}

func (e *AnchorNotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("anchor %q not found", e.Anchor)
	}

	return fmt.Sprintf("anchor %q not found in %s", e.Anchor, e.Path)
}

func (e *AnchorNotFoundError) Unwrap() error {
	return ErrAnchorNotFound
}

// MalformedArtifactError reports generated structured content that does not
// parse in its declared format.
type MalformedArtifactError struct {
	Path   string
	Format string
	Err    error
}

func (e *MalformedArtifactError) Error() string {
	return fmt.Sprintf("malformed %s artifact %s: %v", e.Format, e.Path, e.Err)
}

func (e *MalformedArtifactError) Unwrap() error {
	return e.Err
}

// notFound builds the error returned by anchor operations. Path is filled in by
// the caller that knows which file was being edited.
func notFound(anchor string) error {
	return &AnchorNotFoundError{Anchor: anchor}
}

// WithPath sets the path on an AnchorNotFoundError or MalformedArtifactError
// and returns err unchanged otherwise.
func WithPath(err error, path string) error {
	var anchor *AnchorNotFoundError
	if errors.As(err, &anchor) && anchor.Path == "" {
		return &AnchorNotFoundError{Path: path, Anchor: anchor.Anchor}
	}

	var malformed *MalformedArtifactError
	if errors.As(err, &malformed) && malformed.Path == "" {
		return &MalformedArtifactError{Path: path, Format: malformed.Format, Err: malformed.Err}
	}

	return err
}
