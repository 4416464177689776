// Package errs defines the classified build error taxonomy shared by the
// content pipeline. Errors carry a kind, the source path they concern, and an
// optional cause so the assembler can aggregate them into a build report.
package errs

import "fmt"

// Kind classifies a build error.
type Kind string

const (
	// KindMalformedMetadata marks an unparseable or incomplete front matter
	// block. Fatal to the affected document only; the build continues.
	KindMalformedMetadata Kind = "malformed_metadata"

	// KindDuplicatePermalink marks two documents claiming the same permalink
	// within one locale. Fatal to the whole build.
	KindDuplicatePermalink Kind = "duplicate_permalink"

	// KindBrokenLink marks a link to a nonexistent document. Recovered
	// locally with a plain-text fallback, reported as a warning.
	KindBrokenLink Kind = "broken_link"

	// KindNotFound marks a failed permalink/locale lookup.
	KindNotFound Kind = "not_found"

	// KindIO marks filesystem failures during ingestion or output writing.
	KindIO Kind = "io"
)

// Error is a classified build error.
type Error struct {
	Kind Kind
	Path string // source path or permalink the error concerns, may be empty
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Path, e.Msg, e.Err)
	case e.Path != "":
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Path, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Msg, e.Err)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinel comparisons like
// errors.Is(err, errs.ErrNotFound) work without message equality.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrMalformedMetadata  = &Error{Kind: KindMalformedMetadata}
	ErrDuplicatePermalink = &Error{Kind: KindDuplicatePermalink}
	ErrBrokenLink         = &Error{Kind: KindBrokenLink}
	ErrNotFound           = &Error{Kind: KindNotFound}
)

// New builds a classified error without a cause.
func New(kind Kind, path, msg string) *Error {
	return &Error{Kind: kind, Path: path, Msg: msg}
}

// Wrap builds a classified error around a cause.
func Wrap(kind Kind, path, msg string, err error) *Error {
	return &Error{Kind: kind, Path: path, Msg: msg, Err: err}
}

// KindOf extracts the kind from a classified error chain, or "" if the error
// is not classified.
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return ""
	}
	return e.Kind
}
