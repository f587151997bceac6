package stl

import (
	"errors"
	"fmt"
)

// Decode error kinds. Every error returned by the decoder is a *DecodeError
// whose Kind is one of these, so callers can match with errors.Is.
var (
	ErrSourceUnreadable       = errors.New("source unreadable")
	ErrTooSmallForHeader      = errors.New("too small for STL header")
	ErrNotBinaryFormat        = errors.New("not a binary STL (header starts an ASCII solid)")
	ErrTooSmallForOneFacet    = errors.New("too small for a single facet")
	ErrTruncatedHeader        = errors.New("truncated header")
	ErrUnreasonableFacetCount = errors.New("unreasonable facet count")
	ErrTruncatedFacet         = errors.New("truncated facet data")
)

// DecodeError describes why a mesh could not be decoded.
type DecodeError struct {
	Kind  error  // one of the Err* kinds above
	Facet int    // 0-based facet index for ErrTruncatedFacet, -1 otherwise
	Path  string // source path when decoding from a file
	Err   error  // underlying I/O error, if any
}

func (e *DecodeError) Error() string {
	msg := "stl: "
	if e.Path != "" {
		msg += e.Path + ": "
	}
	msg += e.Kind.Error()
	if e.Facet >= 0 {
		msg += fmt.Sprintf(" (facet %d)", e.Facet)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, cause error) *DecodeError {
	return &DecodeError{Kind: kind, Facet: -1, Err: cause}
}

func facetError(index int, cause error) *DecodeError {
	return &DecodeError{Kind: ErrTruncatedFacet, Facet: index, Err: cause}
}
