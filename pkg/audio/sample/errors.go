// ABOUTME: Load error taxonomy for sample construction
// ABOUTME: LoadError carries the failure kind, the path and the collaborator diagnostic
package sample

import (
	"errors"
	"fmt"
)

// Kind classifies a load failure
type Kind int

const (
	KindNoActiveContext Kind = iota + 1
	KindFileOpen
	KindDecode
	KindUnsupportedFormat
	KindBackend
)

// Sentinel errors matched by errors.Is against a *LoadError
var (
	ErrNoActiveContext   = errors.New("no active audio context")
	ErrFileOpen          = errors.New("failed to open audio file")
	ErrDecode            = errors.New("failed to decode audio file")
	ErrUnsupportedFormat = errors.New("unsupported channel layout")
	ErrBackend           = errors.New("audio backend error")

	// ErrReleased is returned when cloning a Ref whose data was released
	ErrReleased = errors.New("sample data already released")
)

func (k Kind) String() string {
	switch k {
	case KindNoActiveContext:
		return "no_active_context"
	case KindFileOpen:
		return "file_open"
	case KindDecode:
		return "decode"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindBackend:
		return "backend"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNoActiveContext:
		return ErrNoActiveContext
	case KindFileOpen:
		return ErrFileOpen
	case KindDecode:
		return ErrDecode
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	case KindBackend:
		return ErrBackend
	default:
		return nil
	}
}

// LoadError reports a failed construction
type LoadError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	msg := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the kind
func (e *LoadError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of a load error, or 0 if err is not one
func KindOf(err error) Kind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

func loadErr(kind Kind, path string, err error) *LoadError {
	return &LoadError{Kind: kind, Path: path, Err: err}
}
