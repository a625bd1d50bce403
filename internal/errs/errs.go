package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure by the stage that produced it
type Kind uint8

const (
	Unknown Kind = iota
	ConnectionFailed
	UnsupportedExtension
	CursorUnavailable
	SnapshotFailed
	ChunkTooSmall
	TransmissionFailed
	WindowSetupFailed
	ChildSpawnFailed
)

var kindNames = map[Kind]string{
	Unknown:              "unknown error",
	ConnectionFailed:     "connection failed",
	UnsupportedExtension: "unsupported extension",
	CursorUnavailable:    "cursor unavailable",
	SnapshotFailed:       "snapshot failed",
	ChunkTooSmall:        "chunk too small",
	TransmissionFailed:   "transmission failed",
	WindowSetupFailed:    "window setup failed",
	ChildSpawnFailed:     "child spawn failed",
}

// String returns the human-readable kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error lets a Kind be used as an errors.Is target
func (k Kind) Error() string {
	return k.String()
}

// Error is a classified pipeline error. Its message is rendered followed by
// the causal chain, each cause separated by ": ".
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same Kind as e
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind && (t.Msg == "" || t.Msg == e.Msg)
	}
	return false
}

// New creates a classified error without a cause
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
