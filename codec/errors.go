package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingClassTag reports a map decoded as an object without a class key.
	ErrMissingClassTag = errors.New("missing class tag")
	// ErrClassResolution reports a class name with no registered type.
	ErrClassResolution = errors.New("class resolution error")
	// ErrFieldAccess reports a value that cannot be read from or written to a field.
	ErrFieldAccess = errors.New("field access error")
	// ErrAdapterContract reports an adapter returning nil or a map using a reserved key.
	ErrAdapterContract = errors.New("adapter contract violation")
	// ErrAmbiguousEmptyList reports an empty list whose element type cannot be inferred.
	ErrAmbiguousEmptyList = errors.New("ambiguous empty list")
	// ErrReservedKeyCollision reports a struct field named like a reserved key.
	ErrReservedKeyCollision = errors.New("reserved key collision")
	// ErrCyclicReference reports an object graph revisiting an object under serialization.
	ErrCyclicReference = errors.New("cyclic reference")
	// ErrMaxDepth reports recursion beyond the configured maximum depth.
	ErrMaxDepth = errors.New("maximum depth exceeded")
	// ErrUnsupported reports a Go type the codec cannot represent.
	ErrUnsupported = errors.New("unsupported type")
	// ErrUnknownEnumConstant reports an enum name not in the registered constant set.
	ErrUnknownEnumConstant = errors.New("unknown enum constant")
)

// Error carries the path at which encoding or decoding failed.
type Error struct {
	Op      string // "serialize" or "deserialize"
	Path    string // e.g. "profile.keys[2].name"
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s error at %s: %s", e.Op, e.Path, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func serializeErr(path string, err error, format string, args ...any) error {
	return &Error{Op: "serialize", Path: path, Err: err, Message: fmt.Sprintf(format, args...)}
}

func deserializeErr(path string, err error, format string, args ...any) error {
	return &Error{Op: "deserialize", Path: path, Err: err, Message: fmt.Sprintf(format, args...)}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
