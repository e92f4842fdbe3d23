package vfsim

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a POSIX-style error code, exactly as tabulated in spec.md §7.
// Callers pattern-match on Code, never on Error()'s message text.
type Code string

const (
	EACCES    Code = "EACCES"
	EIO       Code = "EIO"
	ENOENT    Code = "ENOENT"
	EEXIST    Code = "EEXIST"
	ELOOP     Code = "ELOOP"
	ENOTDIR   Code = "ENOTDIR"
	EISDIR    Code = "EISDIR"
	EBADF     Code = "EBADF"
	EINVAL    Code = "EINVAL"
	ENOTEMPTY Code = "ENOTEMPTY"
	EPERM     Code = "EPERM"
	EROFS     Code = "EROFS"
)

var codeMessages = map[Code]string{
	EACCES:    "permission denied",
	EIO:       "input/output error",
	ENOENT:    "no such file or directory",
	EEXIST:    "file exists",
	ELOOP:     "too many levels of symbolic links",
	ENOTDIR:   "not a directory",
	EISDIR:    "is a directory",
	EBADF:     "bad file descriptor",
	EINVAL:    "invalid argument",
	ENOTEMPTY: "directory not empty",
	EPERM:     "operation not permitted",
	EROFS:     "read-only file system",
}

// IOError is a runtime failure from any §4.6 operation. It always carries
// one of the codes above; Error() formats the code's canonical POSIX
// message alongside the path that triggered it.
type IOError struct {
	Code Code
	Op   string
	Path string
	// cause is kept (via github.com/pkg/errors) only to carry a stack for
	// debugging; it never changes Code-based matching at call sites.
	cause error
}

func (e *IOError) Error() string {
	msg := codeMessages[e.Code]
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *IOError) Unwrap() error {
	return e.cause
}

// newIOError constructs an *IOError wrapped with a stack trace via
// github.com/pkg/errors so that a development build can print where the
// error originated without disturbing Code-based matching.
func newIOError(op string, path string, code Code) *IOError {
	return &IOError{
		Code:  code,
		Op:    op,
		Path:  path,
		cause: errors.Errorf("%s %s: %s", op, path, codeMessages[code]),
	}
}

// IsCode reports whether err is an *IOError with the given code.
func IsCode(err error, code Code) bool {
	ioErr, ok := err.(*IOError)
	if !ok {
		return false
	}
	return ioErr.Code == code
}

// typeError is a programming error per spec.md §7: returned by Apply (and
// RimrafSync on the root) for structurally invalid FileSet shapes, and by
// validatePath for a malformed path (SymlinkSync reports that case as an
// EINVAL IOError instead). Never recoverable, never an *IOError, and
// never pattern-matched by Code.
type typeError struct {
	msg string
}

func (e *typeError) Error() string { return e.msg }

func newTypeError(format string, args ...interface{}) error {
	return &typeError{msg: fmt.Sprintf(format, args...)}
}
