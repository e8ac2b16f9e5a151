package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput        = NewError("failed to read input")
	ErrUnknownVariable  = NewError("unknown variable")
	ErrNotFunction      = NewError("value is not a function")
	ErrArity            = NewError("too many arguments")
	ErrSignature        = NewError("invalid signature")
	ErrUnsupported      = NewError("unsupported by compiler")
	ErrInvalidKind      = NewError("invalid kind")
	ErrManifest         = NewError("invalid manifest")
	ErrUnboundFunction  = NewError("function has no implementation")
	ErrHostFunction     = NewError("invalid host function")
	ErrExprCompile      = NewError("expression compilation failed")
	ErrArgumentMismatch = NewError("argument mismatch")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same base message.
// Errors derived from a sentinel through Wrap or With match that sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ParseError describes a syntax error and where it occurred.
// Parsing stops at the first error.
type ParseError struct {
	Message string
	Cursor  Cursor
	Source  string // The original source input
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	// Write error location and description
	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Cursor.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Cursor.Column))
	buf.WriteString(": ")
	buf.WriteString(e.Message)

	if snippet := e.Snippet(); snippet != "" {
		buf.WriteRune('\n')
		buf.WriteString(snippet)
	}

	return buf.String()
}

// Snippet returns the offending source line followed by a caret marking the
// error column. It returns "" when the cursor lies outside the source.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Cursor.Line <= 0 || e.Cursor.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	line := strings.TrimRight(lines[e.Cursor.Line-1], "\r")

	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.Cursor.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(e.Cursor.Line))+5)
	if e.Cursor.Column > 0 {
		padding += strings.Repeat(" ", e.Cursor.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Message),
		slog.Int("line", e.Cursor.Line),
		slog.Int("column", e.Cursor.Column),
	)
}
