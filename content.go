package treefs

import (
	"encoding"
	"errors"
	"fmt"
	"io"
)

// ErrUnsupportedContent is wrapped by [ContentError] when a content value has
// no byte representation.
var ErrUnsupportedContent = errors.New("unsupported content type")

// ErrNilContent is wrapped by [ContentError] when content is a typed nil, such
// as a nil pointer given to [File]. [Classify] skips these instead.
var ErrNilContent = errors.New("nil content")

// ContentError reports a content value that could not be converted to bytes.
// The write for Path is never attempted.
type ContentError struct {
	Path string
	Type string // Go type of the offending value
	Err  error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content for %s (%s): %v", e.Path, e.Type, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// Source is content produced on demand, such as a remote document. Bytes is
// called once, when the entry is walked.
type Source interface {
	Bytes() ([]byte, error)
}

// Bytes converts a content value to the bytes written to the backend.
// Readers are read to EOF and producer funcs are called once.
func Bytes(v any) ([]byte, error) {
	if isNil(v) {
		return nil, ErrNilContent
	}
	switch t := v.(type) {
	case Source:
		return t.Bytes()
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	case func() ([]byte, error):
		return t()
	case func() string:
		return []byte(t()), nil
	case io.Reader:
		return io.ReadAll(t)
	case encoding.TextMarshaler:
		return t.MarshalText()
	case fmt.Stringer:
		return []byte(t.String()), nil
	default:
		return nil, ErrUnsupportedContent
	}
}

// isLazy reports content that is produced by I/O or consumed when converted
func isLazy(v any) bool {
	if isNil(v) {
		return false
	}
	switch v.(type) {
	case Source, io.Reader:
		return true
	default:
		return false
	}
}

func contentBytes(path string, v any) ([]byte, error) {
	data, err := Bytes(v)
	if err != nil {
		return nil, &ContentError{Path: path, Type: fmt.Sprintf("%T", v), Err: err}
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
