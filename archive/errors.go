package archive

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

var (
	ErrTruncated = &StreamError{err: io.ErrUnexpectedEOF}
	ErrMalformed = &StreamError{err: errors.New("malformed data")}
)

type StreamError struct {
	err    error
	Field  string
	Pos    int64
	Detail string
}

func (e *StreamError) Error() string {
	s := e.err.Error()
	if e.Field != "" {
		s = fmt.Sprintf("%s at 0x%x: %s", e.Field, e.Pos, s)
	}
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

func (e *StreamError) Unwrap() error {
	return e.err
}

// Matches the sentinels regardless of position
func (e *StreamError) Is(target error) bool {
	t, ok := target.(*StreamError)
	return ok && t.Field == "" && t.err == e.err
}

func truncated(field string, pos int64) error {
	return &StreamError{err: io.ErrUnexpectedEOF, Field: field, Pos: pos}
}

func malformed(field string, pos int64, format string, args ...interface{}) error {
	return &StreamError{err: ErrMalformed.err, Field: field, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}
