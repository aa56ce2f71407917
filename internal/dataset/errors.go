package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyInput indicates an upload with no header row.
var ErrEmptyInput = errors.New("no data in upload")

// ErrInvalidEncoding indicates an upload that is not UTF-8 text.
var ErrInvalidEncoding = errors.New("file is not valid UTF-8 text")

// ParseError reports input that could not be read as CSV.
type ParseError struct {
	Line int // 1-based; 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse csv: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse csv: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
