package comment

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Comment service implementations and validations.
var (
	ErrInvalidComment = errors.New("invalid comment")
	ErrNotFound       = errors.New("comment not found")
)

// Error is a wrapper to transport comment service specific errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidComment indicates if err is ErrInvalidComment.
func IsInvalidComment(err error) bool {
	return unwrapError(err) == ErrInvalidComment
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			errFmt,
			err.Error(),
			fmt.Sprintf(format, args...),
		),
	}
}
