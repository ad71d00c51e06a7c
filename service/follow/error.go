package follow

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Follow service implementations and validations.
var (
	ErrInvalidFollow = errors.New("invalid follow")
	ErrNotFound      = errors.New("follow not found")
)

// Error is a wrapper to transport follow service specific errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidFollow indicates if err is ErrInvalidFollow.
func IsInvalidFollow(err error) bool {
	return unwrapError(err) == ErrInvalidFollow
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
