package post

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Post service implementations and validations.
var (
	ErrInvalidPost = errors.New("invalid post")
	ErrNotFound    = errors.New("post not found")
)

// Error is a wrapper to transport post service specific errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidPost indicates if err is ErrInvalidPost.
func IsInvalidPost(err error) bool {
	return unwrapError(err) == ErrInvalidPost
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
