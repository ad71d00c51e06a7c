package core

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors
var (
	ErrAlreadyFollowing   = errors.New("already following")
	ErrBlocked            = errors.New("blocked")
	ErrHasActiveReplies   = errors.New("comment has active replies")
	ErrInvalidEntity      = errors.New("invalid entity")
	ErrNotFollowing       = errors.New("not following")
	ErrNotFound           = errors.New("resource not found")
	ErrRequestAlreadySent = errors.New("follow request already sent")
	ErrSelfFollow         = errors.New("self follow")
	ErrUnauthorized       = errors.New("origin unauthorized")
)

// Error is a wrapper used to transport core specific errors.
type Error struct {
	Err error
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

// IsAlreadyFollowing indicates if err is ErrAlreadyFollowing.
func IsAlreadyFollowing(err error) bool {
	return unwrapError(err) == ErrAlreadyFollowing
}

// IsBlocked indicates if err is ErrBlocked.
func IsBlocked(err error) bool {
	return unwrapError(err) == ErrBlocked
}

// IsHasActiveReplies indicates if err is ErrHasActiveReplies.
func IsHasActiveReplies(err error) bool {
	return unwrapError(err) == ErrHasActiveReplies
}

// IsInvalidEntity indicates if err is ErrInvalidEntity.
func IsInvalidEntity(err error) bool {
	return unwrapError(err) == ErrInvalidEntity
}

// IsNotFollowing indicates if err is ErrNotFollowing.
func IsNotFollowing(err error) bool {
	return unwrapError(err) == ErrNotFollowing
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

// IsRequestAlreadySent indicates if err is ErrRequestAlreadySent.
func IsRequestAlreadySent(err error) bool {
	return unwrapError(err) == ErrRequestAlreadySent
}

// IsSelfFollow indicates if err is ErrSelfFollow.
func IsSelfFollow(err error) bool {
	return unwrapError(err) == ErrSelfFollow
}

// IsUnauthorized indicates if err is ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return unwrapError(err) == ErrUnauthorized
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.Err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		Err: err,
		Msg: fmt.Sprintf(
			errFmt,
			err.Error(),
			fmt.Sprintf(format, args...),
		),
	}
}
