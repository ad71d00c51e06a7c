package save

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for Save service implementations and validations.
var (
	ErrInvalidSave = errors.New("invalid save")
	ErrNotFound    = errors.New("save not found")
)

// List is a collection of Saves.
type List []*Save

// PostIDs returns the list of saved post ids.
func (ss List) PostIDs() []uint64 {
	ids := []uint64{}

	for _, s := range ss {
		ids = append(ids, s.PostID)
	}

	return ids
}

// Save is the intent of a user to bookmark a Post for later consumption.
type Save struct {
	OwnerID   uint64    `json:"owner_id"`
	PostID    uint64    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate performs semantic checks on the Save.
func (s *Save) Validate() error {
	if s.OwnerID == 0 {
		return wrapError(ErrInvalidSave, "owner missing")
	}

	if s.PostID == 0 {
		return wrapError(ErrInvalidSave, "post missing")
	}

	return nil
}

// QueryOptions is used to narrow-down save queries.
type QueryOptions struct {
	Before   time.Time
	Limit    int
	OwnerIDs []uint64
	PostIDs  []uint64
}

// Service for save interactions.
type Service interface {
	Delete(namespace string, ownerID, postID uint64) error
	Put(namespace string, save *Save) (*Save, error)
	Query(namespace string, opts QueryOptions) (List, error)
	Setup(namespace string) error
	Teardown(namespace string) error
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Error is a wrapper to transport save service specific errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidSave indicates if err is ErrInvalidSave.
func IsInvalidSave(err error) bool {
	return unwrapError(err) == ErrInvalidSave
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
			"%s: %s",
			err.Error(),
			fmt.Sprintf(format, args...),
		),
	}
}
