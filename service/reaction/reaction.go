package reaction

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for Reaction service implementations and validations.
var (
	ErrInvalidReaction = errors.New("invalid reaction")
	ErrNotFound        = errors.New("reaction not found")
)

// List is a collection of Reactions.
type List []*Reaction

// OwnerIDs returns the list of owner ids.
func (rs List) OwnerIDs() []uint64 {
	ids := []uint64{}

	for _, r := range rs {
		ids = append(ids, r.OwnerID)
	}

	return ids
}

// PostIDs returns the list of post ids.
func (rs List) PostIDs() []uint64 {
	ids := []uint64{}

	for _, r := range rs {
		ids = append(ids, r.PostID)
	}

	return ids
}

// Reaction is the intent of a user to like a Post. A user reacts to a Post at
// most once, repeated likes toggle the Deleted flag instead of creating new
// entries.
type Reaction struct {
	Deleted   bool      `json:"deleted"`
	ID        uint64    `json:"id"`
	OwnerID   uint64    `json:"owner_id"`
	PostID    uint64    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs semantic checks on the Reaction.
func (r *Reaction) Validate() error {
	if r.OwnerID == 0 {
		return wrapError(ErrInvalidReaction, "owner missing")
	}

	if r.PostID == 0 {
		return wrapError(ErrInvalidReaction, "post missing")
	}

	return nil
}

// QueryOptions is used to narrow-down reaction queries.
type QueryOptions struct {
	Before   time.Time
	Deleted  *bool
	IDs      []uint64
	Limit    int
	OwnerIDs []uint64
	PostIDs  []uint64
}

// Service for reaction interactions.
type Service interface {
	Count(namespace string, opts QueryOptions) (int, error)
	CountMulti(namespace string, postIDs ...uint64) (CountsMap, error)
	Put(namespace string, reaction *Reaction) (*Reaction, error)
	Query(namespace string, opts QueryOptions) (List, error)
	Setup(namespace string) error
	Teardown(namespace string) error
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// CountsMap bundles like counts by post id.
type CountsMap map[uint64]int

// Error is a wrapper to transport reaction service specific errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidReaction indicates if err is ErrInvalidReaction.
func IsInvalidReaction(err error) bool {
	return unwrapError(err) == ErrInvalidReaction
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
			"%s: %s",
			err.Error(),
			fmt.Sprintf(format, args...),
		),
	}
}
