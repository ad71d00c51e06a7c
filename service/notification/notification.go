package notification

import (
	"errors"
	"fmt"
	"time"
)

// Kind variants available for a Notification.
const (
	KindComment        Kind = "comment"
	KindFollowAccepted Kind = "follow-accepted"
	KindFollowRequest  Kind = "follow-request"
	KindLike           Kind = "like"
	KindNewFollower    Kind = "new-follower"
	KindNewPost        Kind = "new-post"
)

// Kind describes the event which triggered a Notification.
type Kind string

// Common errors for Notification service implementations and validations.
var (
	ErrInvalidNotification = errors.New("invalid notification")
	ErrNotFound            = errors.New("notification not found")
)

// List is a collection of Notifications.
type List []*Notification

// ActorIDs returns the list of acting user ids.
func (ns List) ActorIDs() []uint64 {
	ids := []uint64{}

	for _, n := range ns {
		ids = append(ids, n.ActorID)
	}

	return ids
}

func (ns List) Len() int {
	return len(ns)
}

func (ns List) Less(i, j int) bool {
	return ns[i].CreatedAt.After(ns[j].CreatedAt)
}

func (ns List) Swap(i, j int) {
	ns[i], ns[j] = ns[j], ns[i]
}

// Notification informs a user about an action another user performed which
// concerns them.
type Notification struct {
	ActorID     uint64    `json:"actor_id"`
	ID          uint64    `json:"id"`
	Kind        Kind      `json:"kind"`
	Read        bool      `json:"read"`
	RecipientID uint64    `json:"recipient_id"`
	RefID       uint64    `json:"ref_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate performs semantic checks on the Notification.
func (n *Notification) Validate() error {
	if n.ActorID == 0 {
		return wrapError(ErrInvalidNotification, "actor missing")
	}

	if n.RecipientID == 0 {
		return wrapError(ErrInvalidNotification, "recipient missing")
	}

	switch n.Kind {
	case KindComment,
		KindFollowAccepted,
		KindFollowRequest,
		KindLike,
		KindNewFollower,
		KindNewPost:
		// valid
	default:
		return wrapError(ErrInvalidNotification, "kind %s not supported", n.Kind)
	}

	return nil
}

// Preference holds the per-kind opt-outs of a user. The zero value opts in to
// every kind, absence of a stored Preference must never silence delivery.
type Preference struct {
	UserID        uint64    `json:"user_id"`
	MutedComments bool      `json:"muted_comments"`
	MutedFollows  bool      `json:"muted_follows"`
	MutedLikes    bool      `json:"muted_likes"`
	MutedNewPosts bool      `json:"muted_new_posts"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Allows indicates if the user opted in to receive notifications of the
// given Kind.
func (p *Preference) Allows(k Kind) bool {
	if p == nil {
		return true
	}

	switch k {
	case KindComment:
		return !p.MutedComments
	case KindFollowAccepted, KindFollowRequest, KindNewFollower:
		return !p.MutedFollows
	case KindLike:
		return !p.MutedLikes
	case KindNewPost:
		return !p.MutedNewPosts
	}

	return true
}

// QueryOptions is used to narrow-down notification queries.
type QueryOptions struct {
	Before       time.Time
	IDs          []uint64
	Kinds        []Kind
	Limit        int
	Read         *bool
	RecipientIDs []uint64
}

// Service for notification interactions.
type Service interface {
	Put(namespace string, notification *Notification) (*Notification, error)
	PreferenceGet(namespace string, userID uint64) (*Preference, error)
	PreferencePut(namespace string, preference *Preference) (*Preference, error)
	Query(namespace string, opts QueryOptions) (List, error)
	Setup(namespace string) error
	Teardown(namespace string) error
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Error is a wrapper to transport notification service specific errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidNotification indicates if err is ErrInvalidNotification.
func IsInvalidNotification(err error) bool {
	return unwrapError(err) == ErrInvalidNotification
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
