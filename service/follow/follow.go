package follow

import (
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/service"
)

// Supported states of a follow edge.
const (
	StateActive  State = "active"
	StatePending State = "pending"
)

// Follow represents a directed relation between two users with a lifecycle
// state. At most one edge exists per ordered pair.
type Follow struct {
	CloseFriend bool      `json:"close_friend"`
	FromID      uint64    `json:"from_id"`
	State       State     `json:"state"`
	ToID        uint64    `json:"to_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MatchOpts indicates if the Follow matches the given QueryOptions.
func (f *Follow) MatchOpts(opts *QueryOptions) bool {
	if opts == nil {
		return true
	}

	if opts.CloseFriend != nil && f.CloseFriend != *opts.CloseFriend {
		return false
	}

	if len(opts.States) > 0 {
		discard := true

		for _, s := range opts.States {
			if f.State == s {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	return true
}

// Validate performs checks on the Follow values for completeness and
// correctness.
func (f Follow) Validate() error {
	if f.FromID == 0 {
		return wrapError(ErrInvalidFollow, "from id not set")
	}

	if f.ToID == 0 {
		return wrapError(ErrInvalidFollow, "to id not set")
	}

	if f.FromID == f.ToID {
		return wrapError(ErrInvalidFollow, "self-referential edge")
	}

	switch f.State {
	case StateActive, StatePending:
		// valid
	default:
		return wrapError(ErrInvalidFollow, "invalid state")
	}

	return nil
}

// List is a collection of Follows.
type List []*Follow

// FromIDs returns the extracted FromID of all edges as list.
func (l List) FromIDs() []uint64 {
	ids := []uint64{}

	for _, f := range l {
		ids = append(ids, f.FromID)
	}

	return ids
}

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].UpdatedAt.After(l[j].UpdatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// ToIDs returns the extracted ToID of all edges as list.
func (l List) ToIDs() []uint64 {
	ids := []uint64{}

	for _, f := range l {
		ids = append(ids, f.ToID)
	}

	return ids
}

// QueryOptions are used to narrow down Follow queries.
type QueryOptions struct {
	Before      time.Time `json:"-"`
	CloseFriend *bool     `json:"close_friend,omitempty"`
	FromIDs     []uint64  `json:"from_ids,omitempty"`
	Limit       int       `json:"-"`
	States      []State   `json:"states,omitempty"`
	ToIDs       []uint64  `json:"to_ids,omitempty"`
}

// Service for follow interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Delete(namespace string, fromID, toID uint64) error
	Put(namespace string, follow *Follow) (*Follow, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// State of a follow edge.
type State string
