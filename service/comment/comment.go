package comment

import (
	"time"
)

// Status variants available for a Comment.
const (
	StatusActive   Status = "active"
	StatusRemoved  Status = "removed"
	StatusReported Status = "reported"
)

// Status describes the moderation state of a Comment.
type Status string

// List is a collection of Comments.
type List []*Comment

// IDs returns the list of ids.
func (cs List) IDs() []uint64 {
	ids := []uint64{}

	for _, c := range cs {
		ids = append(ids, c.ID)
	}

	return ids
}

// OwnerIDs returns the list of owner ids.
func (cs List) OwnerIDs() []uint64 {
	ids := []uint64{}

	for _, c := range cs {
		ids = append(ids, c.OwnerID)
	}

	return ids
}

func (cs List) Len() int {
	return len(cs)
}

func (cs List) Less(i, j int) bool {
	return cs[i].CreatedAt.Before(cs[j].CreatedAt)
}

func (cs List) Swap(i, j int) {
	cs[i], cs[j] = cs[j], cs[i]
}

// Comment is a reply to a Post or to another Comment.
type Comment struct {
	Content   string    `json:"content"`
	Edited    bool      `json:"edited"`
	ID        uint64    `json:"id"`
	OwnerID   uint64    `json:"owner_id"`
	ParentID  uint64    `json:"parent_id"`
	PostID    uint64    `json:"post_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs semantic checks on the Comment.
func (c *Comment) Validate() error {
	if c.Content == "" {
		return wrapError(ErrInvalidComment, "content missing")
	}

	if c.OwnerID == 0 {
		return wrapError(ErrInvalidComment, "owner missing")
	}

	if c.PostID == 0 {
		return wrapError(ErrInvalidComment, "post missing")
	}

	switch c.Status {
	case StatusActive, StatusRemoved, StatusReported:
		// valid
	default:
		return wrapError(ErrInvalidComment, "status %s not supported", c.Status)
	}

	return nil
}

// QueryOptions is used to narrow-down comment queries.
type QueryOptions struct {
	Before    time.Time
	IDs       []uint64
	Limit     int
	OwnerIDs  []uint64
	ParentIDs []uint64
	PostIDs   []uint64
	Statuses  []Status
}

// Service for comment interactions.
type Service interface {
	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, comment *Comment) (*Comment, error)
	Query(namespace string, opts QueryOptions) (List, error)
	Setup(namespace string) error
	Teardown(namespace string) error
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service
