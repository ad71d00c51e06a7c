package post

import (
	"time"
)

// Visibility variants available for a Post.
const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

// Visibility determines the audience of a Post.
type Visibility string

// List is a collection of Posts.
type List []*Post

// IDs returns the list of ids.
func (ps List) IDs() []uint64 {
	ids := []uint64{}

	for _, p := range ps {
		ids = append(ids, p.ID)
	}

	return ids
}

// OwnerIDs returns the list of owner ids.
func (ps List) OwnerIDs() []uint64 {
	ids := []uint64{}

	for _, p := range ps {
		ids = append(ids, p.OwnerID)
	}

	return ids
}

func (ps List) Len() int {
	return len(ps)
}

func (ps List) Less(i, j int) bool {
	return ps[i].CreatedAt.After(ps[j].CreatedAt)
}

func (ps List) Swap(i, j int) {
	ps[i], ps[j] = ps[j], ps[i]
}

// Map is a post collection with the id as index.
type Map map[uint64]*Post

// ToList turns the map into a simple list.
func (m Map) ToList() List {
	ps := List{}

	for _, p := range m {
		ps = append(ps, p)
	}

	return ps
}

// Post is the intent of a user to share a dream with an audience.
type Post struct {
	CommunityID uint64     `json:"community_id"`
	Content     string     `json:"content"`
	Deleted     bool       `json:"deleted"`
	Edited      bool       `json:"edited"`
	EditedAt    time.Time  `json:"edited_at"`
	Emotions    []string   `json:"emotions"`
	ID          uint64     `json:"id"`
	Location    string     `json:"location"`
	OwnerID     uint64     `json:"owner_id"`
	Title       string     `json:"title"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate performs semantic checks on the Post.
func (p *Post) Validate() error {
	if p.OwnerID == 0 {
		return wrapError(ErrInvalidPost, "owner missing")
	}

	if p.Title == "" {
		return wrapError(ErrInvalidPost, "title missing")
	}

	if p.Content == "" {
		return wrapError(ErrInvalidPost, "content missing")
	}

	switch p.Visibility {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		// valid
	default:
		return wrapError(ErrInvalidPost, "visibility %s not supported", p.Visibility)
	}

	return nil
}

// MatchOpts indicates if the Post matches the given QueryOptions.
func (p *Post) MatchOpts(opts *QueryOptions) bool {
	if opts == nil {
		return true
	}

	if opts.Deleted != nil && p.Deleted != *opts.Deleted {
		return false
	}

	if len(opts.CommunityIDs) > 0 {
		keep := false

		for _, id := range opts.CommunityIDs {
			if p.CommunityID == id {
				keep = true
				break
			}
		}

		if !keep {
			return false
		}
	}

	if len(opts.Visibilities) > 0 {
		keep := false

		for _, v := range opts.Visibilities {
			if p.Visibility == v {
				keep = true
				break
			}
		}

		if !keep {
			return false
		}
	}

	return true
}

// QueryOptions is used to narrow-down post queries.
type QueryOptions struct {
	Before       time.Time
	CommunityIDs []uint64
	Deleted      *bool
	IDs          []uint64
	Limit        int
	OwnerIDs     []uint64
	Visibilities []Visibility
}

// Service for post interactions.
type Service interface {
	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, post *Post) (*Post, error)
	Query(namespace string, opts QueryOptions) (List, error)
	Setup(namespace string) error
	Teardown(namespace string) error
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service
