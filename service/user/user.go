package user

import (
	"sort"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/service"
)

// Supported states an account can be in.
const (
	StatusActive      Status = "active"
	StatusSuspended   Status = "suspended"
	StatusDeactivated Status = "deactivated"
)

// Supported account-wide privacy settings.
const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// List is a collection of users.
type List []*User

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].CreatedAt.After(l[j].CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// IDs returns the ids of all users in the list.
func (l List) IDs() []uint64 {
	ids := []uint64{}

	for _, u := range l {
		ids = append(ids, u.ID)
	}

	return ids
}

// ToMap transforms the list to a Map.
func (l List) ToMap() Map {
	um := Map{}

	for _, u := range l {
		um[u.ID] = u
	}

	return um
}

// Map is a user collection with their id as index.
type Map map[uint64]*User

// Merge combines two Maps.
func (m Map) Merge(x Map) Map {
	for id, u := range x {
		m[id] = u
	}

	return m
}

// ToList returns the Map as an ordered List.
func (m Map) ToList() List {
	us := List{}

	for _, u := range m {
		us = append(us, u)
	}

	sort.Sort(us)

	return us
}

// Privacy is the account-wide default audience of a user.
type Privacy string

// QueryOptions is used to narrow-down user queries.
type QueryOptions struct {
	Emails     []string
	IDs        []uint64
	Limit      int
	Privacies  []Privacy
	Query      string
	Statuses   []Status
	Usernames  []string
}

// Service for user interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, user *User) (*User, error)
	Query(namespace string, opts QueryOptions) (List, error)
	Search(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Status describes the lifecycle state of an account.
type Status string

// User is the representation of an account on the network.
type User struct {
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Birthdate string    `json:"birthdate,omitempty"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	ID        uint64    `json:"id"`
	Privacy   Privacy   `json:"privacy"`
	Status    Status    `json:"status"`
	Username  string    `json:"username"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchOpts indicates if the User matches the given QueryOptions.
func (u *User) MatchOpts(opts *QueryOptions) bool {
	if opts == nil {
		return true
	}

	if len(opts.Privacies) > 0 {
		discard := true

		for _, p := range opts.Privacies {
			if u.Privacy == p {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	if len(opts.Statuses) > 0 {
		discard := true

		for _, s := range opts.Statuses {
			if u.Status == s {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	return true
}

// Validate performs checks on the User values for completeness and
// correctness.
func (u *User) Validate() error {
	if u.Email == "" || !govalidator.IsEmail(u.Email) {
		return wrapError(ErrInvalidUser, "invalid email '%s'", u.Email)
	}

	if u.Username == "" {
		return wrapError(ErrInvalidUser, "username not set")
	}

	if u.AvatarURL != "" && !govalidator.IsURL(u.AvatarURL) {
		return wrapError(ErrInvalidUser, "invalid avatar url")
	}

	switch u.Status {
	case StatusActive, StatusSuspended, StatusDeactivated:
		// valid
	default:
		return wrapError(ErrInvalidUser, "invalid status")
	}

	switch u.Privacy {
	case PrivacyPublic, PrivacyPrivate:
		// valid
	default:
		return wrapError(ErrInvalidUser, "invalid privacy")
	}

	return nil
}

// ListFromIDs gathers a user collection from the Service for the given ids.
func ListFromIDs(s Service, ns string, ids ...uint64) (List, error) {
	if len(ids) == 0 {
		return List{}, nil
	}

	return s.Query(ns, QueryOptions{
		IDs: ids,
	})
}

// MapFromIDs return a populated user map for the given list of ids.
func MapFromIDs(s Service, ns string, ids ...uint64) (Map, error) {
	us, err := ListFromIDs(s, ns, ids...)
	if err != nil {
		return nil, err
	}

	return us.ToMap(), nil
}
