package user

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
)

type memService struct {
	users map[string]map[uint64]*User
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		users: map[string]map[uint64]*User{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return -1, err
	}

	return len(filterMap(s.users[ns], opts)), nil
}

func (s *memService) Put(ns string, u *User) (*User, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if u.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		u.ID = id
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}

	stored, ok := s.users[ns][u.ID]
	if ok {
		u.CreatedAt = stored.CreatedAt
	}

	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = now

	s.users[ns][u.ID] = u

	return u, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.users[ns], opts), nil
}

func (s *memService) Search(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	us := List{}

	for _, u := range filterMap(s.users[ns], opts) {
		if opts.Query != "" && !matchQuery(u, opts.Query) {
			continue
		}

		us = append(us, u)
	}

	return us, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.users[ns]; !ok {
		s.users[ns] = map[uint64]*User{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	return fmt.Errorf("not implemented")
}

func filterMap(um map[uint64]*User, opts QueryOptions) List {
	us := List{}

	for _, u := range um {
		if !inIDs(u.ID, opts.IDs) {
			continue
		}

		if !inStrings(u.Email, opts.Emails) {
			continue
		}

		if !inStrings(u.Username, opts.Usernames) {
			continue
		}

		if !u.MatchOpts(&opts) {
			continue
		}

		us = append(us, u)
	}

	if len(us) == 0 {
		return us
	}

	if opts.Limit > 0 {
		l := math.Min(float64(len(us)), float64(opts.Limit))

		return us[:int(l)]
	}

	return us
}

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "users")
}

func inIDs(id uint64, ids []uint64) bool {
	if len(ids) == 0 {
		return true
	}

	keep := false

	for _, i := range ids {
		if i == id {
			keep = true
			break
		}
	}

	return keep
}

func inStrings(s string, ss []string) bool {
	if len(ss) == 0 {
		return true
	}

	keep := false

	for _, x := range ss {
		if s == x {
			keep = true
			break
		}
	}

	return keep
}

func matchQuery(u *User, query string) bool {
	q := strings.ToLower(query)

	return strings.Contains(strings.ToLower(u.Username), q) ||
		strings.Contains(strings.ToLower(u.Fullname), q)
}
