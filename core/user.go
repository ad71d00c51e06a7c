package core

import (
	"github.com/joaoportolan93/Dream-Share-oficial/service/block"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// UserCreateFunc registers a new active user.
type UserCreateFunc func(ns string, u *user.User) (*user.User, error)

// UserCreate constructs the registration operation.
func UserCreate(users user.Service) UserCreateFunc {
	return func(ns string, u *user.User) (*user.User, error) {
		if u.Status == "" {
			u.Status = user.StatusActive
		}

		if u.Privacy == "" {
			u.Privacy = user.PrivacyPublic
		}

		us, err := users.Query(ns, user.QueryOptions{
			Usernames: []string{u.Username},
		})
		if err != nil {
			return nil, err
		}

		if len(us) > 0 {
			return nil, wrapError(ErrInvalidEntity, "username %s taken", u.Username)
		}

		return users.Put(ns, u)
	}
}

// UserRetrieveFunc returns the profile of target as seen by the origin
// together with the follow states between the two.
type UserRetrieveFunc func(ns string, origin, target uint64) (*Profile, error)

// Profile is the composite to transport a user together with the
// relationship of the viewer.
type Profile struct {
	User        *user.User
	FollowState follow.State
	FollowedBy  bool
	IsFollowing bool
}

// UserRetrieve constructs the gated profile fetch.
func UserRetrieve(
	blocks block.Service,
	follows follow.Service,
	users user.Service,
) UserRetrieveFunc {
	return func(ns string, origin, target uint64) (*Profile, error) {
		u, err := fetchUser(users, ns, target)
		if err != nil {
			return nil, err
		}

		if origin != target {
			if u.Status != user.StatusActive {
				return nil, wrapError(ErrNotFound, "user %d", target)
			}

			blocked, err := isBlocked(blocks, ns, origin, target)
			if err != nil {
				return nil, err
			}

			if blocked {
				return nil, wrapError(ErrNotFound, "user %d", target)
			}
		}

		p := &Profile{User: u}

		fs, err := follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{origin},
			ToIDs:   []uint64{target},
		})
		if err != nil {
			return nil, err
		}

		if len(fs) > 0 {
			p.FollowState = fs[0].State
			p.IsFollowing = fs[0].State == follow.StateActive
		}

		fs, err = follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{target},
			States:  []follow.State{follow.StateActive},
			ToIDs:   []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		p.FollowedBy = len(fs) > 0

		return p, nil
	}
}

// UserSearchFunc finds active users matching the query, blocked users are
// removed from the result.
type UserSearchFunc func(ns string, origin uint64, query string) (user.List, error)

// UserSearch constructs the user search.
func UserSearch(
	blocks block.Service,
	users user.Service,
) UserSearchFunc {
	return func(ns string, origin uint64, query string) (user.List, error) {
		us, err := users.Search(ns, user.QueryOptions{
			Query:    query,
			Statuses: []user.Status{user.StatusActive},
		})
		if err != nil {
			return nil, err
		}

		obs, err := blocks.Query(ns, block.QueryOptions{
			FromIDs: []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		ibs, err := blocks.Query(ns, block.QueryOptions{
			ToIDs: []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		hidden := map[uint64]struct{}{}

		for _, id := range append(obs, ibs...).OtherIDs(origin) {
			hidden[id] = struct{}{}
		}

		rs := user.List{}

		for _, u := range us {
			if _, ok := hidden[u.ID]; ok {
				continue
			}

			rs = append(rs, u)
		}

		return rs, nil
	}
}

// FollowerListFunc returns the active followers of the origin.
type FollowerListFunc func(ns string, origin uint64) (user.List, error)

// FollowerList constructs the follower listing.
func FollowerList(
	follows follow.Service,
	users user.Service,
) FollowerListFunc {
	return func(ns string, origin uint64) (user.List, error) {
		fs, err := follows.Query(ns, follow.QueryOptions{
			States: []follow.State{follow.StateActive},
			ToIDs:  []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		return user.ListFromIDs(users, ns, fs.FromIDs()...)
	}
}

// FollowingListFunc returns the active followees of the origin.
type FollowingListFunc func(ns string, origin uint64) (user.List, error)

// FollowingList constructs the followee listing.
func FollowingList(
	follows follow.Service,
	users user.Service,
) FollowingListFunc {
	return func(ns string, origin uint64) (user.List, error) {
		fs, err := follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{origin},
			States:  []follow.State{follow.StateActive},
		})
		if err != nil {
			return nil, err
		}

		return user.ListFromIDs(users, ns, fs.ToIDs()...)
	}
}

func fetchUser(users user.Service, ns string, id uint64) (*user.User, error) {
	us, err := users.Query(ns, user.QueryOptions{
		IDs: []uint64{id},
	})
	if err != nil {
		return nil, err
	}

	if len(us) == 0 {
		return nil, wrapError(ErrNotFound, "user %d", id)
	}

	return us[0], nil
}
