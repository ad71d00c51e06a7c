package core

import (
	"github.com/joaoportolan93/Dream-Share-oficial/service/block"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/mute"
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// FollowRequestFunc expresses the intent of origin to follow target. The
// created edge is Pending when the target account is private, Active
// otherwise.
type FollowRequestFunc func(ns string, origin, target uint64) (*follow.Follow, error)

// FollowRequest constructs the request operation of the follow state machine.
func FollowRequest(
	blocks block.Service,
	follows follow.Service,
	users user.Service,
	notify NotifyFunc,
) FollowRequestFunc {
	return func(ns string, origin, target uint64) (*follow.Follow, error) {
		if origin == target {
			return nil, wrapError(ErrSelfFollow, "%d", origin)
		}

		t, err := fetchUser(users, ns, target)
		if err != nil {
			return nil, err
		}

		if t.Status != user.StatusActive {
			return nil, wrapError(ErrNotFound, "user %d", target)
		}

		blocked, err := isBlocked(blocks, ns, origin, target)
		if err != nil {
			return nil, err
		}

		if blocked {
			return nil, wrapError(ErrBlocked, "%d and %d", origin, target)
		}

		fs, err := follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{origin},
			ToIDs:   []uint64{target},
		})
		if err != nil {
			return nil, err
		}

		if len(fs) > 0 {
			switch fs[0].State {
			case follow.StateActive:
				return nil, wrapError(ErrAlreadyFollowing, "%d -> %d", origin, target)
			case follow.StatePending:
				return nil, wrapError(ErrRequestAlreadySent, "%d -> %d", origin, target)
			}
		}

		state := follow.StateActive
		kind := notification.KindNewFollower

		if t.Privacy == user.PrivacyPrivate {
			state = follow.StatePending
			kind = notification.KindFollowRequest
		}

		f, err := follows.Put(ns, &follow.Follow{
			FromID: origin,
			State:  state,
			ToID:   target,
		})
		if err != nil {
			return nil, err
		}

		// A failed notification write never fails the follow.
		_ = notify(ns, target, origin, kind, origin)

		return f, nil
	}
}

// FollowAcceptFunc turns the pending request of follower into an active edge.
type FollowAcceptFunc func(ns string, origin, follower uint64) (*follow.Follow, error)

// FollowAccept constructs the accept operation of the follow state machine.
func FollowAccept(
	follows follow.Service,
	notify NotifyFunc,
) FollowAcceptFunc {
	return func(ns string, origin, follower uint64) (*follow.Follow, error) {
		fs, err := follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{follower},
			States:  []follow.State{follow.StatePending},
			ToIDs:   []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		if len(fs) == 0 {
			return nil, wrapError(ErrNotFound, "request %d -> %d", follower, origin)
		}

		f := fs[0]
		f.State = follow.StateActive

		f, err = follows.Put(ns, f)
		if err != nil {
			return nil, err
		}

		_ = notify(ns, follower, origin, notification.KindFollowAccepted, origin)

		return f, nil
	}
}

// FollowRejectFunc drops the pending request of follower without creating an
// edge or a notification.
type FollowRejectFunc func(ns string, origin, follower uint64) error

// FollowReject constructs the reject operation of the follow state machine.
func FollowReject(follows follow.Service) FollowRejectFunc {
	return func(ns string, origin, follower uint64) error {
		fs, err := follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{follower},
			States:  []follow.State{follow.StatePending},
			ToIDs:   []uint64{origin},
		})
		if err != nil {
			return err
		}

		if len(fs) == 0 {
			return wrapError(ErrNotFound, "request %d -> %d", follower, origin)
		}

		return follows.Delete(ns, follower, origin)
	}
}

// FollowCancelFunc withdraws the pending request of origin.
type FollowCancelFunc func(ns string, origin, target uint64) error

// FollowCancel constructs the cancel operation of the follow state machine.
func FollowCancel(follows follow.Service) FollowCancelFunc {
	return func(ns string, origin, target uint64) error {
		fs, err := follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{origin},
			States:  []follow.State{follow.StatePending},
			ToIDs:   []uint64{target},
		})
		if err != nil {
			return err
		}

		if len(fs) == 0 {
			return wrapError(ErrNotFound, "request %d -> %d", origin, target)
		}

		return follows.Delete(ns, origin, target)
	}
}

// UnfollowFunc removes the edge of origin towards target regardless of its
// state.
type UnfollowFunc func(ns string, origin, target uint64) error

// Unfollow constructs the unfollow operation of the follow state machine.
func Unfollow(follows follow.Service) UnfollowFunc {
	return func(ns string, origin, target uint64) error {
		fs, err := follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{origin},
			ToIDs:   []uint64{target},
		})
		if err != nil {
			return err
		}

		if len(fs) == 0 {
			return wrapError(ErrNotFollowing, "%d -> %d", origin, target)
		}

		return follows.Delete(ns, origin, target)
	}
}

// BlockCreateFunc denies all visibility between origin and target and severs
// existing follow edges in both directions.
type BlockCreateFunc func(ns string, origin, target uint64) (*block.Block, error)

// BlockCreate constructs the block operation.
func BlockCreate(
	blocks block.Service,
	follows follow.Service,
) BlockCreateFunc {
	return func(ns string, origin, target uint64) (*block.Block, error) {
		if origin == target {
			return nil, wrapError(ErrInvalidEntity, "self block")
		}

		b, err := blocks.Put(ns, &block.Block{
			FromID: origin,
			ToID:   target,
		})
		if err != nil {
			return nil, err
		}

		for _, pair := range [][2]uint64{{origin, target}, {target, origin}} {
			fs, err := follows.Query(ns, follow.QueryOptions{
				FromIDs: []uint64{pair[0]},
				ToIDs:   []uint64{pair[1]},
			})
			if err != nil {
				return nil, err
			}

			if len(fs) > 0 {
				if err := follows.Delete(ns, pair[0], pair[1]); err != nil {
					return nil, err
				}
			}
		}

		return b, nil
	}
}

// BlockDeleteFunc lifts the block of origin towards target.
type BlockDeleteFunc func(ns string, origin, target uint64) error

// BlockDelete constructs the unblock operation.
func BlockDelete(blocks block.Service) BlockDeleteFunc {
	return func(ns string, origin, target uint64) error {
		return blocks.Delete(ns, origin, target)
	}
}

// MuteCreateFunc silences target in the ranked feeds of origin.
type MuteCreateFunc func(ns string, origin, target uint64) (*mute.Mute, error)

// MuteCreate constructs the mute operation.
func MuteCreate(mutes mute.Service) MuteCreateFunc {
	return func(ns string, origin, target uint64) (*mute.Mute, error) {
		if origin == target {
			return nil, wrapError(ErrInvalidEntity, "self mute")
		}

		return mutes.Put(ns, &mute.Mute{
			FromID: origin,
			ToID:   target,
		})
	}
}

// MuteDeleteFunc lifts the mute of origin towards target.
type MuteDeleteFunc func(ns string, origin, target uint64) error

// MuteDelete constructs the unmute operation.
func MuteDelete(mutes mute.Service) MuteDeleteFunc {
	return func(ns string, origin, target uint64) error {
		return mutes.Delete(ns, origin, target)
	}
}
