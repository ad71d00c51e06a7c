package core

import (
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/reaction"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// ReactionCreateFunc likes a post on behalf of the origin. A repeated like of
// the same post revives the existing reaction instead of creating a second
// one.
type ReactionCreateFunc func(ns string, origin, postID uint64) (*reaction.Reaction, error)

// ReactionCreate constructs the like operation.
func ReactionCreate(
	posts post.Service,
	reactions reaction.Service,
	users user.Service,
	postVisible PostVisibleFunc,
	notify NotifyFunc,
) ReactionCreateFunc {
	return func(ns string, origin, postID uint64) (*reaction.Reaction, error) {
		p, err := lookupPost(posts, ns, postID)
		if err != nil {
			return nil, err
		}

		owner, err := fetchUser(users, ns, p.OwnerID)
		if err != nil {
			if IsNotFound(err) {
				return nil, wrapError(ErrNotFound, "post %d", postID)
			}

			return nil, err
		}

		ok, err := postVisible(ns, origin, owner, p.Visibility)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, wrapError(ErrNotFound, "post %d", postID)
		}

		rs, err := reactions.Query(ns, reaction.QueryOptions{
			OwnerIDs: []uint64{origin},
			PostIDs:  []uint64{postID},
		})
		if err != nil {
			return nil, err
		}

		if len(rs) > 0 {
			r := rs[0]

			if !r.Deleted {
				return r, nil
			}

			r.Deleted = false

			return reactions.Put(ns, r)
		}

		r, err := reactions.Put(ns, &reaction.Reaction{
			OwnerID: origin,
			PostID:  postID,
		})
		if err != nil {
			return nil, err
		}

		// A failed notification write never fails the like.
		_ = notify(ns, p.OwnerID, origin, notification.KindLike, postID)

		return r, nil
	}
}

// ReactionDeleteFunc withdraws the like of the origin, unknown likes are
// no-ops.
type ReactionDeleteFunc func(ns string, origin, postID uint64) error

// ReactionDelete constructs the unlike operation.
func ReactionDelete(reactions reaction.Service) ReactionDeleteFunc {
	return func(ns string, origin, postID uint64) error {
		rs, err := reactions.Query(ns, reaction.QueryOptions{
			OwnerIDs: []uint64{origin},
			PostIDs:  []uint64{postID},
		})
		if err != nil {
			return err
		}

		if len(rs) == 0 || rs[0].Deleted {
			return nil
		}

		r := rs[0]
		r.Deleted = true

		_, err = reactions.Put(ns, r)

		return err
	}
}
