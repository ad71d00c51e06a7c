package core

import (
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/service/community"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// PostCreateFunc stores a new post for the origin. Posting into a community
// requires membership and no ban.
type PostCreateFunc func(ns string, origin uint64, p *post.Post) (*post.Post, error)

// PostCreate constructs the post creation operation.
func PostCreate(
	communities community.Service,
	follows follow.Service,
	posts post.Service,
	notify NotifyFunc,
) PostCreateFunc {
	return func(ns string, origin uint64, p *post.Post) (*post.Post, error) {
		p.OwnerID = origin

		if p.Visibility == "" {
			p.Visibility = post.VisibilityPublic
		}

		if p.CommunityID != 0 {
			ms, err := communities.Query(ns, community.QueryOptions{
				CommunityIDs: []uint64{p.CommunityID},
				UserIDs:      []uint64{origin},
			})
			if err != nil {
				return nil, err
			}

			if len(ms) == 0 {
				return nil, wrapError(ErrUnauthorized, "not a member of community %d", p.CommunityID)
			}

			bans, err := communities.BansQuery(ns, community.QueryOptions{
				CommunityIDs: []uint64{p.CommunityID},
				UserIDs:      []uint64{origin},
			})
			if err != nil {
				return nil, err
			}

			if len(bans) > 0 {
				return nil, wrapError(ErrUnauthorized, "banned from community %d", p.CommunityID)
			}
		}

		p, err := posts.Put(ns, p)
		if err != nil {
			return nil, err
		}

		fs, err := follows.Query(ns, follow.QueryOptions{
			States: []follow.State{follow.StateActive},
			ToIDs:  []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		for _, id := range fs.FromIDs() {
			_ = notify(ns, id, origin, notification.KindNewPost, p.ID)
		}

		return p, nil
	}
}

// PostUpdateFunc applies changes of the owner to the stored post.
type PostUpdateFunc func(
	ns string,
	origin, id uint64,
	update *post.Post,
) (*post.Post, error)

// PostUpdate constructs the post update operation.
func PostUpdate(posts post.Service) PostUpdateFunc {
	return func(
		ns string,
		origin, id uint64,
		update *post.Post,
	) (*post.Post, error) {
		p, err := lookupPost(posts, ns, id)
		if err != nil {
			return nil, err
		}

		if p.OwnerID != origin {
			return nil, wrapError(ErrUnauthorized, "post %d", id)
		}

		p.Content = update.Content
		p.Edited = true
		p.EditedAt = time.Now().UTC()
		p.Emotions = update.Emotions
		p.Location = update.Location
		p.Title = update.Title

		if update.Visibility != "" {
			p.Visibility = update.Visibility
		}

		return posts.Put(ns, p)
	}
}

// PostDeleteFunc soft-deletes the post of the owner, repeated deletes are
// no-ops.
type PostDeleteFunc func(ns string, origin, id uint64) error

// PostDelete constructs the post deletion operation.
func PostDelete(posts post.Service) PostDeleteFunc {
	return func(ns string, origin, id uint64) error {
		ps, err := posts.Query(ns, post.QueryOptions{
			IDs: []uint64{id},
		})
		if err != nil {
			return err
		}

		if len(ps) == 0 {
			return nil
		}

		p := ps[0]

		if p.OwnerID != origin {
			return wrapError(ErrUnauthorized, "post %d", id)
		}

		if p.Deleted {
			return nil
		}

		p.Deleted = true

		_, err = posts.Put(ns, p)

		return err
	}
}

// PostRetrieveFunc returns the post if the origin is allowed to see it,
// ErrNotFound otherwise. Denials never disclose whether the post exists.
type PostRetrieveFunc func(ns string, origin, id uint64) (*post.Post, error)

// PostRetrieve constructs the gated single post fetch.
func PostRetrieve(
	posts post.Service,
	users user.Service,
	postVisible PostVisibleFunc,
) PostRetrieveFunc {
	return func(ns string, origin, id uint64) (*post.Post, error) {
		p, err := lookupPost(posts, ns, id)
		if err != nil {
			return nil, err
		}

		owner, err := fetchUser(users, ns, p.OwnerID)
		if err != nil {
			if IsNotFound(err) {
				return nil, wrapError(ErrNotFound, "post %d", id)
			}

			return nil, err
		}

		ok, err := postVisible(ns, origin, owner, p.Visibility)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, wrapError(ErrNotFound, "post %d", id)
		}

		return p, nil
	}
}

func lookupPost(posts post.Service, ns string, id uint64) (*post.Post, error) {
	ps, err := posts.Query(ns, post.QueryOptions{
		Deleted: &defaultDeleted,
		IDs:     []uint64{id},
	})
	if err != nil {
		return nil, err
	}

	if len(ps) == 0 {
		return nil, wrapError(ErrNotFound, "post %d", id)
	}

	return ps[0], nil
}
