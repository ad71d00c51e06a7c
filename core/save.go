package core

import (
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/save"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// SaveCreateFunc bookmarks a post for the origin, repeated saves are
// idempotent.
type SaveCreateFunc func(ns string, origin, postID uint64) (*save.Save, error)

// SaveCreate constructs the bookmark operation.
func SaveCreate(
	posts post.Service,
	saves save.Service,
	users user.Service,
	postVisible PostVisibleFunc,
) SaveCreateFunc {
	return func(ns string, origin, postID uint64) (*save.Save, error) {
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

		return saves.Put(ns, &save.Save{
			OwnerID: origin,
			PostID:  postID,
		})
	}
}

// SaveDeleteFunc drops the bookmark of the origin.
type SaveDeleteFunc func(ns string, origin, postID uint64) error

// SaveDelete constructs the bookmark removal.
func SaveDelete(saves save.Service) SaveDeleteFunc {
	return func(ns string, origin, postID uint64) error {
		return saves.Delete(ns, origin, postID)
	}
}
