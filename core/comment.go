package core

import (
	"github.com/joaoportolan93/Dream-Share-oficial/service/comment"
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// CommentCreateFunc stores a reply of the origin on a post it is allowed to
// see.
type CommentCreateFunc func(
	ns string,
	origin, postID uint64,
	input *comment.Comment,
) (*comment.Comment, error)

// CommentCreate constructs the comment creation operation.
func CommentCreate(
	comments comment.Service,
	posts post.Service,
	users user.Service,
	postVisible PostVisibleFunc,
	notify NotifyFunc,
) CommentCreateFunc {
	return func(
		ns string,
		origin, postID uint64,
		input *comment.Comment,
	) (*comment.Comment, error) {
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

		if input.ParentID != 0 {
			cs, err := comments.Query(ns, comment.QueryOptions{
				IDs:      []uint64{input.ParentID},
				Statuses: []comment.Status{comment.StatusActive},
			})
			if err != nil {
				return nil, err
			}

			if len(cs) == 0 {
				return nil, wrapError(ErrNotFound, "comment %d", input.ParentID)
			}

			if cs[0].PostID != postID {
				return nil, wrapError(ErrInvalidEntity, "parent belongs to post %d", cs[0].PostID)
			}
		}

		c, err := comments.Put(ns, &comment.Comment{
			Content:  input.Content,
			OwnerID:  origin,
			ParentID: input.ParentID,
			PostID:   postID,
			Status:   comment.StatusActive,
		})
		if err != nil {
			return nil, err
		}

		// A failed notification write never fails the comment.
		_ = notify(ns, p.OwnerID, origin, notification.KindComment, postID)

		return c, nil
	}
}

// CommentUpdateFunc applies an edit of the owner to a comment.
type CommentUpdateFunc func(
	ns string,
	origin, id uint64,
	content string,
) (*comment.Comment, error)

// CommentUpdate constructs the comment edit operation.
func CommentUpdate(comments comment.Service) CommentUpdateFunc {
	return func(
		ns string,
		origin, id uint64,
		content string,
	) (*comment.Comment, error) {
		c, err := lookupComment(comments, ns, id)
		if err != nil {
			return nil, err
		}

		if c.OwnerID != origin {
			return nil, wrapError(ErrUnauthorized, "comment %d", id)
		}

		c.Content = content
		c.Edited = true

		return comments.Put(ns, c)
	}
}

// CommentDeleteFunc flips the comment of the owner to Removed. A comment with
// at least one active reply cannot be removed, threads are torn down bottom
// up.
type CommentDeleteFunc func(ns string, origin, id uint64) error

// CommentDelete constructs the comment deletion operation.
func CommentDelete(comments comment.Service) CommentDeleteFunc {
	return func(ns string, origin, id uint64) error {
		c, err := lookupComment(comments, ns, id)
		if err != nil {
			return err
		}

		if c.OwnerID != origin {
			return wrapError(ErrUnauthorized, "comment %d", id)
		}

		if c.Status == comment.StatusRemoved {
			return nil
		}

		count, err := comments.Count(ns, comment.QueryOptions{
			ParentIDs: []uint64{id},
			Statuses:  []comment.Status{comment.StatusActive},
		})
		if err != nil {
			return err
		}

		if count > 0 {
			return wrapError(ErrHasActiveReplies, "comment %d has %d replies", id, count)
		}

		c.Status = comment.StatusRemoved

		_, err = comments.Put(ns, c)

		return err
	}
}

func lookupComment(
	comments comment.Service,
	ns string,
	id uint64,
) (*comment.Comment, error) {
	cs, err := comments.Query(ns, comment.QueryOptions{
		IDs: []uint64{id},
	})
	if err != nil {
		return nil, err
	}

	if len(cs) == 0 {
		return nil, wrapError(ErrNotFound, "comment %d", id)
	}

	return cs[0], nil
}
