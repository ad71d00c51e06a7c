package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
	"github.com/joaoportolan93/Dream-Share-oficial/service/comment"
)

// CommentCreate stores a reply of the current user on a post.
func CommentCreate(fn core.CommentCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			p           = payloadComment{}
		)

		postID, err := extractPostID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		c, err := fn(namespaceFromContext(ctx), currentUser.ID, postID, p.comment)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadComment{comment: c})
	}
}

// CommentDelete flips the comment of the current user to removed.
func CommentDelete(fn core.CommentDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractCommentID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// CommentUpdate applies an edit of the current user to a comment.
func CommentUpdate(fn core.CommentUpdateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			p           = payloadComment{}
		)

		id, err := extractCommentID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		c, err := fn(namespaceFromContext(ctx), currentUser.ID, id, p.comment.Content)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadComment{comment: c})
	}
}

// CommentThread returns the active comments of a post rendered as a forest.
func CommentThread(fn core.CommentThreadFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		postID, err := extractPostID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		thread, err := fn(namespaceFromContext(ctx), currentUser.ID, postID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(thread.Nodes) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadThread{thread: thread})
	}
}

type payloadComment struct {
	comment *comment.Comment
}

func (p *payloadComment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Content   string         `json:"content"`
		Edited    bool           `json:"edited"`
		ID        string         `json:"id"`
		OwnerID   string         `json:"owner_id"`
		ParentID  string         `json:"parent_id,omitempty"`
		PostID    string         `json:"post_id"`
		Status    comment.Status `json:"status"`
		CreatedAt time.Time      `json:"created_at"`
		UpdatedAt time.Time      `json:"updated_at"`
	}{
		Content:   p.comment.Content,
		Edited:    p.comment.Edited,
		ID:        strconv.FormatUint(p.comment.ID, 10),
		OwnerID:   strconv.FormatUint(p.comment.OwnerID, 10),
		ParentID:  formatOptionalID(p.comment.ParentID),
		PostID:    strconv.FormatUint(p.comment.PostID, 10),
		Status:    p.comment.Status,
		CreatedAt: p.comment.CreatedAt,
		UpdatedAt: p.comment.UpdatedAt,
	})
}

func (p *payloadComment) UnmarshalJSON(raw []byte) error {
	f := struct {
		Content  string `json:"content"`
		ParentID string `json:"parent_id,omitempty"`
	}{}

	err := json.Unmarshal(raw, &f)
	if err != nil {
		return err
	}

	var parentID uint64

	if f.ParentID != "" {
		parentID, err = strconv.ParseUint(f.ParentID, 10, 64)
		if err != nil {
			return err
		}
	}

	p.comment = &comment.Comment{
		Content:  f.Content,
		ParentID: parentID,
	}

	return nil
}

type payloadThread struct {
	thread *core.Thread
}

func (p *payloadThread) MarshalJSON() ([]byte, error) {
	ns := []*payloadThreadNode{}

	for _, n := range p.thread.Nodes {
		ns = append(ns, &payloadThreadNode{node: n})
	}

	return json.Marshal(struct {
		Comments      []*payloadThreadNode `json:"comments"`
		CommentsCount int                  `json:"comments_count"`
		Users         *payloadUserMap      `json:"users"`
		UsersCount    int                  `json:"users_count"`
	}{
		Comments:      ns,
		CommentsCount: len(ns),
		Users:         &payloadUserMap{userMap: p.thread.UserMap},
		UsersCount:    len(p.thread.UserMap),
	})
}

type payloadThreadNode struct {
	node *core.ThreadNode
}

func (p *payloadThreadNode) MarshalJSON() ([]byte, error) {
	children := []*payloadThreadNode{}

	for _, c := range p.node.Children {
		children = append(children, &payloadThreadNode{node: c})
	}

	return json.Marshal(struct {
		Comment *payloadComment      `json:"comment"`
		Replies []*payloadThreadNode `json:"replies"`
	}{
		Comment: &payloadComment{comment: p.node.Comment},
		Replies: children,
	})
}
