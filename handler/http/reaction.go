package http

import (
	"context"
	"net/http"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
)

// ReactionCreate likes a post on behalf of the current user.
func ReactionCreate(fn core.ReactionCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		postID, err := extractPostID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		_, err = fn(namespaceFromContext(ctx), currentUser.ID, postID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, nil)
	}
}

// ReactionDelete removes the like of the current user from a post.
func ReactionDelete(fn core.ReactionDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		postID, err := extractPostID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = fn(namespaceFromContext(ctx), currentUser.ID, postID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}
