package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
)

// FollowRequest expresses the intent of the current user to follow the
// target.
func FollowRequest(fn core.FollowRequestFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		f, err := fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadFollow{follow: f})
	}
}

// FollowAccept approves the pending request of the follower.
func FollowAccept(fn core.FollowAcceptFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		f, err := fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadFollow{follow: f})
	}
}

// FollowReject drops the pending request of the follower.
func FollowReject(fn core.FollowRejectFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
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

// FollowCancel withdraws the pending request of the current user.
func FollowCancel(fn core.FollowCancelFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
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

// Unfollow removes the edge of the current user towards the target.
func Unfollow(fn core.UnfollowFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
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

// BlockCreate denies all visibility between the current user and the target.
func BlockCreate(fn core.BlockCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		_, err = fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, nil)
	}
}

// BlockDelete lifts the block of the current user towards the target.
func BlockDelete(fn core.BlockDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
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

// MuteCreate silences the target in the ranked feeds of the current user.
func MuteCreate(fn core.MuteCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		_, err = fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, nil)
	}
}

// MuteDelete lifts the mute of the current user towards the target.
func MuteDelete(fn core.MuteDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
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

type payloadFollow struct {
	follow *follow.Follow
}

func (p *payloadFollow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FromID    string       `json:"from_id"`
		State     follow.State `json:"state"`
		ToID      string       `json:"to_id"`
		CreatedAt time.Time    `json:"created_at"`
		UpdatedAt time.Time    `json:"updated_at"`
	}{
		FromID:    strconv.FormatUint(p.follow.FromID, 10),
		State:     p.follow.State,
		ToID:      strconv.FormatUint(p.follow.ToID, 10),
		CreatedAt: p.follow.CreatedAt,
		UpdatedAt: p.follow.UpdatedAt,
	})
}
