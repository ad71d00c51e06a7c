package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
	"github.com/joaoportolan93/Dream-Share-oficial/service/community"
)

// CommunityJoin adds the current user to a community.
func CommunityJoin(fn core.CommunityJoinFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractCommunityID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		m, err := fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadMembership{membership: m})
	}
}

// CommunityLeave removes the current user from a community.
func CommunityLeave(fn core.CommunityLeaveFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractCommunityID(r)
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

// CommunityBanCreate excludes a user from a community on behalf of a
// moderator.
func CommunityBanCreate(fn core.CommunityBanCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractCommunityID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		target, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		_, err = fn(namespaceFromContext(ctx), currentUser.ID, id, target)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, nil)
	}
}

type payloadMembership struct {
	membership *community.Membership
}

func (p *payloadMembership) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CommunityID string         `json:"community_id"`
		Role        community.Role `json:"role"`
		UserID      string         `json:"user_id"`
		CreatedAt   time.Time      `json:"created_at"`
	}{
		CommunityID: strconv.FormatUint(p.membership.CommunityID, 10),
		Role:        p.membership.Role,
		UserID:      strconv.FormatUint(p.membership.UserID, 10),
		CreatedAt:   p.membership.CreatedAt,
	})
}
