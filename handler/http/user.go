package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// UserCreate registers a new account.
func UserCreate(fn core.UserCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		p := payloadUser{}

		err := json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		u, err := fn(namespaceFromContext(ctx), p.user)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadUser{user: u})
	}
}

// UserRetrieve returns the profile of the requested user as seen by the
// current user.
func UserRetrieve(fn core.UserRetrieveFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		profile, err := fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadProfile{profile: profile})
	}
}

// UserRetrieveMe returns the profile of the current user.
func UserRetrieveMe(fn core.UserRetrieveFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		profile, err := fn(namespaceFromContext(ctx), currentUser.ID, currentUser.ID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadProfile{profile: profile})
	}
}

// UserSearch returns all users matching the search query.
func UserSearch(fn core.UserSearchFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		us, err := fn(namespaceFromContext(ctx), currentUser.ID, extractQuery(r))
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(us) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadUsers{users: us})
	}
}

// FollowerList returns the followers of the current user.
func FollowerList(fn core.FollowerListFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		us, err := fn(namespaceFromContext(ctx), currentUser.ID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(us) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadUsers{users: us})
	}
}

// FollowingList returns the users the current user follows.
func FollowingList(fn core.FollowingListFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		us, err := fn(namespaceFromContext(ctx), currentUser.ID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(us) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadUsers{users: us})
	}
}

type payloadProfile struct {
	profile *core.Profile
}

func (p *payloadProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FollowState follow.State `json:"follow_state,omitempty"`
		FollowedBy  bool         `json:"followed_by"`
		IsFollowing bool         `json:"is_following"`
		User        *payloadUser `json:"user"`
	}{
		FollowState: p.profile.FollowState,
		FollowedBy:  p.profile.FollowedBy,
		IsFollowing: p.profile.IsFollowing,
		User:        &payloadUser{user: p.profile.User},
	})
}

type payloadUser struct {
	user *user.User
}

func (p *payloadUser) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AvatarURL string       `json:"avatar_url,omitempty"`
		Bio       string       `json:"bio,omitempty"`
		Birthdate string       `json:"birthdate,omitempty"`
		Email     string       `json:"email"`
		Fullname  string       `json:"fullname"`
		ID        uint64       `json:"id"`
		IDString  string       `json:"id_string"`
		Privacy   user.Privacy `json:"privacy"`
		Status    user.Status  `json:"status"`
		Username  string       `json:"username"`
		Verified  bool         `json:"verified"`
		CreatedAt time.Time    `json:"created_at"`
		UpdatedAt time.Time    `json:"updated_at"`
	}{
		AvatarURL: p.user.AvatarURL,
		Bio:       p.user.Bio,
		Birthdate: p.user.Birthdate,
		Email:     p.user.Email,
		Fullname:  p.user.Fullname,
		ID:        p.user.ID,
		IDString:  strconv.FormatUint(p.user.ID, 10),
		Privacy:   p.user.Privacy,
		Status:    p.user.Status,
		Username:  p.user.Username,
		Verified:  p.user.Verified,
		CreatedAt: p.user.CreatedAt,
		UpdatedAt: p.user.UpdatedAt,
	})
}

func (p *payloadUser) UnmarshalJSON(raw []byte) error {
	f := struct {
		AvatarURL string       `json:"avatar_url,omitempty"`
		Bio       string       `json:"bio,omitempty"`
		Birthdate string       `json:"birthdate,omitempty"`
		Email     string       `json:"email"`
		Fullname  string       `json:"fullname"`
		Privacy   user.Privacy `json:"privacy"`
		Username  string       `json:"username"`
	}{}

	err := json.Unmarshal(raw, &f)
	if err != nil {
		return err
	}

	p.user = &user.User{
		AvatarURL: f.AvatarURL,
		Bio:       f.Bio,
		Birthdate: f.Birthdate,
		Email:     f.Email,
		Fullname:  f.Fullname,
		Privacy:   f.Privacy,
		Username:  f.Username,
	}

	return nil
}

type payloadUsers struct {
	users user.List
}

func (p *payloadUsers) MarshalJSON() ([]byte, error) {
	us := []*payloadUser{}

	for _, u := range p.users {
		us = append(us, &payloadUser{user: u})
	}

	return json.Marshal(struct {
		Users      []*payloadUser `json:"users"`
		UsersCount int            `json:"users_count"`
	}{
		Users:      us,
		UsersCount: len(us),
	})
}

type payloadUserMap struct {
	userMap user.Map
}

func (p *payloadUserMap) MarshalJSON() ([]byte, error) {
	m := map[string]*payloadUser{}

	for id, u := range p.userMap {
		m[strconv.FormatUint(id, 10)] = &payloadUser{user: u}
	}

	return json.Marshal(m)
}
