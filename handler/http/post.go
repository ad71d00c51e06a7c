package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
)

// PostCreate creates a new Post.
func PostCreate(fn core.PostCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			p           = &payloadPost{}
		)

		err := json.NewDecoder(r.Body).Decode(p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		created, err := fn(namespaceFromContext(ctx), currentUser.ID, p.post)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadPost{post: created})
	}
}

// PostDelete flags the Post as deleted.
func PostDelete(fn core.PostDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractPostID(r)
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

// PostRetrieve returns the requested Post if the current user is allowed to
// see it.
func PostRetrieve(fn core.PostRetrieveFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractPostID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		p, err := fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadPost{post: p})
	}
}

// PostUpdate replaces a post with new values.
func PostUpdate(fn core.PostUpdateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			p           = payloadPost{}
		)

		id, err := extractPostID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		updated, err := fn(namespaceFromContext(ctx), currentUser.ID, id, p.post)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadPost{post: updated})
	}
}

type payloadPost struct {
	post *post.Post
}

func (p *payloadPost) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CommunityID string          `json:"community_id,omitempty"`
		Content     string          `json:"content"`
		Edited      bool            `json:"edited"`
		EditedAt    *time.Time      `json:"edited_at,omitempty"`
		Emotions    []string        `json:"emotions,omitempty"`
		ID          string          `json:"id"`
		Location    string          `json:"location,omitempty"`
		OwnerID     string          `json:"owner_id"`
		Title       string          `json:"title"`
		Visibility  post.Visibility `json:"visibility"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}{
		CommunityID: formatOptionalID(p.post.CommunityID),
		Content:     p.post.Content,
		Edited:      p.post.Edited,
		EditedAt:    formatOptionalTime(p.post.EditedAt),
		Emotions:    p.post.Emotions,
		ID:          strconv.FormatUint(p.post.ID, 10),
		Location:    p.post.Location,
		OwnerID:     strconv.FormatUint(p.post.OwnerID, 10),
		Title:       p.post.Title,
		Visibility:  p.post.Visibility,
		CreatedAt:   p.post.CreatedAt,
		UpdatedAt:   p.post.UpdatedAt,
	})
}

func (p *payloadPost) UnmarshalJSON(raw []byte) error {
	f := struct {
		CommunityID string          `json:"community_id,omitempty"`
		Content     string          `json:"content"`
		Emotions    []string        `json:"emotions,omitempty"`
		Location    string          `json:"location,omitempty"`
		Title       string          `json:"title"`
		Visibility  post.Visibility `json:"visibility"`
	}{}

	err := json.Unmarshal(raw, &f)
	if err != nil {
		return err
	}

	var communityID uint64

	if f.CommunityID != "" {
		communityID, err = strconv.ParseUint(f.CommunityID, 10, 64)
		if err != nil {
			return err
		}
	}

	p.post = &post.Post{
		CommunityID: communityID,
		Content:     f.Content,
		Emotions:    f.Emotions,
		Location:    f.Location,
		Title:       f.Title,
		Visibility:  f.Visibility,
	}

	return nil
}

func formatOptionalID(id uint64) string {
	if id == 0 {
		return ""
	}

	return strconv.FormatUint(id, 10)
}

func formatOptionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
