package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
)

// NotificationList returns the notifications of the current user, newest
// first.
func NotificationList(fn core.NotificationListFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		opts, err := extractNotificationOpts(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		feed, err := fn(namespaceFromContext(ctx), currentUser.ID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(feed.Notifications) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadNotifications{feed: feed})
	}
}

// NotificationRead marks a received notification as read.
func NotificationRead(fn core.NotificationReadFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractNotificationID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		n, err := fn(namespaceFromContext(ctx), currentUser.ID, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadNotification{notification: n})
	}
}

// PreferenceRetrieve returns the notification opt-outs of the current user.
func PreferenceRetrieve(fn core.PreferenceGetFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		p, err := fn(namespaceFromContext(ctx), currentUser.ID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadPreference{preference: p})
	}
}

// PreferenceUpdate stores the notification opt-outs of the current user.
func PreferenceUpdate(fn core.PreferenceUpdateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			p           = payloadPreference{}
		)

		err := json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		updated, err := fn(namespaceFromContext(ctx), currentUser.ID, p.preference)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadPreference{preference: updated})
	}
}

type payloadNotification struct {
	notification *notification.Notification
}

func (p *payloadNotification) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ActorID   string            `json:"actor_id"`
		ID        string            `json:"id"`
		Kind      notification.Kind `json:"kind"`
		Read      bool              `json:"read"`
		RefID     string            `json:"ref_id,omitempty"`
		CreatedAt time.Time         `json:"created_at"`
		UpdatedAt time.Time         `json:"updated_at"`
	}{
		ActorID:   strconv.FormatUint(p.notification.ActorID, 10),
		ID:        strconv.FormatUint(p.notification.ID, 10),
		Kind:      p.notification.Kind,
		Read:      p.notification.Read,
		RefID:     formatOptionalID(p.notification.RefID),
		CreatedAt: p.notification.CreatedAt,
		UpdatedAt: p.notification.UpdatedAt,
	})
}

type payloadNotifications struct {
	feed *core.NotificationFeed
}

func (p *payloadNotifications) MarshalJSON() ([]byte, error) {
	ns := []*payloadNotification{}

	for _, n := range p.feed.Notifications {
		ns = append(ns, &payloadNotification{notification: n})
	}

	return json.Marshal(struct {
		Notifications      []*payloadNotification `json:"notifications"`
		NotificationsCount int                    `json:"notifications_count"`
		Users              *payloadUserMap        `json:"users"`
		UsersCount         int                    `json:"users_count"`
	}{
		Notifications:      ns,
		NotificationsCount: len(ns),
		Users:              &payloadUserMap{userMap: p.feed.UserMap},
		UsersCount:         len(p.feed.UserMap),
	})
}

type payloadPreference struct {
	preference *notification.Preference
}

func (p *payloadPreference) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MutedComments bool      `json:"muted_comments"`
		MutedFollows  bool      `json:"muted_follows"`
		MutedLikes    bool      `json:"muted_likes"`
		MutedNewPosts bool      `json:"muted_new_posts"`
		UpdatedAt     time.Time `json:"updated_at"`
	}{
		MutedComments: p.preference.MutedComments,
		MutedFollows:  p.preference.MutedFollows,
		MutedLikes:    p.preference.MutedLikes,
		MutedNewPosts: p.preference.MutedNewPosts,
		UpdatedAt:     p.preference.UpdatedAt,
	})
}

func (p *payloadPreference) UnmarshalJSON(raw []byte) error {
	f := struct {
		MutedComments bool `json:"muted_comments"`
		MutedFollows  bool `json:"muted_follows"`
		MutedLikes    bool `json:"muted_likes"`
		MutedNewPosts bool `json:"muted_new_posts"`
	}{}

	err := json.Unmarshal(raw, &f)
	if err != nil {
		return err
	}

	p.preference = &notification.Preference{
		MutedComments: f.MutedComments,
		MutedFollows:  f.MutedFollows,
		MutedLikes:    f.MutedLikes,
		MutedNewPosts: f.MutedNewPosts,
	}

	return nil
}
