package core

import (
	"sort"

	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// NotifyFunc delivers a notification to the recipient if the recipient opted
// in to the kind. Delivery is attempted at most once, callers are expected to
// discard the returned error so a failed write never fails the action which
// triggered it.
type NotifyFunc func(
	ns string,
	recipient, actor uint64,
	kind notification.Kind,
	refID uint64,
) error

// Notify constructs the delivery gate in front of the notification store.
func Notify(notifications notification.Service) NotifyFunc {
	return func(
		ns string,
		recipient, actor uint64,
		kind notification.Kind,
		refID uint64,
	) error {
		// Own actions never notify.
		if recipient == actor {
			return nil
		}

		p, err := notifications.PreferenceGet(ns, recipient)
		if err != nil && !notification.IsNotFound(err) {
			return err
		}

		// A missing preference record opts in to everything.
		if !p.Allows(kind) {
			return nil
		}

		_, err = notifications.Put(ns, &notification.Notification{
			ActorID:     actor,
			Kind:        kind,
			RecipientID: recipient,
			RefID:       refID,
		})

		return err
	}
}

// NotificationFeed is the composite to transport notifications together with
// the acting users.
type NotificationFeed struct {
	Notifications notification.List
	UserMap       user.Map
}

// NotificationListFunc returns the notifications of the origin, newest first.
type NotificationListFunc func(
	ns string,
	origin uint64,
	opts notification.QueryOptions,
) (*NotificationFeed, error)

// NotificationList constructs the listing of received notifications.
func NotificationList(
	notifications notification.Service,
	users user.Service,
) NotificationListFunc {
	return func(
		ns string,
		origin uint64,
		opts notification.QueryOptions,
	) (*NotificationFeed, error) {
		nl, err := notifications.Query(ns, notification.QueryOptions{
			Before:       opts.Before,
			Kinds:        opts.Kinds,
			Limit:        opts.Limit,
			Read:         opts.Read,
			RecipientIDs: []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		sort.Sort(nl)

		um, err := user.MapFromIDs(users, ns, nl.ActorIDs()...)
		if err != nil {
			return nil, err
		}

		return &NotificationFeed{
			Notifications: nl,
			UserMap:       um,
		}, nil
	}
}

// NotificationReadFunc marks a received notification as read.
type NotificationReadFunc func(ns string, origin, id uint64) (*notification.Notification, error)

// NotificationRead constructs the read transition for a notification.
func NotificationRead(
	notifications notification.Service,
) NotificationReadFunc {
	return func(ns string, origin, id uint64) (*notification.Notification, error) {
		nl, err := notifications.Query(ns, notification.QueryOptions{
			IDs: []uint64{id},
		})
		if err != nil {
			return nil, err
		}

		if len(nl) == 0 {
			return nil, wrapError(ErrNotFound, "notification %d", id)
		}

		n := nl[0]

		if n.RecipientID != origin {
			return nil, wrapError(ErrUnauthorized, "notification %d", id)
		}

		if n.Read {
			return n, nil
		}

		n.Read = true

		return notifications.Put(ns, n)
	}
}

// PreferenceGetFunc returns the notification opt-outs of the origin, the zero
// value when none are stored.
type PreferenceGetFunc func(ns string, origin uint64) (*notification.Preference, error)

// PreferenceGet constructs the preference read.
func PreferenceGet(
	notifications notification.Service,
) PreferenceGetFunc {
	return func(ns string, origin uint64) (*notification.Preference, error) {
		p, err := notifications.PreferenceGet(ns, origin)
		if err != nil {
			if notification.IsNotFound(err) {
				return &notification.Preference{UserID: origin}, nil
			}

			return nil, err
		}

		return p, nil
	}
}

// PreferenceUpdateFunc stores the notification opt-outs of the origin.
type PreferenceUpdateFunc func(
	ns string,
	origin uint64,
	preference *notification.Preference,
) (*notification.Preference, error)

// PreferenceUpdate constructs the preference write.
func PreferenceUpdate(
	notifications notification.Service,
) PreferenceUpdateFunc {
	return func(
		ns string,
		origin uint64,
		preference *notification.Preference,
	) (*notification.Preference, error) {
		preference.UserID = origin

		return notifications.PreferencePut(ns, preference)
	}
}
