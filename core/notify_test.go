package core

import (
	"testing"

	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

func TestNotifySelfSuppressed(t *testing.T) {
	var (
		notifications = notification.MemService()

		notify = Notify(notifications)
	)

	err := notify(namespace, 11, 11, notification.KindLike, 1)
	if err != nil {
		t.Fatal(err)
	}

	nl, err := notifications.Query(namespace, notification.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(nl), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestNotifyPreference(t *testing.T) {
	var (
		notifications = notification.MemService()

		notify = Notify(notifications)
	)

	recipient := uint64(21)
	actor := uint64(22)

	_, err := notifications.PreferencePut(namespace, &notification.Preference{
		MutedLikes: true,
		UserID:     recipient,
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, kind := range []notification.Kind{
		notification.KindComment,
		notification.KindLike,
		notification.KindNewFollower,
	} {
		if err := notify(namespace, recipient, actor, kind, 1); err != nil {
			t.Fatal(err)
		}
	}

	nl, err := notifications.Query(namespace, notification.QueryOptions{
		RecipientIDs: []uint64{recipient},
	})
	if err != nil {
		t.Fatal(err)
	}

	// The muted kind is dropped, the others are stored.
	if have, want := len(nl), 2; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	for _, n := range nl {
		if n.Kind == notification.KindLike {
			t.Errorf("have %v, want suppressed", n.Kind)
		}
	}
}

func TestNotifyMissingPreference(t *testing.T) {
	var (
		notifications = notification.MemService()

		notify = Notify(notifications)
	)

	err := notify(namespace, 31, 32, notification.KindComment, 1)
	if err != nil {
		t.Fatal(err)
	}

	nl, err := notifications.Query(namespace, notification.QueryOptions{
		RecipientIDs: []uint64{31},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(nl), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestNotificationRead(t *testing.T) {
	var (
		notifications = notification.MemService()

		read = NotificationRead(notifications)
	)

	recipient := uint64(41)

	n, err := notifications.Put(namespace, &notification.Notification{
		ActorID:     42,
		Kind:        notification.KindLike,
		RecipientID: recipient,
		RefID:       1,
	})
	if err != nil {
		t.Fatal(err)
	}

	n, err = read(namespace, recipient, n.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := n.Read, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Repeat reads are idempotent.
	if _, err := read(namespace, recipient, n.ID); err != nil {
		t.Fatal(err)
	}

	_, err = read(namespace, recipient+1, n.ID)
	if !IsUnauthorized(err) {
		t.Errorf("have %v, want unauthorized", err)
	}

	_, err = read(namespace, recipient, n.ID+999999)
	if !IsNotFound(err) {
		t.Errorf("have %v, want not found", err)
	}
}

func TestNotificationList(t *testing.T) {
	var (
		notifications = notification.MemService()
		users         = user.MemService()

		list = NotificationList(notifications, users)
	)

	recipient := createUser(t, users, user.PrivacyPublic, user.StatusActive)
	actor := createUser(t, users, user.PrivacyPublic, user.StatusActive)

	for _, kind := range []notification.Kind{
		notification.KindNewFollower,
		notification.KindLike,
	} {
		_, err := notifications.Put(namespace, &notification.Notification{
			ActorID:     actor.ID,
			Kind:        kind,
			RecipientID: recipient.ID,
			RefID:       1,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	feed, err := list(namespace, recipient.ID, notification.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Notifications), 2; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if _, ok := feed.UserMap[actor.ID]; !ok {
		t.Errorf("have %v, want actor present", feed.UserMap)
	}
}

func TestPreferenceRoundtrip(t *testing.T) {
	var (
		notifications = notification.MemService()

		get    = PreferenceGet(notifications)
		update = PreferenceUpdate(notifications)
	)

	origin := uint64(51)

	p, err := get(namespace, origin)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := p.MutedComments, false; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = update(namespace, origin, &notification.Preference{
		MutedComments: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	p, err = get(namespace, origin)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := p.MutedComments, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
