package core

import (
	"fmt"
	"testing"

	"github.com/joaoportolan93/Dream-Share-oficial/service/block"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

func TestFollowRequestPublicTarget(t *testing.T) {
	var (
		blocks        = block.MemService()
		follows       = follow.MemService()
		notifications = notification.MemService()
		users         = user.MemService()

		fn = FollowRequest(blocks, follows, users, Notify(notifications))
	)

	origin := createUser(t, users, user.PrivacyPublic, user.StatusActive)
	target := createUser(t, users, user.PrivacyPublic, user.StatusActive)

	f, err := fn(namespace, origin.ID, target.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.State, follow.StateActive; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	nl, err := notifications.Query(namespace, notification.QueryOptions{
		RecipientIDs: []uint64{target.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(nl), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := nl[0].Kind, notification.KindNewFollower; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFollowRequestPrivateTarget(t *testing.T) {
	var (
		blocks        = block.MemService()
		follows       = follow.MemService()
		notifications = notification.MemService()
		users         = user.MemService()

		fn = FollowRequest(blocks, follows, users, Notify(notifications))
	)

	origin := createUser(t, users, user.PrivacyPublic, user.StatusActive)
	target := createUser(t, users, user.PrivacyPrivate, user.StatusActive)

	f, err := fn(namespace, origin.ID, target.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.State, follow.StatePending; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	nl, err := notifications.Query(namespace, notification.QueryOptions{
		Kinds:        []notification.Kind{notification.KindFollowRequest},
		RecipientIDs: []uint64{target.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(nl), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFollowRequestErrors(t *testing.T) {
	var (
		blocks        = block.MemService()
		follows       = follow.MemService()
		notifications = notification.MemService()
		users         = user.MemService()

		fn = FollowRequest(blocks, follows, users, Notify(notifications))
	)

	origin := createUser(t, users, user.PrivacyPublic, user.StatusActive)
	target := createUser(t, users, user.PrivacyPublic, user.StatusActive)
	hidden := createUser(t, users, user.PrivacyPrivate, user.StatusActive)

	_, err := fn(namespace, origin.ID, origin.ID)
	if !IsSelfFollow(err) {
		t.Errorf("have %v, want self follow", err)
	}

	_, err = fn(namespace, origin.ID, origin.ID+999999)
	if !IsNotFound(err) {
		t.Errorf("have %v, want not found", err)
	}

	if _, err := fn(namespace, origin.ID, target.ID); err != nil {
		t.Fatal(err)
	}

	_, err = fn(namespace, origin.ID, target.ID)
	if !IsAlreadyFollowing(err) {
		t.Errorf("have %v, want already following", err)
	}

	if _, err := fn(namespace, origin.ID, hidden.ID); err != nil {
		t.Fatal(err)
	}

	_, err = fn(namespace, origin.ID, hidden.ID)
	if !IsRequestAlreadySent(err) {
		t.Errorf("have %v, want request already sent", err)
	}

	blocked := createUser(t, users, user.PrivacyPublic, user.StatusActive)

	_, err = blocks.Put(namespace, &block.Block{
		FromID: blocked.ID,
		ToID:   origin.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = fn(namespace, origin.ID, blocked.ID)
	if !IsBlocked(err) {
		t.Errorf("have %v, want blocked", err)
	}
}

func TestFollowAccept(t *testing.T) {
	var (
		blocks        = block.MemService()
		follows       = follow.MemService()
		notifications = notification.MemService()
		users         = user.MemService()

		request = FollowRequest(blocks, follows, users, Notify(notifications))
		accept  = FollowAccept(follows, Notify(notifications))
	)

	origin := createUser(t, users, user.PrivacyPublic, user.StatusActive)
	target := createUser(t, users, user.PrivacyPrivate, user.StatusActive)

	if _, err := request(namespace, origin.ID, target.ID); err != nil {
		t.Fatal(err)
	}

	f, err := accept(namespace, target.ID, origin.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := f.State, follow.StateActive; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	nl, err := notifications.Query(namespace, notification.QueryOptions{
		Kinds:        []notification.Kind{notification.KindFollowAccepted},
		RecipientIDs: []uint64{origin.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(nl), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = accept(namespace, target.ID, origin.ID)
	if !IsNotFound(err) {
		t.Errorf("have %v, want not found", err)
	}
}

func TestFollowRejectAndCancel(t *testing.T) {
	var (
		blocks        = block.MemService()
		follows       = follow.MemService()
		notifications = notification.MemService()
		users         = user.MemService()

		request = FollowRequest(blocks, follows, users, Notify(notifications))
		reject  = FollowReject(follows)
		cancel  = FollowCancel(follows)
	)

	origin := createUser(t, users, user.PrivacyPublic, user.StatusActive)
	target := createUser(t, users, user.PrivacyPrivate, user.StatusActive)

	if _, err := request(namespace, origin.ID, target.ID); err != nil {
		t.Fatal(err)
	}

	if err := reject(namespace, target.ID, origin.ID); err != nil {
		t.Fatal(err)
	}

	fs, err := follows.Query(namespace, follow.QueryOptions{
		FromIDs: []uint64{origin.ID},
		ToIDs:   []uint64{target.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(fs), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, err := request(namespace, origin.ID, target.ID); err != nil {
		t.Fatal(err)
	}

	if err := cancel(namespace, origin.ID, target.ID); err != nil {
		t.Fatal(err)
	}

	err = cancel(namespace, origin.ID, target.ID)
	if !IsNotFound(err) {
		t.Errorf("have %v, want not found", err)
	}
}

func TestUnfollow(t *testing.T) {
	var (
		blocks        = block.MemService()
		follows       = follow.MemService()
		notifications = notification.MemService()
		users         = user.MemService()

		request  = FollowRequest(blocks, follows, users, Notify(notifications))
		unfollow = Unfollow(follows)
	)

	origin := createUser(t, users, user.PrivacyPublic, user.StatusActive)
	target := createUser(t, users, user.PrivacyPublic, user.StatusActive)

	if _, err := request(namespace, origin.ID, target.ID); err != nil {
		t.Fatal(err)
	}

	if err := unfollow(namespace, origin.ID, target.ID); err != nil {
		t.Fatal(err)
	}

	err := unfollow(namespace, origin.ID, target.ID)
	if !IsNotFollowing(err) {
		t.Errorf("have %v, want not following", err)
	}
}

func TestBlockCreateSeversEdges(t *testing.T) {
	var (
		blocks  = block.MemService()
		follows = follow.MemService()

		fn = BlockCreate(blocks, follows)
	)

	one := uint64(101)
	two := uint64(102)

	for _, pair := range [][2]uint64{{one, two}, {two, one}} {
		_, err := follows.Put(namespace, &follow.Follow{
			FromID: pair[0],
			State:  follow.StateActive,
			ToID:   pair[1],
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if _, err := fn(namespace, one, two); err != nil {
		t.Fatal(err)
	}

	fs, err := follows.Query(namespace, follow.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(fs), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Repeat blocks are idempotent.
	if _, err := fn(namespace, one, two); err != nil {
		t.Fatal(err)
	}

	_, err = fn(namespace, one, one)
	if !IsInvalidEntity(err) {
		t.Errorf("have %v, want invalid entity", err)
	}
}

var testUserID uint64

func createUser(
	t *testing.T,
	users user.Service,
	privacy user.Privacy,
	status user.Status,
) *user.User {
	t.Helper()

	testUserID++

	u, err := users.Put(namespace, &user.User{
		Email:    testEmail(testUserID),
		Privacy:  privacy,
		Status:   status,
		Username: testUsername(testUserID),
	})
	if err != nil {
		t.Fatal(err)
	}

	return u
}

func testEmail(id uint64) string {
	return fmt.Sprintf("user%d@test.dev", id)
}

func testUsername(id uint64) string {
	return fmt.Sprintf("user%d", id)
}
