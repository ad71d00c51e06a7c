package core

import (
	"fmt"
	"testing"

	"github.com/joaoportolan93/Dream-Share-oficial/service/block"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

const namespace = "core_test"

type blockDir int

const (
	blockNone blockDir = iota
	blockOutbound
	blockInbound
)

func TestPostVisibleEnumeration(t *testing.T) {
	var (
		statuses = []user.Status{
			user.StatusActive,
			user.StatusSuspended,
			user.StatusDeactivated,
		}
		privacies = []user.Privacy{
			user.PrivacyPublic,
			user.PrivacyPrivate,
		}
		visibilities = []post.Visibility{
			post.VisibilityPublic,
			post.VisibilityFriends,
			post.VisibilityPrivate,
		}
		blockDirs = []blockDir{
			blockNone,
			blockOutbound,
			blockInbound,
		}
		followStates = []follow.State{
			"",
			follow.StatePending,
			follow.StateActive,
		}
	)

	var (
		blocks  = block.MemService()
		follows = follow.MemService()
		users   = user.MemService()

		visible = PostVisible(blocks, follows)
	)

	id := uint64(1000)

	for _, self := range []bool{false, true} {
		for _, status := range statuses {
			for _, privacy := range privacies {
				for _, vis := range visibilities {
					for _, bd := range blockDirs {
						for _, fs := range followStates {
							if self && (bd != blockNone || fs != "") {
								continue
							}

							id += 2

							owner, err := users.Put(namespace, &user.User{
								Email:    fmt.Sprintf("owner%d@test.dev", id),
								Privacy:  privacy,
								Status:   status,
								Username: fmt.Sprintf("owner%d", id),
							})
							if err != nil {
								t.Fatal(err)
							}

							viewer := owner.ID + 1

							if self {
								viewer = owner.ID
							}

							if bd == blockOutbound {
								_, err := blocks.Put(namespace, &block.Block{
									FromID: viewer,
									ToID:   owner.ID,
								})
								if err != nil {
									t.Fatal(err)
								}
							}

							if bd == blockInbound {
								_, err := blocks.Put(namespace, &block.Block{
									FromID: owner.ID,
									ToID:   viewer,
								})
								if err != nil {
									t.Fatal(err)
								}
							}

							if fs != "" && !self {
								_, err := follows.Put(namespace, &follow.Follow{
									FromID: viewer,
									State:  fs,
									ToID:   owner.ID,
								})
								if err != nil {
									t.Fatal(err)
								}
							}

							want := wantVisible(self, status, privacy, vis, bd, fs)

							have, err := visible(namespace, viewer, owner, vis)
							if err != nil {
								t.Fatal(err)
							}

							if have != want {
								t.Errorf(
									"have %v, want %v for self=%v status=%s privacy=%s vis=%s block=%d follow=%q",
									have, want, self, status, privacy, vis, bd, fs,
								)
							}

							v, err := loadVisibility(
								blocks,
								follows,
								users,
								namespace,
								viewer,
								[]uint64{owner.ID},
							)
							if err != nil {
								t.Fatal(err)
							}

							if bulk := v.allows(owner.ID, vis); bulk != have {
								t.Errorf(
									"bulk %v disagrees with single %v for self=%v status=%s privacy=%s vis=%s block=%d follow=%q",
									bulk, have, self, status, privacy, vis, bd, fs,
								)
							}
						}
					}
				}
			}
		}
	}
}

func TestPostVisibleMissingOwner(t *testing.T) {
	var (
		blocks  = block.MemService()
		follows = follow.MemService()

		visible = PostVisible(blocks, follows)
	)

	have, err := visible(namespace, 1, nil, post.VisibilityPublic)
	if err != nil {
		t.Fatal(err)
	}

	if have {
		t.Error("want missing owner to deny")
	}
}

func TestVisibilitySnapshotMissingOwner(t *testing.T) {
	v := &visibility{
		blocked:   map[uint64]struct{}{},
		following: map[uint64]struct{}{},
		owners:    user.Map{},
		viewer:    1,
	}

	if v.allows(99, post.VisibilityPublic) {
		t.Error("want unknown owner to deny")
	}
}

// wantVisible is the reference predicate the resolver has to match.
func wantVisible(
	self bool,
	status user.Status,
	privacy user.Privacy,
	vis post.Visibility,
	bd blockDir,
	fstate follow.State,
) bool {
	if self {
		return true
	}

	if status != user.StatusActive {
		return false
	}

	if bd != blockNone {
		return false
	}

	followed := fstate == follow.StateActive

	if privacy == user.PrivacyPrivate && !followed {
		return false
	}

	switch vis {
	case post.VisibilityPublic:
		return true
	case post.VisibilityFriends:
		return followed
	}

	return false
}
