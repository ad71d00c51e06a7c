package core

import (
	"testing"

	"github.com/joaoportolan93/Dream-Share-oficial/service/block"
	"github.com/joaoportolan93/Dream-Share-oficial/service/comment"
	"github.com/joaoportolan93/Dream-Share-oficial/service/community"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/mute"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/reaction"
	"github.com/joaoportolan93/Dream-Share-oficial/service/save"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

type feedFixture struct {
	blocks      block.Service
	comments    comment.Service
	communities community.Service
	follows     follow.Service
	mutes       mute.Service
	posts       post.Service
	reactions   reaction.Service
	saves       save.Service
	users       user.Service

	community FeedCommunityFunc
	following FeedFollowingFunc
	forYou    FeedForYouFunc
	own       FeedOwnFunc
	saved     FeedSavedFunc
	user      FeedUserFunc
}

func prepareFeedFixture(t *testing.T) *feedFixture {
	t.Helper()

	f := &feedFixture{
		blocks:      block.MemService(),
		comments:    comment.MemService(),
		communities: community.MemService(),
		follows:     follow.MemService(),
		mutes:       mute.MemService(),
		posts:       post.MemService(),
		reactions:   reaction.MemService(),
		saves:       save.MemService(),
		users:       user.MemService(),
	}

	f.community = FeedCommunity(f.blocks, f.comments, f.communities, f.follows, f.posts, f.reactions, f.users)
	f.following = FeedFollowing(f.blocks, f.comments, f.follows, f.posts, f.reactions, f.users)
	f.forYou = FeedForYou(f.blocks, f.comments, f.follows, f.mutes, f.posts, f.reactions, f.users)
	f.own = FeedOwn(f.comments, f.posts, f.reactions, f.users)
	f.saved = FeedSaved(f.blocks, f.comments, f.follows, f.posts, f.reactions, f.saves, f.users)
	f.user = FeedUser(f.blocks, f.comments, f.follows, f.posts, f.reactions, f.users)

	return f
}

func (f *feedFixture) createPost(
	t *testing.T,
	owner uint64,
	visibility post.Visibility,
) *post.Post {
	t.Helper()

	p, err := f.posts.Put(namespace, &post.Post{
		Content:    "content",
		OwnerID:    owner,
		Title:      "title",
		Visibility: visibility,
	})
	if err != nil {
		t.Fatal(err)
	}

	return p
}

func (f *feedFixture) followActive(t *testing.T, origin, target uint64) {
	t.Helper()

	_, err := f.follows.Put(namespace, &follow.Follow{
		FromID: origin,
		State:  follow.StateActive,
		ToID:   target,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestFeedFollowing(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	followee := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	stranger := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	f.followActive(t, origin.ID, followee.ID)

	own := f.createPost(t, origin.ID, post.VisibilityPrivate)
	followed := f.createPost(t, followee.ID, post.VisibilityFriends)
	f.createPost(t, stranger.ID, post.VisibilityPublic)

	feed, err := f.following(namespace, origin.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 2; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	// Newest first.
	if have, want := feed.Posts[0].ID, followed.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := feed.Posts[1].ID, own.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, ok := feed.UserMap[followee.ID]; !ok {
		t.Errorf("have %v, want followee present", feed.UserMap)
	}
}

func TestFeedFollowingHidesFriendsOnlyAfterUnfollow(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	followee := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	f.followActive(t, origin.ID, followee.ID)
	f.createPost(t, followee.ID, post.VisibilityFriends)

	if err := f.follows.Delete(namespace, origin.ID, followee.ID); err != nil {
		t.Fatal(err)
	}

	feed, err := f.following(namespace, origin.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedForYouRanking(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	author := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	quiet := f.createPost(t, author.ID, post.VisibilityPublic)
	busy := f.createPost(t, author.ID, post.VisibilityPublic)

	for i := 0; i < 3; i++ {
		actor := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

		_, err := f.reactions.Put(namespace, &reaction.Reaction{
			OwnerID: actor.ID,
			PostID:  busy.ID,
		})
		if err != nil {
			t.Fatal(err)
		}

		// Multiple comments of one actor count once.
		for j := 0; j < 2; j++ {
			_, err := f.comments.Put(namespace, &comment.Comment{
				Content: "busy",
				OwnerID: actor.ID,
				PostID:  busy.ID,
				Status:  comment.StatusActive,
			})
			if err != nil {
				t.Fatal(err)
			}
		}
	}

	feed, err := f.forYou(namespace, origin.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 2; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := feed.Posts[0].ID, busy.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := feed.Posts[1].ID, quiet.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := feed.LikeCounts[busy.ID], 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := feed.CommentCounts[busy.ID], 6; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedForYouExclusions(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	muted := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	private := createUser(t, f.users, user.PrivacyPrivate, user.StatusActive)
	author := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	f.createPost(t, muted.ID, post.VisibilityPublic)
	f.createPost(t, private.ID, post.VisibilityPublic)
	kept := f.createPost(t, author.ID, post.VisibilityPublic)

	_, err := f.mutes.Put(namespace, &mute.Mute{
		FromID: origin.ID,
		ToID:   muted.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	feed, err := f.forYou(namespace, origin.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := feed.Posts[0].ID, kept.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedForYouMuteLeavesFollowingIntact(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	muted := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	f.followActive(t, origin.ID, muted.ID)
	f.createPost(t, muted.ID, post.VisibilityPublic)

	_, err := f.mutes.Put(namespace, &mute.Mute{
		FromID: origin.ID,
		ToID:   muted.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	feed, err := f.following(namespace, origin.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedOwn(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	f.createPost(t, origin.ID, post.VisibilityPublic)
	f.createPost(t, origin.ID, post.VisibilityFriends)
	f.createPost(t, origin.ID, post.VisibilityPrivate)

	feed, err := f.own(namespace, origin.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedSaved(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	author := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	first := f.createPost(t, author.ID, post.VisibilityPublic)
	second := f.createPost(t, author.ID, post.VisibilityPublic)

	for _, id := range []uint64{first.ID, second.ID} {
		_, err := f.saves.Put(namespace, &save.Save{
			OwnerID: origin.ID,
			PostID:  id,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	feed, err := f.saved(namespace, origin.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 2; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	// Content hidden since saving drops out.
	_, err = f.blocks.Put(namespace, &block.Block{
		FromID: author.ID,
		ToID:   origin.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	feed, err = f.saved(namespace, origin.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedCommunityBanned(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	author := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	communityID := uint64(7001)

	p, err := f.posts.Put(namespace, &post.Post{
		CommunityID: communityID,
		Content:     "content",
		OwnerID:     author.ID,
		Title:       "title",
		Visibility:  post.VisibilityPublic,
	})
	if err != nil {
		t.Fatal(err)
	}

	feed, err := f.community(namespace, origin.ID, communityID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := feed.Posts[0].ID, p.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = f.communities.BanPut(namespace, &community.Ban{
		CommunityID: communityID,
		UserID:      origin.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	feed, err = f.community(namespace, origin.ID, communityID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFeedUser(t *testing.T) {
	f := prepareFeedFixture(t)

	origin := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	private := createUser(t, f.users, user.PrivacyPrivate, user.StatusActive)

	f.createPost(t, private.ID, post.VisibilityPublic)

	feed, err := f.user(namespace, origin.ID, private.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	// A locked profile yields an empty feed, never an error.
	if have, want := len(feed.Posts), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	f.followActive(t, origin.ID, private.ID)

	feed, err = f.user(namespace, origin.ID, private.ID, FeedOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Posts), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
