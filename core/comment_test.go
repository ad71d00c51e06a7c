package core

import (
	"testing"

	"github.com/joaoportolan93/Dream-Share-oficial/service/block"
	"github.com/joaoportolan93/Dream-Share-oficial/service/comment"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

type commentFixture struct {
	blocks        block.Service
	comments      comment.Service
	follows       follow.Service
	notifications notification.Service
	posts         post.Service
	users         user.Service

	create CommentCreateFunc
	delete CommentDeleteFunc
	thread CommentThreadFunc
	update CommentUpdateFunc
}

func prepareCommentFixture(t *testing.T) *commentFixture {
	t.Helper()

	f := &commentFixture{
		blocks:        block.MemService(),
		comments:      comment.MemService(),
		follows:       follow.MemService(),
		notifications: notification.MemService(),
		posts:         post.MemService(),
		users:         user.MemService(),
	}

	var (
		notify  = Notify(f.notifications)
		visible = PostVisible(f.blocks, f.follows)
	)

	f.create = CommentCreate(f.comments, f.posts, f.users, visible, notify)
	f.delete = CommentDelete(f.comments)
	f.thread = CommentThread(f.comments, f.posts, f.users, visible)
	f.update = CommentUpdate(f.comments)

	return f
}

func (f *commentFixture) createPost(
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

func TestCommentCreate(t *testing.T) {
	f := prepareCommentFixture(t)

	owner := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)
	commenter := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	p := f.createPost(t, owner.ID, post.VisibilityPublic)

	c, err := f.create(namespace, commenter.ID, p.ID, &comment.Comment{
		Content: "strange dream",
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c.Status, comment.StatusActive; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	nl, err := f.notifications.Query(namespace, notification.QueryOptions{
		Kinds:        []notification.Kind{notification.KindComment},
		RecipientIDs: []uint64{owner.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(nl), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	reply, err := f.create(namespace, owner.ID, p.ID, &comment.Comment{
		Content:  "same here",
		ParentID: c.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := reply.ParentID, c.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCommentCreateHiddenPost(t *testing.T) {
	f := prepareCommentFixture(t)

	owner := createUser(t, f.users, user.PrivacyPrivate, user.StatusActive)
	stranger := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	p := f.createPost(t, owner.ID, post.VisibilityPublic)

	_, err := f.create(namespace, stranger.ID, p.ID, &comment.Comment{
		Content: "hi",
	})
	if !IsNotFound(err) {
		t.Errorf("have %v, want not found", err)
	}
}

func TestCommentCreateParentErrors(t *testing.T) {
	f := prepareCommentFixture(t)

	owner := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	p := f.createPost(t, owner.ID, post.VisibilityPublic)
	other := f.createPost(t, owner.ID, post.VisibilityPublic)

	_, err := f.create(namespace, owner.ID, p.ID, &comment.Comment{
		Content:  "hi",
		ParentID: 999999,
	})
	if !IsNotFound(err) {
		t.Errorf("have %v, want not found", err)
	}

	c, err := f.create(namespace, owner.ID, other.ID, &comment.Comment{
		Content: "elsewhere",
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.create(namespace, owner.ID, p.ID, &comment.Comment{
		Content:  "hi",
		ParentID: c.ID,
	})
	if !IsInvalidEntity(err) {
		t.Errorf("have %v, want invalid entity", err)
	}
}

func TestCommentUpdate(t *testing.T) {
	f := prepareCommentFixture(t)

	owner := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	p := f.createPost(t, owner.ID, post.VisibilityPublic)

	c, err := f.create(namespace, owner.ID, p.ID, &comment.Comment{
		Content: "before",
	})
	if err != nil {
		t.Fatal(err)
	}

	c, err = f.update(namespace, owner.ID, c.ID, "after")
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c.Content, "after"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := c.Edited, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = f.update(namespace, owner.ID+999999, c.ID, "hijack")
	if !IsUnauthorized(err) {
		t.Errorf("have %v, want unauthorized", err)
	}
}

func TestCommentDelete(t *testing.T) {
	f := prepareCommentFixture(t)

	owner := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	p := f.createPost(t, owner.ID, post.VisibilityPublic)

	parent, err := f.create(namespace, owner.ID, p.ID, &comment.Comment{
		Content: "parent",
	})
	if err != nil {
		t.Fatal(err)
	}

	child, err := f.create(namespace, owner.ID, p.ID, &comment.Comment{
		Content:  "child",
		ParentID: parent.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = f.delete(namespace, owner.ID, parent.ID)
	if !IsHasActiveReplies(err) {
		t.Errorf("have %v, want has active replies", err)
	}

	if err := f.delete(namespace, owner.ID, child.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.delete(namespace, owner.ID, parent.ID); err != nil {
		t.Fatal(err)
	}

	// Repeat removals are idempotent.
	if err := f.delete(namespace, owner.ID, parent.ID); err != nil {
		t.Fatal(err)
	}

	err = f.delete(namespace, owner.ID+999999, child.ID)
	if !IsUnauthorized(err) {
		t.Errorf("have %v, want unauthorized", err)
	}
}

func TestCommentThreadDepth(t *testing.T) {
	f := prepareCommentFixture(t)

	owner := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	p := f.createPost(t, owner.ID, post.VisibilityPublic)

	parentID := uint64(0)
	ids := []uint64{}

	for i := 0; i < 4; i++ {
		c, err := f.create(namespace, owner.ID, p.ID, &comment.Comment{
			Content:  "level",
			ParentID: parentID,
		})
		if err != nil {
			t.Fatal(err)
		}

		ids = append(ids, c.ID)
		parentID = c.ID
	}

	thread, err := f.thread(namespace, owner.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(thread.Nodes), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	level2 := thread.Nodes[0].Children
	if have, want := len(level2), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	level3 := level2[0].Children
	if have, want := len(level3), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := level3[0].Comment.ID, ids[2]; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// The fourth level is cut off.
	if have, want := len(level3[0].Children), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCommentThreadHidesRemoved(t *testing.T) {
	f := prepareCommentFixture(t)

	owner := createUser(t, f.users, user.PrivacyPublic, user.StatusActive)

	p := f.createPost(t, owner.ID, post.VisibilityPublic)

	kept, err := f.create(namespace, owner.ID, p.ID, &comment.Comment{
		Content: "kept",
	})
	if err != nil {
		t.Fatal(err)
	}

	removed, err := f.create(namespace, owner.ID, p.ID, &comment.Comment{
		Content: "removed",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.delete(namespace, owner.ID, removed.ID); err != nil {
		t.Fatal(err)
	}

	thread, err := f.thread(namespace, owner.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(thread.Nodes), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := thread.Nodes[0].Comment.ID, kept.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
