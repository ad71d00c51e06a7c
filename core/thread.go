package core

import (
	"sort"

	"github.com/joaoportolan93/Dream-Share-oficial/service/comment"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// ThreadNode is a comment with its rendered replies.
type ThreadNode struct {
	Comment  *comment.Comment
	Children []*ThreadNode
}

// Thread is the composite to transport the rendered comment forest of a post
// together with the commenting users.
type Thread struct {
	Nodes   []*ThreadNode
	UserMap user.Map
}

// CommentThreadFunc renders the active comments of a post as a forest.
// Nesting is bounded, replies beyond the depth cap come back with empty
// children, never as an error.
type CommentThreadFunc func(ns string, origin, postID uint64) (*Thread, error)

// CommentThread constructs the thread rendering of a post.
func CommentThread(
	comments comment.Service,
	posts post.Service,
	users user.Service,
	postVisible PostVisibleFunc,
) CommentThreadFunc {
	return func(ns string, origin, postID uint64) (*Thread, error) {
		p, err := lookupPost(posts, ns, postID)
		if err != nil {
			return nil, err
		}

		owner, err := fetchUser(users, ns, p.OwnerID)
		if err != nil {
			if IsNotFound(err) {
				return nil, wrapError(ErrNotFound, "post %d", postID)
			}

			return nil, err
		}

		ok, err := postVisible(ns, origin, owner, p.Visibility)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, wrapError(ErrNotFound, "post %d", postID)
		}

		cs, err := comments.Query(ns, comment.QueryOptions{
			PostIDs:  []uint64{postID},
			Statuses: []comment.Status{comment.StatusActive},
		})
		if err != nil {
			return nil, err
		}

		children := map[uint64]comment.List{}

		for _, c := range cs {
			children[c.ParentID] = append(children[c.ParentID], c)
		}

		for _, l := range children {
			sort.Sort(l)
		}

		um, err := user.MapFromIDs(users, ns, cs.OwnerIDs()...)
		if err != nil {
			return nil, err
		}

		return &Thread{
			Nodes:   renderThread(children, 0, 1),
			UserMap: um,
		}, nil
	}
}

// renderThread builds the forest below parent. depth counts the level being
// rendered, children past maxThreadDepth are cut off.
func renderThread(
	children map[uint64]comment.List,
	parent uint64,
	depth int,
) []*ThreadNode {
	nodes := []*ThreadNode{}

	for _, c := range children[parent] {
		node := &ThreadNode{
			Comment:  c,
			Children: []*ThreadNode{},
		}

		if depth < maxThreadDepth {
			node.Children = renderThread(children, c.ID, depth+1)
		}

		nodes = append(nodes, node)
	}

	return nodes
}
