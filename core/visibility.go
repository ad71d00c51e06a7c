package core

import (
	"github.com/joaoportolan93/Dream-Share-oficial/service/block"
	"github.com/joaoportolan93/Dream-Share-oficial/service/follow"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

// PostVisibleFunc decides if the viewer is allowed to see a post of the given
// owner and audience. Missing data results in a denial, only store failures
// surface as errors.
type PostVisibleFunc func(
	ns string,
	viewer uint64,
	owner *user.User,
	vis post.Visibility,
) (bool, error)

// PostVisible constructs the access decision for a single viewer and owner
// pair.
func PostVisible(
	blocks block.Service,
	follows follow.Service,
) PostVisibleFunc {
	return func(
		ns string,
		viewer uint64,
		owner *user.User,
		vis post.Visibility,
	) (bool, error) {
		if owner == nil {
			return false, nil
		}

		if viewer == owner.ID {
			return true, nil
		}

		if owner.Status != user.StatusActive {
			return false, nil
		}

		blocked, err := isBlocked(blocks, ns, viewer, owner.ID)
		if err != nil {
			return false, err
		}

		if blocked {
			return false, nil
		}

		followed := false

		if vis != post.VisibilityPrivate {
			fs, err := follows.Query(ns, follow.QueryOptions{
				FromIDs: []uint64{viewer},
				States:  []follow.State{follow.StateActive},
				ToIDs:   []uint64{owner.ID},
			})
			if err != nil {
				return false, err
			}

			followed = len(fs) > 0
		}

		return allowsPost(owner, followed, vis), nil
	}
}

// allowsPost applies the audience rules for a post of owner as seen by a
// viewer who is not the owner. The block and suspension gates must have been
// applied by the caller.
func allowsPost(owner *user.User, followed bool, vis post.Visibility) bool {
	// A private account gates all of its content behind an approved follow,
	// the audience of the single post cannot widen it again.
	if owner.Privacy == user.PrivacyPrivate && !followed {
		return false
	}

	switch vis {
	case post.VisibilityPublic:
		return true
	case post.VisibilityFriends:
		return followed
	case post.VisibilityPrivate:
		return false
	}

	return false
}

// visibility is the per-request snapshot of everything needed to decide
// access for a fixed viewer against many owners without further store
// round-trips.
type visibility struct {
	blocked   map[uint64]struct{}
	following map[uint64]struct{}
	owners    user.Map
	viewer    uint64
}

func (v *visibility) allows(ownerID uint64, vis post.Visibility) bool {
	owner, ok := v.owners[ownerID]
	if !ok {
		return false
	}

	if v.viewer == ownerID {
		return true
	}

	if owner.Status != user.StatusActive {
		return false
	}

	if _, ok := v.blocked[ownerID]; ok {
		return false
	}

	_, followed := v.following[ownerID]

	return allowsPost(owner, followed, vis)
}

// loadVisibility assembles the snapshot for the viewer over the given owner
// ids.
func loadVisibility(
	blocks block.Service,
	follows follow.Service,
	users user.Service,
	ns string,
	viewer uint64,
	ownerIDs []uint64,
) (*visibility, error) {
	v := &visibility{
		blocked:   map[uint64]struct{}{},
		following: map[uint64]struct{}{},
		viewer:    viewer,
	}

	obs, err := blocks.Query(ns, block.QueryOptions{
		FromIDs: []uint64{viewer},
	})
	if err != nil {
		return nil, err
	}

	ibs, err := blocks.Query(ns, block.QueryOptions{
		ToIDs: []uint64{viewer},
	})
	if err != nil {
		return nil, err
	}

	for _, id := range append(obs, ibs...).OtherIDs(viewer) {
		v.blocked[id] = struct{}{}
	}

	fs, err := follows.Query(ns, follow.QueryOptions{
		FromIDs: []uint64{viewer},
		States:  []follow.State{follow.StateActive},
	})
	if err != nil {
		return nil, err
	}

	for _, id := range fs.ToIDs() {
		v.following[id] = struct{}{}
	}

	um, err := user.MapFromIDs(users, ns, ownerIDs...)
	if err != nil {
		return nil, err
	}

	v.owners = um

	return v, nil
}

func isBlocked(
	blocks block.Service,
	ns string,
	one, two uint64,
) (bool, error) {
	bs, err := blocks.Query(ns, block.QueryOptions{
		FromIDs: []uint64{one},
		ToIDs:   []uint64{two},
	})
	if err != nil {
		return false, err
	}

	if len(bs) > 0 {
		return true, nil
	}

	bs, err = blocks.Query(ns, block.QueryOptions{
		FromIDs: []uint64{two},
		ToIDs:   []uint64{one},
	})
	if err != nil {
		return false, err
	}

	return len(bs) > 0, nil
}
