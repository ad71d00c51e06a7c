package core

import (
	"sort"
	"time"

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

// FeedOptions narrows down feed composition.
type FeedOptions struct {
	Before time.Time
	Limit  int
}

func (o FeedOptions) limit() int {
	if o.Limit <= 0 {
		return defaultFeedLimit
	}

	return o.Limit
}

// Feed is the composite to transport posts together with everything needed
// to render them.
type Feed struct {
	CommentCounts map[uint64]int
	LikeCounts    reaction.CountsMap
	Posts         post.List
	UserMap       user.Map
}

// FeedFollowingFunc returns the timeline of the origin, own posts and posts
// of active followees, newest first.
type FeedFollowingFunc func(ns string, origin uint64, opts FeedOptions) (*Feed, error)

// FeedFollowing constructs the following tab.
func FeedFollowing(
	blocks block.Service,
	comments comment.Service,
	follows follow.Service,
	posts post.Service,
	reactions reaction.Service,
	users user.Service,
) FeedFollowingFunc {
	return func(ns string, origin uint64, opts FeedOptions) (*Feed, error) {
		fs, err := follows.Query(ns, follow.QueryOptions{
			FromIDs: []uint64{origin},
			States:  []follow.State{follow.StateActive},
		})
		if err != nil {
			return nil, err
		}

		ownerIDs := append(fs.ToIDs(), origin)

		ps, err := posts.Query(ns, post.QueryOptions{
			Before:   opts.Before,
			Deleted:  &defaultDeleted,
			OwnerIDs: ownerIDs,
		})
		if err != nil {
			return nil, err
		}

		v, err := loadVisibility(blocks, follows, users, ns, origin, ps.OwnerIDs())
		if err != nil {
			return nil, err
		}

		ps = filterVisible(ps, v)

		sort.Sort(ps)

		if len(ps) > opts.limit() {
			ps = ps[:opts.limit()]
		}

		return enrichFeed(comments, reactions, ns, ps, v.owners)
	}
}

// FeedForYouFunc returns public posts of public active owners ranked by
// engagement, blocked and muted owners removed.
type FeedForYouFunc func(ns string, origin uint64, opts FeedOptions) (*Feed, error)

// FeedForYou constructs the ranked discovery tab.
func FeedForYou(
	blocks block.Service,
	comments comment.Service,
	follows follow.Service,
	mutes mute.Service,
	posts post.Service,
	reactions reaction.Service,
	users user.Service,
) FeedForYouFunc {
	return func(ns string, origin uint64, opts FeedOptions) (*Feed, error) {
		ps, err := posts.Query(ns, post.QueryOptions{
			Before:       opts.Before,
			Deleted:      &defaultDeleted,
			Visibilities: []post.Visibility{post.VisibilityPublic},
		})
		if err != nil {
			return nil, err
		}

		v, err := loadVisibility(blocks, follows, users, ns, origin, ps.OwnerIDs())
		if err != nil {
			return nil, err
		}

		ms, err := mutes.Query(ns, mute.QueryOptions{
			FromIDs: []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		muted := map[uint64]struct{}{}

		for _, id := range ms.ToIDs() {
			muted[id] = struct{}{}
		}

		candidates := post.List{}

		for _, p := range ps {
			owner, ok := v.owners[p.OwnerID]
			if !ok {
				continue
			}

			if owner.Privacy != user.PrivacyPublic {
				continue
			}

			if _, ok := muted[p.OwnerID]; ok {
				continue
			}

			if !v.allows(p.OwnerID, p.Visibility) {
				continue
			}

			candidates = append(candidates, p)
		}

		scores, err := engagementScores(comments, reactions, ns, candidates.IDs())
		if err != nil {
			return nil, err
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			if scores[candidates[i].ID] != scores[candidates[j].ID] {
				return scores[candidates[i].ID] > scores[candidates[j].ID]
			}

			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		})

		if len(candidates) > opts.limit() {
			candidates = candidates[:opts.limit()]
		}

		return enrichFeed(comments, reactions, ns, candidates, v.owners)
	}
}

// FeedOwnFunc returns all posts of the origin regardless of audience, newest
// first.
type FeedOwnFunc func(ns string, origin uint64, opts FeedOptions) (*Feed, error)

// FeedOwn constructs the profile tab of the origin.
func FeedOwn(
	comments comment.Service,
	posts post.Service,
	reactions reaction.Service,
	users user.Service,
) FeedOwnFunc {
	return func(ns string, origin uint64, opts FeedOptions) (*Feed, error) {
		ps, err := posts.Query(ns, post.QueryOptions{
			Before:   opts.Before,
			Deleted:  &defaultDeleted,
			Limit:    opts.limit(),
			OwnerIDs: []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		sort.Sort(ps)

		um, err := user.MapFromIDs(users, ns, origin)
		if err != nil {
			return nil, err
		}

		return enrichFeed(comments, reactions, ns, ps, um)
	}
}

// FeedSavedFunc returns the bookmarks of the origin ordered by save time,
// re-checked against the resolver so content hidden since saving drops out.
type FeedSavedFunc func(ns string, origin uint64, opts FeedOptions) (*Feed, error)

// FeedSaved constructs the bookmarks tab.
func FeedSaved(
	blocks block.Service,
	comments comment.Service,
	follows follow.Service,
	posts post.Service,
	reactions reaction.Service,
	saves save.Service,
	users user.Service,
) FeedSavedFunc {
	return func(ns string, origin uint64, opts FeedOptions) (*Feed, error) {
		ss, err := saves.Query(ns, save.QueryOptions{
			Before:   opts.Before,
			OwnerIDs: []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		if len(ss) == 0 {
			return emptyFeed(), nil
		}

		ps, err := posts.Query(ns, post.QueryOptions{
			Deleted: &defaultDeleted,
			IDs:     ss.PostIDs(),
		})
		if err != nil {
			return nil, err
		}

		v, err := loadVisibility(blocks, follows, users, ns, origin, ps.OwnerIDs())
		if err != nil {
			return nil, err
		}

		pm := post.Map{}

		for _, p := range filterVisible(ps, v) {
			pm[p.ID] = p
		}

		ordered := post.List{}

		for _, s := range ss {
			if p, ok := pm[s.PostID]; ok {
				ordered = append(ordered, p)
			}
		}

		if len(ordered) > opts.limit() {
			ordered = ordered[:opts.limit()]
		}

		return enrichFeed(comments, reactions, ns, ordered, v.owners)
	}
}

// FeedCommunityFunc returns the posts of a community visible to the origin.
// A banned origin gets an empty feed.
type FeedCommunityFunc func(
	ns string,
	origin, communityID uint64,
	opts FeedOptions,
) (*Feed, error)

// FeedCommunity constructs the community tab.
func FeedCommunity(
	blocks block.Service,
	comments comment.Service,
	communities community.Service,
	follows follow.Service,
	posts post.Service,
	reactions reaction.Service,
	users user.Service,
) FeedCommunityFunc {
	return func(
		ns string,
		origin, communityID uint64,
		opts FeedOptions,
	) (*Feed, error) {
		bans, err := communities.BansQuery(ns, community.QueryOptions{
			CommunityIDs: []uint64{communityID},
			UserIDs:      []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		if len(bans) > 0 {
			return emptyFeed(), nil
		}

		ps, err := posts.Query(ns, post.QueryOptions{
			Before:       opts.Before,
			CommunityIDs: []uint64{communityID},
			Deleted:      &defaultDeleted,
		})
		if err != nil {
			return nil, err
		}

		v, err := loadVisibility(blocks, follows, users, ns, origin, ps.OwnerIDs())
		if err != nil {
			return nil, err
		}

		ps = filterVisible(ps, v)

		sort.Sort(ps)

		if len(ps) > opts.limit() {
			ps = ps[:opts.limit()]
		}

		return enrichFeed(comments, reactions, ns, ps, v.owners)
	}
}

// FeedUserFunc returns the posts of target visible to the origin. A private
// target without an approved follow yields an empty feed, never an error.
type FeedUserFunc func(
	ns string,
	origin, target uint64,
	opts FeedOptions,
) (*Feed, error)

// FeedUser constructs the profile tab of another user.
func FeedUser(
	blocks block.Service,
	comments comment.Service,
	follows follow.Service,
	posts post.Service,
	reactions reaction.Service,
	users user.Service,
) FeedUserFunc {
	return func(
		ns string,
		origin, target uint64,
		opts FeedOptions,
	) (*Feed, error) {
		ps, err := posts.Query(ns, post.QueryOptions{
			Before:   opts.Before,
			Deleted:  &defaultDeleted,
			OwnerIDs: []uint64{target},
		})
		if err != nil {
			return nil, err
		}

		v, err := loadVisibility(blocks, follows, users, ns, origin, []uint64{target})
		if err != nil {
			return nil, err
		}

		ps = filterVisible(ps, v)

		sort.Sort(ps)

		if len(ps) > opts.limit() {
			ps = ps[:opts.limit()]
		}

		return enrichFeed(comments, reactions, ns, ps, v.owners)
	}
}

func emptyFeed() *Feed {
	return &Feed{
		CommentCounts: map[uint64]int{},
		LikeCounts:    reaction.CountsMap{},
		Posts:         post.List{},
		UserMap:       user.Map{},
	}
}

// engagementScores computes the number of distinct reactors plus distinct
// commenters per post. Reactions are unique per actor by construction,
// comments are deduplicated by owner.
func engagementScores(
	comments comment.Service,
	reactions reaction.Service,
	ns string,
	postIDs []uint64,
) (map[uint64]int, error) {
	scores := map[uint64]int{}

	if len(postIDs) == 0 {
		return scores, nil
	}

	likes, err := reactions.CountMulti(ns, postIDs...)
	if err != nil {
		return nil, err
	}

	for id, count := range likes {
		scores[id] += count
	}

	cs, err := comments.Query(ns, comment.QueryOptions{
		PostIDs:  postIDs,
		Statuses: []comment.Status{comment.StatusActive},
	})
	if err != nil {
		return nil, err
	}

	commenters := map[uint64]map[uint64]struct{}{}

	for _, c := range cs {
		if _, ok := commenters[c.PostID]; !ok {
			commenters[c.PostID] = map[uint64]struct{}{}
		}

		commenters[c.PostID][c.OwnerID] = struct{}{}
	}

	for id, actors := range commenters {
		scores[id] += len(actors)
	}

	return scores, nil
}

func enrichFeed(
	comments comment.Service,
	reactions reaction.Service,
	ns string,
	ps post.List,
	owners user.Map,
) (*Feed, error) {
	feed := &Feed{
		CommentCounts: map[uint64]int{},
		LikeCounts:    reaction.CountsMap{},
		Posts:         ps,
		UserMap:       user.Map{},
	}

	if len(ps) == 0 {
		return feed, nil
	}

	likes, err := reactions.CountMulti(ns, ps.IDs()...)
	if err != nil {
		return nil, err
	}

	feed.LikeCounts = likes

	for _, id := range ps.IDs() {
		count, err := comments.Count(ns, comment.QueryOptions{
			PostIDs:  []uint64{id},
			Statuses: []comment.Status{comment.StatusActive},
		})
		if err != nil {
			return nil, err
		}

		feed.CommentCounts[id] = count
	}

	for _, id := range ps.OwnerIDs() {
		if u, ok := owners[id]; ok {
			feed.UserMap[id] = u
		}
	}

	return feed, nil
}

func filterVisible(ps post.List, v *visibility) post.List {
	fs := post.List{}

	for _, p := range ps {
		if v.allows(p.OwnerID, p.Visibility) {
			fs = append(fs, p)
		}
	}

	return fs
}
