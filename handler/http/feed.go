package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
)

// FeedFollowing returns the timeline of the current user.
func FeedFollowing(fn core.FeedFollowingFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		opts, err := extractFeedOpts(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		feed, err := fn(namespaceFromContext(ctx), currentUser.ID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondFeed(w, r, feed, opts.Limit)
	}
}

// FeedForYou returns the ranked discovery feed of the current user.
func FeedForYou(fn core.FeedForYouFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		opts, err := extractFeedOpts(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		feed, err := fn(namespaceFromContext(ctx), currentUser.ID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondFeed(w, r, feed, opts.Limit)
	}
}

// FeedOwn returns all posts of the current user.
func FeedOwn(fn core.FeedOwnFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		opts, err := extractFeedOpts(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		feed, err := fn(namespaceFromContext(ctx), currentUser.ID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondFeed(w, r, feed, opts.Limit)
	}
}

// FeedSaved returns the bookmarks of the current user.
func FeedSaved(fn core.FeedSavedFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		opts, err := extractFeedOpts(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		feed, err := fn(namespaceFromContext(ctx), currentUser.ID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondFeed(w, r, feed, opts.Limit)
	}
}

// FeedCommunity returns the posts of a community visible to the current user.
func FeedCommunity(fn core.FeedCommunityFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractCommunityID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		opts, err := extractFeedOpts(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		feed, err := fn(namespaceFromContext(ctx), currentUser.ID, id, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondFeed(w, r, feed, opts.Limit)
	}
}

// FeedUser returns the posts of the requested user visible to the current
// user.
func FeedUser(fn core.FeedUserFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentUser := userFromContext(ctx)

		id, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		opts, err := extractFeedOpts(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		feed, err := fn(namespaceFromContext(ctx), currentUser.ID, id, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondFeed(w, r, feed, opts.Limit)
	}
}

func respondFeed(
	w http.ResponseWriter,
	r *http.Request,
	feed *core.Feed,
	limit int,
) {
	if len(feed.Posts) == 0 {
		respondJSON(w, http.StatusNoContent, nil)
		return
	}

	respondJSON(w, http.StatusOK, &payloadFeed{
		feed: feed,
		pagination: pagination(
			r,
			limit,
			postCursorAfter(feed.Posts, limit),
			postCursorBefore(feed.Posts, limit),
		),
	})
}

type payloadFeed struct {
	feed       *core.Feed
	pagination *payloadPagination
}

func (p *payloadFeed) MarshalJSON() ([]byte, error) {
	ps := []*payloadPost{}

	for _, post := range p.feed.Posts {
		ps = append(ps, &payloadPost{post: post})
	}

	cm := map[string]int{}

	for id, count := range p.feed.CommentCounts {
		cm[strconv.FormatUint(id, 10)] = count
	}

	lm := map[string]int{}

	for id, count := range p.feed.LikeCounts {
		lm[strconv.FormatUint(id, 10)] = count
	}

	return json.Marshal(struct {
		CommentCounts map[string]int     `json:"comment_counts"`
		LikeCounts    map[string]int     `json:"like_counts"`
		Pagination    *payloadPagination `json:"paging"`
		Posts         []*payloadPost     `json:"posts"`
		PostsCount    int                `json:"posts_count"`
		Users         *payloadUserMap    `json:"users"`
		UsersCount    int                `json:"users_count"`
	}{
		CommentCounts: cm,
		LikeCounts:    lm,
		Pagination:    p.pagination,
		Posts:         ps,
		PostsCount:    len(ps),
		Users:         &payloadUserMap{userMap: p.feed.UserMap},
		UsersCount:    len(p.feed.UserMap),
	})
}
