package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/joaoportolan93/Dream-Share-oficial/core"
	"github.com/joaoportolan93/Dream-Share-oficial/service/notification"
	"github.com/joaoportolan93/Dream-Share-oficial/service/post"
)

const (
	cursorTimeFormat = time.RFC3339Nano

	keyCommentID      = "commentID"
	keyCommunityID    = "communityID"
	keyCursorAfter    = "after"
	keyCursorBefore   = "before"
	keyLimit          = "limit"
	keyNotificationID = "notificationID"
	keyPostID         = "postID"
	keyQuery          = "q"
	keyUserID         = "userID"

	limitDefault = 25
	limitMax     = 50

	refFmt = "%s://%s%s?limit=%d&%s"
)

var cursorEncoding = base64.URLEncoding.WithPadding(base64.NoPadding)

type payloadCursors struct {
	After  string `json:"after"`
	Before string `json:"before"`
}

type payloadPagination struct {
	after  string
	before string
	limit  int
	req    *http.Request
}

func pagination(
	req *http.Request,
	limit int,
	after, before string,
) *payloadPagination {
	return &payloadPagination{
		after:  after,
		before: before,
		limit:  limit,
		req:    req,
	}
}

func (p *payloadPagination) MarshalJSON() ([]byte, error) {
	var (
		next     = ""
		previous = ""
		scheme   = "http"
	)

	if p.req.TLS != nil {
		scheme = "https"
	}

	if p.after != "" {
		next = fmt.Sprintf(
			refFmt,
			scheme,
			p.req.Host,
			p.req.URL.Path,
			p.limit,
			fmt.Sprintf("%s=%s", keyCursorAfter, p.after),
		)
	}

	if p.before != "" {
		previous = fmt.Sprintf(
			refFmt,
			scheme,
			p.req.Host,
			p.req.URL.Path,
			p.limit,
			fmt.Sprintf("%s=%s", keyCursorBefore, p.before),
		)
	}

	f := struct {
		Cursors  payloadCursors `json:"cursors"`
		Next     string         `json:"next"`
		Previous string         `json:"previous"`
	}{
		Cursors: payloadCursors{
			After:  p.after,
			Before: p.before,
		},
		Next:     next,
		Previous: previous,
	}

	return json.Marshal(&f)
}

func extractCommentID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyCommentID], 10, 64)
}

func extractCommunityID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyCommunityID], 10, 64)
}

func extractFeedOpts(r *http.Request) (core.FeedOptions, error) {
	opts := core.FeedOptions{}

	before, err := extractTimeCursorBefore(r)
	if err != nil {
		return opts, err
	}

	limit, err := extractLimit(r)
	if err != nil {
		return opts, err
	}

	opts.Before = before
	opts.Limit = limit

	return opts, nil
}

func extractLimit(r *http.Request) (int, error) {
	param := r.URL.Query().Get(keyLimit)

	if param == "" {
		return limitDefault, nil
	}

	limit, err := strconv.Atoi(param)
	if err != nil {
		return 0, err
	}

	if limit > limitMax {
		return limitMax, nil
	}

	return limit, nil
}

func extractNotificationID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyNotificationID], 10, 64)
}

func extractNotificationOpts(r *http.Request) (notification.QueryOptions, error) {
	opts := notification.QueryOptions{}

	before, err := extractTimeCursorBefore(r)
	if err != nil {
		return opts, err
	}

	limit, err := extractLimit(r)
	if err != nil {
		return opts, err
	}

	opts.Before = before
	opts.Limit = limit

	if param := r.URL.Query().Get("unread"); param == "true" {
		unread := false
		opts.Read = &unread
	}

	return opts, nil
}

func extractPostID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyPostID], 10, 64)
}

func extractQuery(r *http.Request) string {
	return r.URL.Query().Get(keyQuery)
}

func extractTimeCursorBefore(r *http.Request) (time.Time, error) {
	var (
		before = time.Now()
		param  = r.URL.Query().Get(keyCursorBefore)
	)

	if param == "" {
		return before, nil
	}

	cursor, err := cursorEncoding.DecodeString(param)
	if err != nil {
		return before, err
	}

	return time.Parse(cursorTimeFormat, string(cursor))
}

func extractUserID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyUserID], 10, 64)
}

func postCursorAfter(ps post.List, limit int) string {
	var after string

	if len(ps) > 0 {
		after = toTimeCursor(ps[0].CreatedAt)
	}

	return after
}

func postCursorBefore(ps post.List, limit int) string {
	var before string

	if len(ps) > 0 {
		before = toTimeCursor(ps[len(ps)-1].CreatedAt)
	}

	return before
}

func toTimeCursor(t time.Time) string {
	return cursorEncoding.EncodeToString([]byte(t.Format(cursorTimeFormat)))
}
