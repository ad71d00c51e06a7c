package core

// Limits applied to feed composition and thread rendering.
const (
	defaultFeedLimit = 50
	maxThreadDepth   = 3
)

var defaultDeleted = false

// Pagination holds the cursors used to page through collections.
type Pagination struct {
	Next string
}
