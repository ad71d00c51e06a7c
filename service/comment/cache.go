package comment

import (
	"fmt"
	"strings"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/cache"
)

const cachePrefixCount = "comments.count"

type cacheService struct {
	countsCache cache.CountService
	next        Service
}

// CacheServiceMiddleware adds caching capabilities to the Service by using
// read-through and write-through methods to store results of heavy
// computation with sensible TTLs.
func CacheServiceMiddleware(countsCache cache.CountService) ServiceMiddleware {
	return func(next Service) Service {
		return &cacheService{
			countsCache: countsCache,
			next:        next,
		}
	}
}

func (s *cacheService) Count(ns string, opts QueryOptions) (int, error) {
	key, ok := cacheCountKey(opts)
	if !ok {
		return s.next.Count(ns, opts)
	}

	count, err := s.countsCache.Get(ns, key)
	if err == nil {
		return count, nil
	}

	if !cache.IsKeyNotFound(err) {
		return 0, err
	}

	count, err = s.next.Count(ns, opts)
	if err != nil {
		return 0, err
	}

	err = s.countsCache.Set(ns, key, count)

	return count, err
}

func (s *cacheService) Put(ns string, input *Comment) (*Comment, error) {
	key, ok := cacheCountKey(QueryOptions{
		PostIDs: []uint64{
			input.PostID,
		},
		Statuses: []Status{
			StatusActive,
		},
	})

	new := input.ID == 0

	c, err := s.next.Put(ns, input)
	if err != nil {
		return nil, err
	}

	if !ok {
		return c, nil
	}

	if c.Status == StatusRemoved {
		_, err := s.countsCache.Decr(ns, key)
		if err != nil {
			// We ignore the error of the cache operation.
		}
	} else if new {
		_, err := s.countsCache.Incr(ns, key)
		if err != nil {
			// We ignore the error of the cache operation.
		}
	}

	return c, nil
}

func (s *cacheService) Query(ns string, opts QueryOptions) (List, error) {
	return s.next.Query(ns, opts)
}

func (s *cacheService) Setup(ns string) error {
	return s.next.Setup(ns)
}

func (s *cacheService) Teardown(ns string) error {
	return s.next.Teardown(ns)
}

func cacheCountKey(opts QueryOptions) (string, bool) {
	if len(opts.PostIDs) != 1 {
		return "", false
	}

	if len(opts.Statuses) != 1 || opts.Statuses[0] != StatusActive {
		return "", false
	}

	ps := []string{
		cachePrefixCount,
		fmt.Sprintf("%d", opts.PostIDs[0]),
	}

	return strings.Join(ps, cache.KeySeparator), true
}
