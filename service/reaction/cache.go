package reaction

import (
	"fmt"
	"strings"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/cache"
)

const cachePrefixCount = "reactions.count"

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
	if len(opts.PostIDs) != 1 {
		return s.next.Count(ns, opts)
	}

	key := cacheCountKey(opts.PostIDs[0])

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

func (s *cacheService) CountMulti(ns string, postIDs ...uint64) (CountsMap, error) {
	return s.next.CountMulti(ns, postIDs...)
}

func (s *cacheService) Put(ns string, input *Reaction) (*Reaction, error) {
	key := cacheCountKey(input.PostID)

	new := input.ID == 0

	r, err := s.next.Put(ns, input)
	if err != nil {
		return nil, err
	}

	if r.Deleted {
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

	return r, nil
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

func cacheCountKey(postID uint64) string {
	ps := []string{
		cachePrefixCount,
		fmt.Sprintf("%d", postID),
	}

	return strings.Join(ps, cache.KeySeparator)
}
