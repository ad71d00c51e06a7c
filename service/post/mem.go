package post

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
)

type memService struct {
	posts map[string]Map
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		posts: map[string]Map{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return -1, err
	}

	return len(filterMap(s.posts[ns], opts)), nil
}

func (s *memService) Put(ns string, p *Post) (*Post, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if p.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		p.ID = id
		p.CreatedAt = now
	} else {
		stored, ok := s.posts[ns][p.ID]
		if !ok {
			return nil, wrapError(ErrNotFound, "post %d", p.ID)
		}

		p.CreatedAt = stored.CreatedAt
	}

	p.UpdatedAt = now

	s.posts[ns][p.ID] = copyPost(p)

	return p, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.posts[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.posts[ns]; !ok {
		s.posts[ns] = Map{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.posts[ns]; ok {
		delete(s.posts, ns)
	}

	return nil
}

func copyPost(p *Post) *Post {
	old := *p
	return &old
}

func filterMap(pm Map, opts QueryOptions) List {
	ps := List{}

	for _, p := range pm {
		if !opts.Before.IsZero() && !p.CreatedAt.UTC().Before(opts.Before.UTC()) {
			continue
		}

		if !inIDs(p.ID, opts.IDs) {
			continue
		}

		if !inIDs(p.OwnerID, opts.OwnerIDs) {
			continue
		}

		if !p.MatchOpts(&opts) {
			continue
		}

		ps = append(ps, p)
	}

	sort.Sort(ps)

	if opts.Limit > 0 {
		l := math.Min(float64(len(ps)), float64(opts.Limit))

		return ps[:int(l)]
	}

	return ps
}

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "posts")
}

func inIDs(id uint64, ids []uint64) bool {
	if len(ids) == 0 {
		return true
	}

	keep := false

	for _, i := range ids {
		if i == id {
			keep = true
			break
		}
	}

	return keep
}
