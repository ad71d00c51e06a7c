package comment

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
)

type memService struct {
	comments map[string]map[uint64]*Comment
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		comments: map[string]map[uint64]*Comment{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return -1, err
	}

	return len(filterMap(s.comments[ns], opts)), nil
}

func (s *memService) Put(ns string, c *Comment) (*Comment, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if c.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		c.ID = id
		c.CreatedAt = now
	} else {
		stored, ok := s.comments[ns][c.ID]
		if !ok {
			return nil, wrapError(ErrNotFound, "comment %d", c.ID)
		}

		c.CreatedAt = stored.CreatedAt
	}

	c.UpdatedAt = now

	old := *c
	s.comments[ns][c.ID] = &old

	return c, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.comments[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.comments[ns]; !ok {
		s.comments[ns] = map[uint64]*Comment{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.comments[ns]; ok {
		delete(s.comments, ns)
	}

	return nil
}

func filterMap(cm map[uint64]*Comment, opts QueryOptions) List {
	cs := List{}

	for _, c := range cm {
		if !opts.Before.IsZero() && !c.CreatedAt.UTC().Before(opts.Before.UTC()) {
			continue
		}

		if !inIDs(c.ID, opts.IDs) {
			continue
		}

		if !inIDs(c.OwnerID, opts.OwnerIDs) {
			continue
		}

		if len(opts.ParentIDs) > 0 && !inIDs(c.ParentID, opts.ParentIDs) {
			continue
		}

		if !inIDs(c.PostID, opts.PostIDs) {
			continue
		}

		if len(opts.Statuses) > 0 {
			keep := false

			for _, status := range opts.Statuses {
				if c.Status == status {
					keep = true
					break
				}
			}

			if !keep {
				continue
			}
		}

		cs = append(cs, c)
	}

	sort.Sort(cs)

	if opts.Limit > 0 {
		l := math.Min(float64(len(cs)), float64(opts.Limit))

		return cs[:int(l)]
	}

	return cs
}

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "comments")
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
