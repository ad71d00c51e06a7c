package reaction

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
)

type memService struct {
	reactions map[string]map[uint64]*Reaction
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		reactions: map[string]map[uint64]*Reaction{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return -1, err
	}

	return len(filterMap(s.reactions[ns], opts)), nil
}

func (s *memService) CountMulti(ns string, postIDs ...uint64) (CountsMap, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	countsMap := CountsMap{}

	for _, pid := range postIDs {
		countsMap[pid] = 0

		for _, r := range s.reactions[ns] {
			if r.Deleted {
				continue
			}

			if r.PostID == pid {
				countsMap[pid]++
			}
		}
	}

	return countsMap, nil
}

func (s *memService) Put(ns string, r *Reaction) (*Reaction, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if r.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		r.ID = id
		r.CreatedAt = now
	} else {
		stored, ok := s.reactions[ns][r.ID]
		if !ok {
			return nil, wrapError(ErrNotFound, "reaction %d", r.ID)
		}

		r.CreatedAt = stored.CreatedAt
	}

	r.UpdatedAt = now

	old := *r
	s.reactions[ns][r.ID] = &old

	return r, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.reactions[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.reactions[ns]; !ok {
		s.reactions[ns] = map[uint64]*Reaction{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.reactions[ns]; ok {
		delete(s.reactions, ns)
	}

	return nil
}

func filterMap(rm map[uint64]*Reaction, opts QueryOptions) List {
	rs := List{}

	for _, r := range rm {
		if !opts.Before.IsZero() && !r.UpdatedAt.UTC().Before(opts.Before.UTC()) {
			continue
		}

		if opts.Deleted != nil && r.Deleted != *opts.Deleted {
			continue
		}

		if !inIDs(r.ID, opts.IDs) {
			continue
		}

		if !inIDs(r.OwnerID, opts.OwnerIDs) {
			continue
		}

		if !inIDs(r.PostID, opts.PostIDs) {
			continue
		}

		rs = append(rs, r)
	}

	sort.Sort(byUpdatedAt(rs))

	if opts.Limit > 0 {
		l := math.Min(float64(len(rs)), float64(opts.Limit))

		return rs[:int(l)]
	}

	return rs
}

type byUpdatedAt List

func (rs byUpdatedAt) Len() int {
	return len(rs)
}

func (rs byUpdatedAt) Less(i, j int) bool {
	return rs[i].UpdatedAt.After(rs[j].UpdatedAt)
}

func (rs byUpdatedAt) Swap(i, j int) {
	rs[i], rs[j] = rs[j], rs[i]
}

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "reactions")
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
