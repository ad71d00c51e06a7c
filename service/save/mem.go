package save

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type memService struct {
	saves map[string]map[string]*Save
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		saves: map[string]map[string]*Save{},
	}
}

func (s *memService) Delete(ns string, ownerID, postID uint64) error {
	if err := s.Setup(ns); err != nil {
		return err
	}

	delete(s.saves[ns], pairKey(ownerID, postID))

	return nil
}

func (s *memService) Put(ns string, sv *Save) (*Save, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := sv.Validate(); err != nil {
		return nil, err
	}

	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = time.Now().UTC()
	}

	sv.CreatedAt = sv.CreatedAt.UTC()

	stored, ok := s.saves[ns][pairKey(sv.OwnerID, sv.PostID)]
	if ok {
		return stored, nil
	}

	old := *sv
	s.saves[ns][pairKey(sv.OwnerID, sv.PostID)] = &old

	return sv, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	ss := List{}

	for _, sv := range s.saves[ns] {
		if !opts.Before.IsZero() && !sv.CreatedAt.UTC().Before(opts.Before.UTC()) {
			continue
		}

		if !inIDs(sv.OwnerID, opts.OwnerIDs) {
			continue
		}

		if !inIDs(sv.PostID, opts.PostIDs) {
			continue
		}

		ss = append(ss, sv)
	}

	sort.Slice(ss, func(i, j int) bool {
		return ss[i].CreatedAt.After(ss[j].CreatedAt)
	})

	if opts.Limit > 0 {
		l := math.Min(float64(len(ss)), float64(opts.Limit))

		return ss[:int(l)], nil
	}

	return ss, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.saves[ns]; !ok {
		s.saves[ns] = map[string]*Save{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.saves[ns]; ok {
		delete(s.saves, ns)
	}

	return nil
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

func pairKey(ownerID, postID uint64) string {
	return fmt.Sprintf("%d-%d", ownerID, postID)
}
