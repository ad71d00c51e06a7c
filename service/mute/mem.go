package mute

import (
	"fmt"
	"time"
)

type memService struct {
	mutes map[string]map[string]*Mute
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		mutes: map[string]map[string]*Mute{},
	}
}

func (s *memService) Delete(ns string, fromID, toID uint64) error {
	if err := s.Setup(ns); err != nil {
		return err
	}

	delete(s.mutes[ns], pairKey(fromID, toID))

	return nil
}

func (s *memService) Put(ns string, m *Mute) (*Mute, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	m.CreatedAt = m.CreatedAt.UTC()

	s.mutes[ns][pairKey(m.FromID, m.ToID)] = m

	return m, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	ms := List{}

	for _, m := range s.mutes[ns] {
		if !inIDs(m.FromID, opts.FromIDs) {
			continue
		}

		if !inIDs(m.ToID, opts.ToIDs) {
			continue
		}

		ms = append(ms, m)
	}

	return ms, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.mutes[ns]; !ok {
		s.mutes[ns] = map[string]*Mute{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	return fmt.Errorf("not implemented")
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

func pairKey(fromID, toID uint64) string {
	return fmt.Sprintf("%d-%d", fromID, toID)
}
