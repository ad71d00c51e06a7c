package block

import (
	"fmt"
	"time"
)

type memService struct {
	blocks map[string]map[string]*Block
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		blocks: map[string]map[string]*Block{},
	}
}

func (s *memService) Delete(ns string, fromID, toID uint64) error {
	if err := s.Setup(ns); err != nil {
		return err
	}

	delete(s.blocks[ns], pairKey(fromID, toID))

	return nil
}

func (s *memService) Put(ns string, b *Block) (*Block, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	b.CreatedAt = b.CreatedAt.UTC()

	s.blocks[ns][pairKey(b.FromID, b.ToID)] = b

	return b, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	bs := List{}

	for _, b := range s.blocks[ns] {
		if !inIDs(b.FromID, opts.FromIDs) {
			continue
		}

		if !inIDs(b.ToID, opts.ToIDs) {
			continue
		}

		bs = append(bs, b)
	}

	return bs, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.blocks[ns]; !ok {
		s.blocks[ns] = map[string]*Block{}
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
