package community

import (
	"fmt"
	"time"
)

type memService struct {
	bans        map[string]map[string]*Ban
	memberships map[string]map[string]*Membership
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		bans:        map[string]map[string]*Ban{},
		memberships: map[string]map[string]*Membership{},
	}
}

func (s *memService) BanPut(ns string, b *Ban) (*Ban, error) {
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

	stored, ok := s.bans[ns][pairKey(b.CommunityID, b.UserID)]
	if ok {
		return stored, nil
	}

	old := *b
	s.bans[ns][pairKey(b.CommunityID, b.UserID)] = &old

	return b, nil
}

func (s *memService) BansQuery(ns string, opts QueryOptions) (BanList, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	bs := BanList{}

	for _, b := range s.bans[ns] {
		if !inIDs(b.CommunityID, opts.CommunityIDs) {
			continue
		}

		if !inIDs(b.UserID, opts.UserIDs) {
			continue
		}

		bs = append(bs, b)
	}

	return bs, nil
}

func (s *memService) Delete(ns string, communityID, userID uint64) error {
	if err := s.Setup(ns); err != nil {
		return err
	}

	delete(s.memberships[ns], pairKey(communityID, userID))

	return nil
}

func (s *memService) Put(ns string, m *Membership) (*Membership, error) {
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

	stored, ok := s.memberships[ns][pairKey(m.CommunityID, m.UserID)]
	if ok {
		m.CreatedAt = stored.CreatedAt
	}

	old := *m
	s.memberships[ns][pairKey(m.CommunityID, m.UserID)] = &old

	return m, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (MembershipList, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	ms := MembershipList{}

	for _, m := range s.memberships[ns] {
		if !inIDs(m.CommunityID, opts.CommunityIDs) {
			continue
		}

		if !inIDs(m.UserID, opts.UserIDs) {
			continue
		}

		if len(opts.Roles) > 0 {
			keep := false

			for _, r := range opts.Roles {
				if m.Role == r {
					keep = true
					break
				}
			}

			if !keep {
				continue
			}
		}

		ms = append(ms, m)
	}

	return ms, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.memberships[ns]; !ok {
		s.memberships[ns] = map[string]*Membership{}
	}

	if _, ok := s.bans[ns]; !ok {
		s.bans[ns] = map[string]*Ban{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	delete(s.memberships, ns)
	delete(s.bans, ns)

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

func pairKey(communityID, userID uint64) string {
	return fmt.Sprintf("%d-%d", communityID, userID)
}
