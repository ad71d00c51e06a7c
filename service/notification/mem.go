package notification

import (
	"math"
	"sort"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/flake"
)

type memService struct {
	notifications map[string]map[uint64]*Notification
	preferences   map[string]map[uint64]*Preference
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		notifications: map[string]map[uint64]*Notification{},
		preferences:   map[string]map[uint64]*Preference{},
	}
}

func (s *memService) Put(ns string, n *Notification) (*Notification, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if n.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		n.ID = id
		n.CreatedAt = now
	} else {
		stored, ok := s.notifications[ns][n.ID]
		if !ok {
			return nil, wrapError(ErrNotFound, "notification %d", n.ID)
		}

		n.CreatedAt = stored.CreatedAt
	}

	n.UpdatedAt = now

	old := *n
	s.notifications[ns][n.ID] = &old

	return n, nil
}

func (s *memService) PreferenceGet(ns string, userID uint64) (*Preference, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	p, ok := s.preferences[ns][userID]
	if !ok {
		return nil, wrapError(ErrNotFound, "preference for user %d", userID)
	}

	return p, nil
}

func (s *memService) PreferencePut(ns string, p *Preference) (*Preference, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	if p.UserID == 0 {
		return nil, wrapError(ErrInvalidNotification, "user missing")
	}

	p.UpdatedAt = time.Now().UTC()

	old := *p
	s.preferences[ns][p.UserID] = &old

	return p, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	nl := List{}

	for _, n := range s.notifications[ns] {
		if !opts.Before.IsZero() && !n.CreatedAt.UTC().Before(opts.Before.UTC()) {
			continue
		}

		if !inIDs(n.ID, opts.IDs) {
			continue
		}

		if !inIDs(n.RecipientID, opts.RecipientIDs) {
			continue
		}

		if opts.Read != nil && n.Read != *opts.Read {
			continue
		}

		if len(opts.Kinds) > 0 {
			keep := false

			for _, k := range opts.Kinds {
				if n.Kind == k {
					keep = true
					break
				}
			}

			if !keep {
				continue
			}
		}

		nl = append(nl, n)
	}

	sort.Sort(nl)

	if opts.Limit > 0 {
		l := math.Min(float64(len(nl)), float64(opts.Limit))

		return nl[:int(l)], nil
	}

	return nl, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.notifications[ns]; !ok {
		s.notifications[ns] = map[uint64]*Notification{}
	}

	if _, ok := s.preferences[ns]; !ok {
		s.preferences[ns] = map[uint64]*Preference{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	delete(s.notifications, ns)
	delete(s.preferences, ns)

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
