package mute

import (
	"errors"
	"fmt"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/service"
)

// ErrInvalidMute is returned for mutes failing validation.
var ErrInvalidMute = errors.New("invalid mute")

// Mute hides the muted user's content from the muter's ranked feeds while
// leaving direct access untouched.
type Mute struct {
	FromID    uint64    `json:"from_id"`
	ToID      uint64    `json:"to_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate performs checks on the Mute values for completeness and
// correctness.
func (m Mute) Validate() error {
	if m.FromID == 0 {
		return fmt.Errorf("%w: from id not set", ErrInvalidMute)
	}

	if m.ToID == 0 {
		return fmt.Errorf("%w: to id not set", ErrInvalidMute)
	}

	if m.FromID == m.ToID {
		return fmt.Errorf("%w: self-referential mute", ErrInvalidMute)
	}

	return nil
}

// List is a collection of Mutes.
type List []*Mute

// ToIDs returns the muted user ids.
func (l List) ToIDs() []uint64 {
	ids := []uint64{}

	for _, m := range l {
		ids = append(ids, m.ToID)
	}

	return ids
}

// QueryOptions are used to narrow down Mute queries.
type QueryOptions struct {
	FromIDs []uint64
	ToIDs   []uint64
}

// Service for mute interactions.
type Service interface {
	service.Lifecycle

	Delete(namespace string, fromID, toID uint64) error
	Put(namespace string, mute *Mute) (*Mute, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service
