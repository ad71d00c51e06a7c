package block

import (
	"errors"
	"fmt"
	"time"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/service"
)

// ErrInvalidBlock is returned for blocks failing validation.
var ErrInvalidBlock = errors.New("invalid block")

// Block represents a hard severance between two users. A block in either
// direction makes all content and follow actions between the pair
// unavailable.
type Block struct {
	FromID    uint64    `json:"from_id"`
	ToID      uint64    `json:"to_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate performs checks on the Block values for completeness and
// correctness.
func (b Block) Validate() error {
	if b.FromID == 0 {
		return fmt.Errorf("%w: from id not set", ErrInvalidBlock)
	}

	if b.ToID == 0 {
		return fmt.Errorf("%w: to id not set", ErrInvalidBlock)
	}

	if b.FromID == b.ToID {
		return fmt.Errorf("%w: self-referential block", ErrInvalidBlock)
	}

	return nil
}

// List is a collection of Blocks.
type List []*Block

// OtherIDs returns the user ids not being the origin.
func (l List) OtherIDs(origin uint64) []uint64 {
	ids := []uint64{}

	for _, b := range l {
		if b.FromID == origin {
			ids = append(ids, b.ToID)
		} else {
			ids = append(ids, b.FromID)
		}
	}

	return ids
}

// QueryOptions are used to narrow down Block queries.
type QueryOptions struct {
	FromIDs []uint64
	ToIDs   []uint64
}

// Service for block interactions.
type Service interface {
	service.Lifecycle

	Delete(namespace string, fromID, toID uint64) error
	Put(namespace string, block *Block) (*Block, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service
