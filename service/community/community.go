package community

import (
	"errors"
	"fmt"
	"time"
)

// Role variants available for a Membership.
const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Role describes the rights of a member inside a community.
type Role string

// Common errors for community service implementations and validations.
var (
	ErrInvalidMembership = errors.New("invalid membership")
	ErrNotFound          = errors.New("membership not found")
)

// Membership ties a user to a community with a Role.
type Membership struct {
	CommunityID uint64    `json:"community_id"`
	Role        Role      `json:"role"`
	UserID      uint64    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate performs semantic checks on the Membership.
func (m *Membership) Validate() error {
	if m.CommunityID == 0 {
		return wrapError(ErrInvalidMembership, "community missing")
	}

	if m.UserID == 0 {
		return wrapError(ErrInvalidMembership, "user missing")
	}

	switch m.Role {
	case RoleMember, RoleModerator, RoleAdmin:
		// valid
	default:
		return wrapError(ErrInvalidMembership, "role %s not supported", m.Role)
	}

	return nil
}

// MembershipList is a collection of Memberships.
type MembershipList []*Membership

// CommunityIDs returns the list of community ids.
func (ms MembershipList) CommunityIDs() []uint64 {
	ids := []uint64{}

	for _, m := range ms {
		ids = append(ids, m.CommunityID)
	}

	return ids
}

// Ban excludes a user from a community, it has no effect on global content.
type Ban struct {
	CommunityID uint64    `json:"community_id"`
	UserID      uint64    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate performs semantic checks on the Ban.
func (b *Ban) Validate() error {
	if b.CommunityID == 0 {
		return wrapError(ErrInvalidMembership, "community missing")
	}

	if b.UserID == 0 {
		return wrapError(ErrInvalidMembership, "user missing")
	}

	return nil
}

// BanList is a collection of Bans.
type BanList []*Ban

// QueryOptions is used to narrow-down membership and ban queries.
type QueryOptions struct {
	CommunityIDs []uint64
	Roles        []Role
	UserIDs      []uint64
}

// Service for community membership and ban interactions.
type Service interface {
	BanPut(namespace string, ban *Ban) (*Ban, error)
	BansQuery(namespace string, opts QueryOptions) (BanList, error)
	Delete(namespace string, communityID, userID uint64) error
	Put(namespace string, membership *Membership) (*Membership, error)
	Query(namespace string, opts QueryOptions) (MembershipList, error)
	Setup(namespace string) error
	Teardown(namespace string) error
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Error is a wrapper to transport community service specific errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidMembership indicates if err is ErrInvalidMembership.
func IsInvalidMembership(err error) bool {
	return unwrapError(err) == ErrInvalidMembership
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			"%s: %s",
			err.Error(),
			fmt.Sprintf(format, args...),
		),
	}
}
