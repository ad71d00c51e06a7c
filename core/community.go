package core

import (
	"github.com/joaoportolan93/Dream-Share-oficial/service/community"
)

// CommunityJoinFunc adds the origin to a community as a plain member. Banned
// users cannot join.
type CommunityJoinFunc func(ns string, origin, communityID uint64) (*community.Membership, error)

// CommunityJoin constructs the join operation.
func CommunityJoin(communities community.Service) CommunityJoinFunc {
	return func(ns string, origin, communityID uint64) (*community.Membership, error) {
		bans, err := communities.BansQuery(ns, community.QueryOptions{
			CommunityIDs: []uint64{communityID},
			UserIDs:      []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		if len(bans) > 0 {
			return nil, wrapError(ErrUnauthorized, "banned from community %d", communityID)
		}

		return communities.Put(ns, &community.Membership{
			CommunityID: communityID,
			Role:        community.RoleMember,
			UserID:      origin,
		})
	}
}

// CommunityLeaveFunc removes the origin from a community.
type CommunityLeaveFunc func(ns string, origin, communityID uint64) error

// CommunityLeave constructs the leave operation.
func CommunityLeave(communities community.Service) CommunityLeaveFunc {
	return func(ns string, origin, communityID uint64) error {
		return communities.Delete(ns, communityID, origin)
	}
}

// CommunityBanCreateFunc excludes a user from a community, only moderators
// and admins may ban. The ban also ends the membership of the target.
type CommunityBanCreateFunc func(
	ns string,
	origin, communityID, target uint64,
) (*community.Ban, error)

// CommunityBanCreate constructs the ban operation.
func CommunityBanCreate(communities community.Service) CommunityBanCreateFunc {
	return func(
		ns string,
		origin, communityID, target uint64,
	) (*community.Ban, error) {
		ms, err := communities.Query(ns, community.QueryOptions{
			CommunityIDs: []uint64{communityID},
			Roles: []community.Role{
				community.RoleAdmin,
				community.RoleModerator,
			},
			UserIDs: []uint64{origin},
		})
		if err != nil {
			return nil, err
		}

		if len(ms) == 0 {
			return nil, wrapError(ErrUnauthorized, "moderator role required")
		}

		b, err := communities.BanPut(ns, &community.Ban{
			CommunityID: communityID,
			UserID:      target,
		})
		if err != nil {
			return nil, err
		}

		if err := communities.Delete(ns, communityID, target); err != nil {
			return nil, err
		}

		return b, nil
	}
}
