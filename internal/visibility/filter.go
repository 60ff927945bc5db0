package visibility

import (
	"context"

	"github.com/anonto42/capsule-social/backend/internal/apperrors"
	"golang.org/x/sync/errgroup"
)

// FriendSource lists the users linked to a user by an accepted friendship.
type FriendSource interface {
	AcceptedFriendIDs(ctx context.Context, userID uint) ([]uint, error)
}

// MembershipSource lists the capsules a user holds an accepted membership on.
type MembershipSource interface {
	AcceptedCapsuleIDs(ctx context.Context, userID uint) ([]uint, error)
}

// Filter loads a viewer's relation snapshot and turns it into a Predicate.
type Filter struct {
	friends FriendSource
	members MembershipSource
}

// NewFilter creates a Filter.
func NewFilter(friends FriendSource, members MembershipSource) *Filter {
	return &Filter{friends: friends, members: members}
}

// Predicate returns the visibility predicate for viewer. Anonymous viewers get
// the public-only predicate without touching the data source.
func (f *Filter) Predicate(ctx context.Context, viewer Viewer) (Predicate, error) {
	uid, ok := viewer.UserID()
	if !ok {
		return VisiblePredicate(viewer, Snapshot{}), nil
	}

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := f.friends.AcceptedFriendIDs(gctx, uid)
		if err != nil {
			return apperrors.NewDataSource("loading friendships", err)
		}
		snap.FriendIDs = ids
		return nil
	})
	g.Go(func() error {
		ids, err := f.members.AcceptedCapsuleIDs(gctx, uid)
		if err != nil {
			return apperrors.NewDataSource("loading capsule memberships", err)
		}
		snap.MemberCapsuleIDs = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return Predicate{}, err
	}
	return VisiblePredicate(viewer, snap), nil
}
