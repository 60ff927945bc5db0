// Package visibility decides which capsules' comments a viewer may see.
//
// A capsule is visible when any of these holds:
//
//   - its privacy is public
//   - the viewer owns it
//   - its privacy is friends and the owner is an accepted friend of the viewer
//   - the viewer holds an accepted membership on it, whatever its privacy
//
// Anonymous viewers only get the first rule.
package visibility

import (
	"sort"

	"github.com/anonto42/capsule-social/backend/internal/models"
	"gorm.io/gorm"
)

// Snapshot is the relation data of one viewer that the rules are evaluated against.
type Snapshot struct {
	FriendIDs        []uint
	MemberCapsuleIDs []uint
}

// Predicate is the visibility rule set bound to one viewer and snapshot. It can
// be evaluated in memory with Allows or pushed into a query with Scope; both
// give the same answer for the same capsule.
type Predicate struct {
	viewer     Viewer
	friends    idSet
	memberOf   idSet
	friendList []uint
	memberList []uint
}

// VisiblePredicate builds the predicate for viewer from snap. Relation data is
// ignored for anonymous viewers.
func VisiblePredicate(viewer Viewer, snap Snapshot) Predicate {
	p := Predicate{viewer: viewer}
	if !viewer.IsAuthenticated() {
		return p
	}
	p.friends, p.friendList = newIDSet(snap.FriendIDs)
	p.memberOf, p.memberList = newIDSet(snap.MemberCapsuleIDs)
	return p
}

// Viewer returns the viewer the predicate was built for.
func (p Predicate) Viewer() Viewer { return p.viewer }

// Allows reports whether comments on c are visible to the viewer.
func (p Predicate) Allows(c models.Capsule) bool {
	if c.Privacy == models.PrivacyPublic {
		return true
	}
	uid, ok := p.viewer.UserID()
	if !ok {
		return false
	}
	if c.UserID == uid {
		return true
	}
	if c.Privacy == models.PrivacyFriends && p.friends.has(c.UserID) {
		return true
	}
	return p.memberOf.has(c.ID)
}

// Scope restricts a query that joins the capsules table to visible capsules.
// It is meant for gorm's Scopes.
func (p Predicate) Scope(db *gorm.DB) *gorm.DB {
	uid, ok := p.viewer.UserID()
	if !ok {
		return db.Where("capsules.privacy = ?", models.PrivacyPublic)
	}

	rules := db.Session(&gorm.Session{NewDB: true}).
		Where("capsules.privacy = ?", models.PrivacyPublic).
		Or("capsules.user_id = ?", uid)
	if len(p.friendList) > 0 {
		rules = rules.Or("(capsules.privacy = ? AND capsules.user_id IN ?)", models.PrivacyFriends, p.friendList)
	}
	if len(p.memberList) > 0 {
		rules = rules.Or("capsules.id IN ?", p.memberList)
	}
	return db.Where(rules)
}

type idSet map[uint]struct{}

func newIDSet(ids []uint) (idSet, []uint) {
	set := make(idSet, len(ids))
	list := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		list = append(list, id)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return set, list
}

func (s idSet) has(id uint) bool {
	_, ok := s[id]
	return ok
}
