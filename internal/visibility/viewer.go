package visibility

import "strconv"

// Viewer is the identity a feed or comment is rendered for: either anonymous
// or an authenticated user.
type Viewer struct {
	userID        uint
	authenticated bool
}

// Anonymous returns the viewer of an unauthenticated request.
func Anonymous() Viewer { return Viewer{} }

// Authenticated returns the viewer for userID.
func Authenticated(userID uint) Viewer {
	return Viewer{userID: userID, authenticated: true}
}

// UserID returns the viewer's user id and whether the viewer is authenticated.
func (v Viewer) UserID() (uint, bool) { return v.userID, v.authenticated }

// IsAuthenticated reports whether the viewer is a known user.
func (v Viewer) IsAuthenticated() bool { return v.authenticated }

// Is reports whether the viewer is the authenticated user userID.
func (v Viewer) Is(userID uint) bool { return v.authenticated && v.userID == userID }

func (v Viewer) String() string {
	if !v.authenticated {
		return "anonymous"
	}
	return "user:" + strconv.FormatUint(uint64(v.userID), 10)
}
