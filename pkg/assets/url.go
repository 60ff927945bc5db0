package assets

import "strings"

// URLResolver turns stored asset paths into public URLs served under /storage.
type URLResolver struct {
	baseURL string
}

// NewURLResolver creates a resolver for assets served from baseURL
func NewURLResolver(baseURL string) *URLResolver {
	return &URLResolver{baseURL: strings.TrimRight(baseURL, "/")}
}

// AvatarURL returns the public URL of a stored profile image, or nil when the
// user has none.
func (r *URLResolver) AvatarURL(path *string) *string {
	if path == nil || strings.TrimSpace(*path) == "" {
		return nil
	}
	url := r.baseURL + "/storage/" + strings.TrimLeft(*path, "/")
	return &url
}
